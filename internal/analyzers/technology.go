package analyzers

import (
	"context"
	"fmt"
	"strings"

	"feasly/backend/internal/feasibility"
)

var (
	emergingTech = []string{
		"quantum computing", "quantum", "brain-computer interface", "fusion energy",
		"nuclear fusion", "artificial general intelligence", "molecular nanotechnology",
		"room temperature superconductor", "space elevator",
	}
	developingTech = []string{
		"autonomous vehicle", "self-driving", "augmented reality", "virtual reality",
		"blockchain", "gene editing", "crispr", "edge computing", "neuromorphic",
		"synthetic biology", "bioprinting", "drone delivery",
	}
	matureTech = []string{
		"machine learning", "deep learning", "neural network", "cloud computing",
		"mobile app", "web application", "internet of things", "computer vision",
		"natural language processing", "robotics", "3d printing", "solar panel",
		"electric vehicle", "satellite",
	}
	obsoleteTech = []string{
		"floppy disk", "dial-up", "flash player", "windows xp", "sha-1", "md5",
	}
	complexityIndicators = []string{
		"real-time", "large-scale", "distributed system", "blockchain", "quantum",
		"neural interface", "autonomous", "self-learning", "multi-agent",
		"federated", "zero-knowledge", "homomorphic encryption",
	}
)

// Technology scores maturity and implementation complexity from keyword
// evidence in the project text.
type Technology struct{}

func (Technology) Dimension() feasibility.Dimension { return feasibility.DimensionTechnology }

func (Technology) Analyze(_ context.Context, input feasibility.AnalyzerInput) (feasibility.DimensionAnalysis, error) {
	text := strings.ToLower(input.Description + " " + input.ResearchContext)

	emerging := countMatches(text, emergingTech)
	developing := countMatches(text, developingTech)
	mature := countMatches(text, matureTech)
	obsolete := countMatches(text, obsoleteTech)
	total := emerging + developing + mature + obsolete

	maturity := "Mature"
	maturityScore := 100.0
	if total > 0 {
		maturityScore = float64(mature*100+developing*70+emerging*40+obsolete*10) / float64(total)
		switch {
		case emerging >= developing && emerging >= mature && emerging > 0:
			maturity = "Emerging"
		case obsolete > mature && obsolete > developing:
			maturity = "Obsolete"
		case developing > mature:
			maturity = "Developing"
		}
	}

	complexityHits := countMatches(text, complexityIndicators)
	var complexity string
	var complexityScore float64
	switch {
	case complexityHits >= 3:
		complexity, complexityScore = "Very High", 40
	case complexityHits == 2:
		complexity, complexityScore = "High", 60
	case complexityHits == 1:
		complexity, complexityScore = "Medium", 80
	default:
		complexity, complexityScore = "Low", 95
	}

	var gaps []string
	if emerging > 0 {
		gaps = append(gaps, "Core technology is still experimental with limited supporting infrastructure")
	}
	if containsAny(text, []string{"deep learning", "training", "simulation"}) {
		gaps = append(gaps, "High-performance computing resources may be required")
	}
	if containsAny(text, []string{"quantum", "neuromorphic", "fpga", "asic"}) {
		gaps = append(gaps, "Specialized hardware procurement and expertise")
	}
	if total > 3 {
		gaps = append(gaps, "Complex system integration across multiple technologies")
	}

	var risks []feasibility.Risk
	if maturity == "Emerging" {
		risks = append(risks,
			feasibility.Risk{Description: "Technology not yet proven at scale", Severity: "high"},
			feasibility.Risk{Description: "Limited vendor support and ecosystem", Severity: "medium"},
		)
	}
	if maturity == "Obsolete" {
		risks = append(risks, feasibility.Risk{Description: "Outdated technology brings security and maintenance concerns", Severity: "high"})
	}
	if complexity == "High" || complexity == "Very High" {
		risks = append(risks, feasibility.Risk{Description: "Integration complexity may cause delays and cost overruns", Severity: "medium"})
	}
	if strings.Contains(text, "real-time") {
		risks = append(risks, feasibility.Risk{Description: "Real-time performance constraints are hard to guarantee", Severity: "medium"})
	}

	score := maturityScore*0.4 + complexityScore*0.3
	score -= clamp(float64(len(gaps))*5, 0, 20)
	score -= clamp(float64(len(risks))*3, 0, 15)
	score = clamp(score, 0, 100)

	var opportunities []feasibility.Opportunity
	if mature > 0 {
		opportunities = append(opportunities, feasibility.Opportunity{
			Description: "Mature building blocks available off the shelf",
			Impact:      "medium",
		})
	}

	recommendations := []string{"Establish clear technical milestones with go/no-go decision points"}
	if maturity == "Emerging" {
		recommendations = append(recommendations, "Build a proof-of-concept before committing to full development")
	}
	if complexity == "High" || complexity == "Very High" {
		recommendations = append(recommendations, "Break the system into smaller independently testable modules")
	}

	return feasibility.DimensionAnalysis{
		Dimension:  feasibility.DimensionTechnology,
		Score:      score,
		Confidence: confidenceForSignal(total + complexityHits),
		Reasoning: fmt.Sprintf("The project relies on %s technology with %s implementation complexity (maturity score %.0f, complexity score %.0f).",
			strings.ToLower(maturity), strings.ToLower(complexity), maturityScore, complexityScore),
		KeyFindings: []string{
			fmt.Sprintf("Technology maturity level: %s", maturity),
			fmt.Sprintf("Implementation complexity: %s", complexity),
		},
		Risks:           risks,
		Opportunities:   opportunities,
		InformationGaps: gaps,
		Recommendations: recommendations,
	}, nil
}
