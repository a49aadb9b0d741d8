package analyzers

import (
	"context"
	"fmt"
	"strings"

	"feasly/backend/internal/feasibility"
)

var (
	highCostIndicators = []string{
		"quantum", "satellite", "space", "clinical trial", "pharmaceutical",
		"data center", "fusion", "particle accelerator", "supercomputer",
		"chip fabrication",
	}
	moderateCostIndicators = []string{
		"machine learning training", "cloud infrastructure", "autonomous vehicle",
		"robotics", "drone", "blockchain network", "biotech", "3d printing",
		"pilot study",
	}
	lowCostIndicators = []string{
		"mobile app", "web application", "software tool", "algorithm",
		"simulation", "prototype", "proof of concept", "survey",
	}
	roiIndicators = []string{
		"market", "customer", "revenue", "scalable", "saas", "platform",
		"commercial", "product", "service",
	}
)

// Cost estimates a budget category from the project text and scores
// feasibility inversely to the required spend.
type Cost struct{}

func (Cost) Dimension() feasibility.Dimension { return feasibility.DimensionCost }

func (Cost) Analyze(_ context.Context, input feasibility.AnalyzerInput) (feasibility.DimensionAnalysis, error) {
	text := strings.ToLower(input.Description + " " + input.ResearchContext)

	costSignal := countMatches(text, highCostIndicators)*40 +
		countMatches(text, moderateCostIndicators)*20 +
		countMatches(text, lowCostIndicators)*5
	if containsAny(text, []string{"large-scale", "global", "nationwide"}) {
		costSignal += 30
	}
	if containsAny(text, []string{"hardware", "manufacturing", "production"}) {
		costSignal += 25
	}
	if containsAny(text, []string{"hiring", "team", "staff"}) {
		costSignal += 15
	}

	var category, budgetRange string
	var score float64
	switch {
	case costSignal >= 80:
		category, budgetRange, score = "Very High", "$5M - $50M", 30
	case costSignal >= 50:
		category, budgetRange, score = "High", "$500K - $5M", 50
	case costSignal >= 25:
		category, budgetRange, score = "Medium", "$100K - $500K", 70
	case costSignal >= 10:
		category, budgetRange, score = "Low", "$25K - $100K", 85
	default:
		category, budgetRange, score = "Minimal", "$5K - $25K", 95
	}

	roiHits := countMatches(text, roiIndicators)
	if roiHits >= 4 {
		score += 10
	} else if roiHits >= 2 {
		score += 5
	}

	var risks []feasibility.Risk
	if category == "High" || category == "Very High" {
		risks = append(risks,
			feasibility.Risk{Description: "High capital requirements narrow the pool of viable funding sources", Severity: "high"},
			feasibility.Risk{Description: "Long runway to profitability increases burn rate risk", Severity: "medium"},
		)
	}
	if containsAny(text, []string{"hardware", "manufacturing"}) {
		risks = append(risks, feasibility.Risk{Description: "Supply chain disruptions can cause cost overruns", Severity: "medium"})
	}
	if containsAny(text, []string{"machine learning", "training data"}) {
		risks = append(risks, feasibility.Risk{Description: "Compute and data acquisition costs can escalate quickly", Severity: "medium"})
	}
	score -= clamp(float64(len(risks))*3, 0, 20)

	var opportunities []feasibility.Opportunity
	if strings.Contains(text, "cloud") {
		opportunities = append(opportunities, feasibility.Opportunity{
			Description: "Serverless architecture and provider credits can cut idle infrastructure spend",
			Impact:      "medium",
		})
	}
	if containsAny(text, []string{"software", "application", "platform"}) {
		opportunities = append(opportunities, feasibility.Opportunity{
			Description: "Open-source tooling and an MVP-first approach reduce upfront investment",
			Impact:      "high",
		})
	}
	if strings.Contains(text, "research") {
		opportunities = append(opportunities, feasibility.Opportunity{
			Description: "Research grants can offset a meaningful share of the budget",
			Impact:      "medium",
		})
	}
	score += clamp(float64(len(opportunities))*2, 0, 15)
	score = clamp(score, 0, 100)

	recommendations := []string{"Phase the spend with milestone-based funding releases"}
	if category == "High" || category == "Very High" {
		recommendations = append(recommendations, "Prepare detailed financial projections before approaching investors")
	}

	signal := countMatches(text, highCostIndicators) + countMatches(text, moderateCostIndicators) + countMatches(text, lowCostIndicators)
	return feasibility.DimensionAnalysis{
		Dimension:  feasibility.DimensionCost,
		Score:      score,
		Confidence: confidenceForSignal(signal),
		Reasoning: fmt.Sprintf("Estimated budget category is %s (%s); financial feasibility scores inversely to required capital.",
			category, budgetRange),
		KeyFindings: []string{
			fmt.Sprintf("Budget category: %s", category),
			fmt.Sprintf("Estimated budget range: %s", budgetRange),
		},
		Risks:           risks,
		Opportunities:   opportunities,
		Assumptions:     []string{"Budget estimate derived from descriptive keywords, not a bottom-up cost model"},
		Recommendations: recommendations,
	}, nil
}
