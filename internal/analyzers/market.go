package analyzers

import (
	"context"
	"fmt"
	"strings"

	"feasly/backend/internal/feasibility"
)

var (
	emergingMarkets = []string{
		"quantum computing", "brain-computer interface", "fusion energy",
		"space tourism", "flying cars", "artificial general intelligence",
	}
	growingMarkets = []string{
		"machine learning", "electric vehicle", "renewable energy",
		"telemedicine", "remote work", "cybersecurity", "cloud", "blockchain",
		"edge computing", "autonomous vehicle", "drone", "3d printing", "biotech",
	}
	matureMarkets = []string{
		"mobile app", "e-commerce", "social media", "search engine", "email",
		"web hosting", "crm", "erp",
	}
	valueProps = []string{
		"reduce cost", "save time", "increase efficiency", "automate",
		"improve health", "enhance safety", "prevent", "optimize", "simplify",
	}
	scaleIndicators = []string{
		"global", "worldwide", "national", "enterprise", "consumer",
		"millions", "billions",
	}
	largeIndustries = []string{
		"healthcare", "finance", "banking", "insurance", "retail", "education",
		"transportation", "energy", "manufacturing",
	}
)

// Market scores commercial timing and addressable market size from keyword
// evidence.
type Market struct{}

func (Market) Dimension() feasibility.Dimension { return feasibility.DimensionMarket }

func (Market) Analyze(_ context.Context, input feasibility.AnalyzerInput) (feasibility.DimensionAnalysis, error) {
	text := strings.ToLower(input.Description + " " + input.ResearchContext)

	var timing string
	var timingScore float64
	switch {
	case containsAny(text, emergingMarkets):
		timing, timingScore = "Too Early", 40
	case containsAny(text, growingMarkets):
		timing, timingScore = "Optimal", 90
	case containsAny(text, matureMarkets):
		timing, timingScore = "Late", 60
	case containsAny(text, []string{"novel", "innovative", "first"}):
		timing, timingScore = "Early", 70
	default:
		timing, timingScore = "Optimal", 75
	}
	if containsAny(text, []string{"sustainable", "green", "climate", "carbon"}) {
		timingScore = clamp(timingScore+10, 0, 100)
	}

	sizeSignal := countMatches(text, scaleIndicators)*2 + countMatches(text, largeIndustries)*2
	var marketSize string
	var sizeScore float64
	switch {
	case sizeSignal >= 6:
		marketSize, sizeScore = "Large", 90
	case sizeSignal >= 3:
		marketSize, sizeScore = "Medium", 70
	case sizeSignal >= 1:
		marketSize, sizeScore = "Niche", 55
	default:
		marketSize, sizeScore = "Unclear", 45
	}

	valueHits := countMatches(text, valueProps)

	var barriers []string
	if timing == "Too Early" {
		barriers = append(barriers, "Market education required before customers recognize the need")
	}
	if containsAny(text, []string{"regulatory", "compliance", "medical", "financial"}) {
		barriers = append(barriers, "Regulated industry slows adoption and raises entry costs")
	}
	if containsAny(text, matureMarkets) {
		barriers = append(barriers, "Entrenched incumbents with established distribution")
	}

	score := timingScore*0.5 + sizeScore*0.3 + clamp(float64(valueHits)*5, 0, 20)
	score -= clamp(float64(len(barriers))*5, 0, 15)
	score = clamp(score, 0, 100)

	var risks []feasibility.Risk
	if timing == "Too Early" {
		risks = append(risks, feasibility.Risk{Description: "Market may not materialize on the project's timeline", Severity: "high"})
	}
	if timing == "Late" {
		risks = append(risks, feasibility.Risk{Description: "Late entry requires displacing established competitors", Severity: "medium"})
	}
	if marketSize == "Unclear" {
		risks = append(risks, feasibility.Risk{Description: "Addressable market size is not evident from the project description", Severity: "medium"})
	}

	var opportunities []feasibility.Opportunity
	if timing == "Optimal" {
		opportunities = append(opportunities, feasibility.Opportunity{
			Description: "Growing market with demonstrated demand and room for new entrants",
			Impact:      "high",
		})
	}
	if valueHits >= 2 {
		opportunities = append(opportunities, feasibility.Opportunity{
			Description: "Strong value proposition anchored in concrete customer benefits",
			Impact:      "medium",
		})
	}

	recommendations := []string{"Validate demand with a small pilot before scaling go-to-market spend"}
	if marketSize == "Unclear" {
		recommendations = append(recommendations, "Define the target segment and size the addressable market explicitly")
	}

	signal := countMatches(text, emergingMarkets) + countMatches(text, growingMarkets) + countMatches(text, matureMarkets) + valueHits
	return feasibility.DimensionAnalysis{
		Dimension:  feasibility.DimensionMarket,
		Score:      score,
		Confidence: confidenceForSignal(signal),
		Reasoning: fmt.Sprintf("Market timing is %s with %s market size potential; %d value proposition signals detected.",
			strings.ToLower(timing), strings.ToLower(marketSize), valueHits),
		KeyFindings: []string{
			fmt.Sprintf("Market timing: %s", timing),
			fmt.Sprintf("Market size potential: %s", marketSize),
		},
		Risks:           risks,
		Opportunities:   opportunities,
		InformationGaps: barriers,
		Recommendations: recommendations,
	}, nil
}
