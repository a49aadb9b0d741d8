package feasibility

import (
	"context"
	"fmt"
	"strings"
)

const (
	maxDecisionRisks         = 5
	maxDecisionOpportunities = 5
	maxItemsPerDimension     = 2
	highConfidenceBar        = 0.75
)

// dimensionWeights is the fixed weight table for the canonical dimensions.
// Dimensions outside the table get defaultDimensionWeight; the sum is
// renormalized either way.
var dimensionWeights = map[Dimension]float64{
	DimensionTechnology: 0.30,
	DimensionMarket:     0.30,
	DimensionCost:       0.20,
	DimensionEthics:     0.20,
}

const defaultDimensionWeight = 0.25

// WeightsFor converts raw policy weight keys into canonical dimensions.
// Unknown keys are dropped; an empty result means the default table applies.
func WeightsFor(raw map[string]float64) map[Dimension]float64 {
	if len(raw) == 0 {
		return nil
	}
	out := make(map[Dimension]float64)
	for key, weight := range raw {
		for _, dimension := range AllDimensions() {
			if string(dimension) == strings.ToLower(strings.TrimSpace(key)) {
				out[dimension] = weight
			}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Synthesizer folds the validated analyses into the final decision.
type Synthesizer struct {
	reasoner Reasoner
	weights  map[Dimension]float64
	warn     func(string)
}

// NewSynthesizer builds a synthesizer. A nil weights map keeps the default
// dimension weight table.
func NewSynthesizer(reasoner Reasoner, weights map[Dimension]float64, warn func(string)) Synthesizer {
	if warn == nil {
		warn = func(string) {}
	}
	return Synthesizer{reasoner: reasoner, weights: weights, warn: warn}
}

func (s Synthesizer) Synthesize(ctx context.Context, req ProjectRequest, analyses []DimensionAnalysis, validation Validation, iterations int) Decision {
	score := weightedScoreWith(s.weights, analyses)
	band := FeasibilityForScore(score)

	decision := Decision{
		Feasibility:     band,
		OverallScore:    score,
		Recommendation:  recommendationFor(band),
		DimensionScores: make(map[Dimension]float64, len(analyses)),
		Iterations:      iterations,
	}

	if validation.OverallConfidence > highConfidenceBar {
		decision.Confidence = ConfidenceHigh
	} else {
		decision.Confidence = ConfidenceMedium
	}
	if validation.IsConsistent {
		decision.AnalysisQuality = "high"
	} else {
		decision.AnalysisQuality = "moderate"
	}

	for _, analysis := range analyses {
		decision.DimensionScores[analysis.Dimension] = analysis.Score
		decision.Assumptions = append(decision.Assumptions, analysis.Assumptions...)
		for _, gap := range analysis.InformationGaps {
			decision.Limitations = append(decision.Limitations, fmt.Sprintf("%s: %s", analysis.Dimension, gap))
		}
	}

	decision.CriticalRisks = topRisks(analyses)
	decision.KeyOpportunities = topOpportunities(analyses)
	decision.NextSteps = nextSteps(band, analyses)
	decision.Reasoning = s.summary(ctx, req, score, band, analyses)
	return decision
}

// WeightedScore computes the weight-normalized overall score across the
// given analyses using the default weight table.
func WeightedScore(analyses []DimensionAnalysis) float64 {
	return weightedScoreWith(nil, analyses)
}

func weightedScoreWith(weights map[Dimension]float64, analyses []DimensionAnalysis) float64 {
	if weights == nil {
		weights = dimensionWeights
	}
	var weightedSum, weightSum float64
	for _, analysis := range analyses {
		weight, ok := weights[analysis.Dimension]
		if !ok {
			weight = defaultDimensionWeight
		}
		weightedSum += clampScore(analysis.Score) * weight
		weightSum += weight
	}
	if weightSum == 0 {
		return 0
	}
	return weightedSum / weightSum
}

func (s Synthesizer) summary(ctx context.Context, req ProjectRequest, score float64, band Feasibility, analyses []DimensionAnalysis) string {
	if s.reasoner != nil {
		text, err := s.reasoner.Reason(ctx, ReasonRequest{
			Prompt:       buildSynthesisPrompt(req, score, band, analyses),
			SystemPrompt: synthesisSystemPrompt,
			Temperature:  0.4,
			MaxTokens:    512,
		})
		if err == nil && strings.TrimSpace(text) != "" {
			return strings.TrimSpace(text)
		}
		if err != nil {
			s.warn(fmt.Sprintf("summary generation failed: %v", err))
		}
	}

	parts := make([]string, 0, len(analyses)+1)
	parts = append(parts, fmt.Sprintf("Weighted feasibility score %.1f/100 places the project in the %s band.", score, band))
	for _, analysis := range analyses {
		parts = append(parts, fmt.Sprintf("%s scored %.0f with %s confidence.", analysis.Dimension, analysis.Score, analysis.Confidence))
	}
	return strings.Join(parts, " ")
}

// topRisks flattens each dimension's risks, taking at most two per dimension,
// tags them with their source, and truncates to the overall cap.
func topRisks(analyses []DimensionAnalysis) []Risk {
	out := make([]Risk, 0, maxDecisionRisks)
	for _, analysis := range analyses {
		taken := 0
		for _, risk := range analysis.Risks {
			if taken >= maxItemsPerDimension || len(out) >= maxDecisionRisks {
				break
			}
			risk.Dimension = analysis.Dimension
			out = append(out, risk)
			taken++
		}
	}
	return out
}

func topOpportunities(analyses []DimensionAnalysis) []Opportunity {
	out := make([]Opportunity, 0, maxDecisionOpportunities)
	for _, analysis := range analyses {
		taken := 0
		for _, opportunity := range analysis.Opportunities {
			if taken >= maxItemsPerDimension || len(out) >= maxDecisionOpportunities {
				break
			}
			opportunity.Dimension = analysis.Dimension
			out = append(out, opportunity)
			taken++
		}
	}
	return out
}

func recommendationFor(band Feasibility) string {
	switch band {
	case HighlyFeasible:
		return "Proceed with the project; conditions are strongly favorable."
	case Feasible:
		return "Proceed with the project while monitoring the identified risks."
	case ModeratelyFeasible:
		return "Proceed cautiously; resolve the weakest dimensions before committing significant resources."
	case Challenging:
		return "Reconsider scope or approach; feasibility is marginal in its current form."
	default:
		return "Do not proceed as described; fundamental feasibility problems need to be resolved first."
	}
}

func nextSteps(band Feasibility, analyses []DimensionAnalysis) []string {
	steps := make([]string, 0, len(analyses)+1)
	var weakest *DimensionAnalysis
	for i := range analyses {
		if weakest == nil || analyses[i].Score < weakest.Score {
			weakest = &analyses[i]
		}
	}
	if weakest != nil {
		steps = append(steps, fmt.Sprintf("Strengthen the %s dimension (lowest score %.0f) before other work.", weakest.Dimension, weakest.Score))
	}
	for _, analysis := range analyses {
		for _, rec := range analysis.Recommendations {
			steps = append(steps, rec)
			break
		}
	}
	if band == Challenging || band == NotFeasible {
		steps = append(steps, "Re-run the analysis after revising the project scope.")
	}
	return steps
}
