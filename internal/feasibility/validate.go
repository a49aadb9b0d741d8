package feasibility

import (
	"context"
	"fmt"
	"math"
)

const (
	consistencyFromReasoner = "reasoner"
	consistencyFromRules    = "rules"

	// Score gaps wider than this between two dimensions are flagged as a
	// conflict by the rule-based detector.
	conflictScoreGap = 40.0
)

// Validator aggregates per-dimension confidence and checks the analyses for
// cross-dimension contradictions.
type Validator struct {
	reasoner  Reasoner
	threshold float64
	warn      func(string)
}

func NewValidator(reasoner Reasoner, threshold float64, warn func(string)) Validator {
	if warn == nil {
		warn = func(string) {}
	}
	return Validator{reasoner: reasoner, threshold: threshold, warn: warn}
}

// Validate fails only on an empty analysis set; everything else degrades.
func (v Validator) Validate(ctx context.Context, analyses []DimensionAnalysis) (Validation, error) {
	if len(analyses) == 0 {
		return Validation{}, configErrorf("cannot validate zero dimension analyses")
	}

	var midpointSum float64
	for _, analysis := range analyses {
		midpointSum += analysis.Confidence.Midpoint()
	}
	overall := midpointSum / float64(len(analyses))

	validation := v.checkConsistency(ctx, analyses)
	validation.OverallConfidence = overall
	validation.NeedsRefinement = overall < v.threshold
	return validation, nil
}

func (v Validator) checkConsistency(ctx context.Context, analyses []DimensionAnalysis) Validation {
	if v.reasoner != nil {
		raw, err := v.reasoner.Reason(ctx, ReasonRequest{
			Prompt:       buildConsistencyPrompt(analyses),
			SystemPrompt: validatorSystemPrompt,
			Temperature:  0.1,
			MaxTokens:    512,
		})
		if err == nil {
			if verdict, parseErr := parseConsistencyVerdict(raw); parseErr == nil {
				return validationFromVerdict(verdict)
			}
			v.warn("consistency check returned unusable output; using rule-based detector")
		} else {
			v.warn(fmt.Sprintf("consistency check failed: %v", err))
		}
	}
	return ruleBasedConsistency(analyses)
}

func validationFromVerdict(verdict consistencyVerdict) Validation {
	validation := Validation{
		IsConsistent:      verdict.IsConsistent,
		Reasoning:         verdict.Reasoning,
		consistencySource: consistencyFromReasoner,
	}
	for _, conflict := range verdict.Conflicts {
		dims := parseDimensions(conflict.Dimensions)
		if len(dims) == 0 {
			continue
		}
		severity := conflict.Severity
		if severity == "" {
			severity = "medium"
		}
		validation.Conflicts = append(validation.Conflicts, Conflict{
			Dimensions:  dims,
			Description: conflict.Description,
			Severity:    severity,
		})
	}
	if len(validation.Conflicts) > 0 {
		validation.IsConsistent = false
	}
	return validation
}

// ruleBasedConsistency flags dimension pairs whose scores disagree sharply.
// It is the deterministic fallback when the reasoner cannot judge.
func ruleBasedConsistency(analyses []DimensionAnalysis) Validation {
	validation := Validation{
		IsConsistent:      true,
		Reasoning:         "rule-based score comparison",
		consistencySource: consistencyFromRules,
	}
	for i := 0; i < len(analyses); i++ {
		for j := i + 1; j < len(analyses); j++ {
			gap := math.Abs(analyses[i].Score - analyses[j].Score)
			if gap <= conflictScoreGap {
				continue
			}
			validation.IsConsistent = false
			validation.Conflicts = append(validation.Conflicts, Conflict{
				Dimensions: []Dimension{analyses[i].Dimension, analyses[j].Dimension},
				Description: fmt.Sprintf("%s scored %.0f while %s scored %.0f, a %.0f point disagreement",
					analyses[i].Dimension, analyses[i].Score, analyses[j].Dimension, analyses[j].Score, gap),
				Severity: "medium",
			})
		}
	}
	return validation
}
