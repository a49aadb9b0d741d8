package feasibility

import "context"

// Refiner re-runs analyzers for dimensions whose own confidence sits below
// the threshold, replacing only those entries. A pass that finds nothing to
// refine returns the input unchanged; the orchestrator still counts it as an
// iteration so total work stays bounded.
type Refiner struct {
	analyzers map[Dimension]Analyzer
	threshold float64
	warn      func(string)
}

func NewRefiner(analyzers map[Dimension]Analyzer, threshold float64, warn func(string)) Refiner {
	if warn == nil {
		warn = func(string) {}
	}
	return Refiner{analyzers: analyzers, threshold: threshold, warn: warn}
}

func (r Refiner) Refine(ctx context.Context, analyses []DimensionAnalysis, validation Validation, input AnalyzerInput) []DimensionAnalysis {
	refined := make([]DimensionAnalysis, len(analyses))
	copy(refined, analyses)

	for i, analysis := range refined {
		if analysis.Confidence.Midpoint() >= r.threshold {
			continue
		}
		analyzer, ok := r.analyzers[analysis.Dimension]
		if !ok {
			continue
		}

		previous := analysis
		retryInput := input
		retryInput.Previous = &previous
		retryInput.Feedback = buildRefinementFeedback(validation, analysis)

		replacement, err := analyzer.Analyze(ctx, retryInput)
		if err != nil {
			r.warn("refinement of " + string(analysis.Dimension) + " failed; keeping prior analysis")
			continue
		}
		replacement.Dimension = analysis.Dimension
		replacement.Score = clampScore(replacement.Score)
		refined[i] = replacement
	}
	return refined
}
