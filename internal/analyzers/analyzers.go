// Package analyzers provides the dimension analyzers the orchestrator fans
// out to: four deterministic keyword-driven heuristics and a reasoner-backed
// variant that wraps any of them.
package analyzers

import (
	"strings"

	"feasly/backend/internal/feasibility"
)

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

func countMatches(text string, terms []string) int {
	matched := 0
	for _, term := range terms {
		if strings.Contains(text, term) {
			matched++
		}
	}
	return matched
}

// confidenceForSignal buckets how many keyword signals fired into a
// confidence level. Sparse matches mean the heuristics are mostly guessing.
func confidenceForSignal(matches int) feasibility.ConfidenceLevel {
	switch {
	case matches >= 5:
		return feasibility.ConfidenceHigh
	case matches >= 2:
		return feasibility.ConfidenceMedium
	case matches >= 1:
		return feasibility.ConfidenceLow
	default:
		return feasibility.ConfidenceVeryLow
	}
}

func clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

// Defaults returns the four heuristic analyzers in canonical order.
func Defaults() []feasibility.Analyzer {
	return []feasibility.Analyzer{
		Technology{},
		Cost{},
		Ethics{},
		Market{},
	}
}

// Reasoned wraps each heuristic analyzer with the given reasoner.
func Reasoned(reasoner feasibility.Reasoner) []feasibility.Analyzer {
	out := make([]feasibility.Analyzer, 0, 4)
	for _, fallback := range Defaults() {
		out = append(out, NewLLMAnalyzer(reasoner, fallback))
	}
	return out
}
