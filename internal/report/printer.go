package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"feasly/backend/internal/feasibility"
)

var (
	headerColor  = color.New(color.FgMagenta, color.Bold)
	successColor = color.New(color.FgGreen, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	infoColor    = color.New(color.FgCyan)
)

func bandColor(band feasibility.Feasibility) *color.Color {
	switch band {
	case feasibility.HighlyFeasible, feasibility.Feasible:
		return successColor
	case feasibility.ModeratelyFeasible:
		return warningColor
	default:
		return errorColor
	}
}

// Print renders a decision as a readable console report.
func Print(w io.Writer, projectName string, decision feasibility.Decision) {
	headerColor.Fprintf(w, "\n=== Feasibility Report: %s ===\n\n", projectName)

	bandColor(decision.Feasibility).Fprintf(w, "Verdict: %s (%.1f/100)\n", decision.Feasibility, decision.OverallScore)
	fmt.Fprintf(w, "Confidence: %s | Analysis quality: %s | Refinement iterations: %d\n\n",
		decision.Confidence, decision.AnalysisQuality, decision.Iterations)

	infoColor.Fprintln(w, "Dimension scores:")
	for _, dimension := range feasibility.AllDimensions() {
		score, ok := decision.DimensionScores[dimension]
		if !ok {
			continue
		}
		fmt.Fprintf(w, "  %-12s %5.1f  %s\n", dimension, score, scoreBar(score))
	}

	if strings.TrimSpace(decision.Reasoning) != "" {
		infoColor.Fprintln(w, "\nSummary:")
		fmt.Fprintf(w, "  %s\n", decision.Reasoning)
	}

	if len(decision.CriticalRisks) > 0 {
		errorColor.Fprintln(w, "\nCritical risks:")
		for _, risk := range decision.CriticalRisks {
			fmt.Fprintf(w, "  - [%s/%s] %s\n", risk.Dimension, risk.Severity, risk.Description)
		}
	}

	if len(decision.KeyOpportunities) > 0 {
		successColor.Fprintln(w, "\nKey opportunities:")
		for _, opportunity := range decision.KeyOpportunities {
			fmt.Fprintf(w, "  - [%s/%s] %s\n", opportunity.Dimension, opportunity.Impact, opportunity.Description)
		}
	}

	if len(decision.NextSteps) > 0 {
		infoColor.Fprintln(w, "\nNext steps:")
		for i, step := range decision.NextSteps {
			fmt.Fprintf(w, "  %d. %s\n", i+1, step)
		}
	}

	if len(decision.Limitations) > 0 {
		warningColor.Fprintln(w, "\nLimitations:")
		for _, limitation := range decision.Limitations {
			fmt.Fprintf(w, "  - %s\n", limitation)
		}
	}

	fmt.Fprintf(w, "\nRecommendation: %s\n", decision.Recommendation)
}

// PrintSummaries renders the saved-report listing.
func PrintSummaries(w io.Writer, summaries []Summary) {
	if len(summaries) == 0 {
		infoColor.Fprintln(w, "No saved reports.")
		return
	}

	headerColor.Fprintf(w, "\n=== Saved Reports ===\n\n")
	for _, summary := range summaries {
		bandColor(summary.Feasibility).Fprintf(w, "%-20s", summary.Feasibility)
		fmt.Fprintf(w, " %5.1f  %-30s %s  %s\n", summary.OverallScore, summary.ProjectName, summary.ID, summary.CreatedAt)
	}
}

func scoreBar(score float64) string {
	filled := int(score / 10)
	if filled < 0 {
		filled = 0
	}
	if filled > 10 {
		filled = 10
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", 10-filled) + "]"
}
