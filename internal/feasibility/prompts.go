package feasibility

import (
	"fmt"
	"strings"
)

const plannerSystemPrompt = "You are a project feasibility planning assistant. Respond with a single JSON object and nothing else."

func buildPlannerPrompt(req ProjectRequest) string {
	var b strings.Builder
	b.WriteString("Decide how to analyze the feasibility of the following project.\n\n")
	if strings.TrimSpace(req.ProjectName) != "" {
		fmt.Fprintf(&b, "Project: %s\n", strings.TrimSpace(req.ProjectName))
	}
	fmt.Fprintf(&b, "Description: %s\n", strings.TrimSpace(req.Description))
	fmt.Fprintf(&b, "Requested depth: %s\n\n", req.Depth)
	b.WriteString("Return JSON with this shape:\n")
	b.WriteString(`{"needsResearch": true, "queries": ["..."], "priorityDimensions": ["technology","cost","ethics","market"], "reason": "..."}` + "\n\n")
	b.WriteString("Rules:\n")
	b.WriteString("- needsResearch is true when external market, technology, or cost information would materially improve the analysis.\n")
	b.WriteString("- Provide at most 3 queries, each a concrete web search phrase.\n")
	b.WriteString("- priorityDimensions lists the dimensions most critical for this project, most important first.\n")
	return b.String()
}

const evaluatorSystemPrompt = "You evaluate web search results. Respond with a single JSON object and nothing else."

func buildEvaluationPrompt(query string, records []SearchRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Evaluate how useful these search results are for the query %q.\n\n", query)
	for i, record := range records {
		fmt.Fprintf(&b, "%d. %s (%s)\n   %s\n", i+1, record.Title, record.Source, record.Snippet)
	}
	b.WriteString("\nReturn JSON with this shape:\n")
	b.WriteString(`{"relevance": 0.0, "confidence": 0.0, "reasoning": "..."}` + "\n\n")
	b.WriteString("relevance and confidence are values in [0,1]. reasoning is one or two sentences.\n")
	return b.String()
}

const validatorSystemPrompt = "You check a set of analyses for contradictions. Respond with a single JSON object and nothing else."

func buildConsistencyPrompt(analyses []DimensionAnalysis) string {
	var b strings.Builder
	b.WriteString("Check the following feasibility analyses for direct contradictions between dimensions.\n\n")
	for _, analysis := range analyses {
		fmt.Fprintf(&b, "[%s] score=%.0f confidence=%s\n%s\n\n", analysis.Dimension, analysis.Score, analysis.Confidence, strings.TrimSpace(analysis.Reasoning))
	}
	b.WriteString("Return JSON with this shape:\n")
	b.WriteString(`{"isConsistent": true, "conflicts": [{"dimensions": ["technology","cost"], "description": "...", "severity": "medium"}], "reasoning": "..."}` + "\n")
	return b.String()
}

const synthesisSystemPrompt = "You write concise executive feasibility summaries. Respond in plain prose."

func buildSynthesisPrompt(req ProjectRequest, score float64, band Feasibility, analyses []DimensionAnalysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a short executive summary (3-5 sentences) of the feasibility verdict for project %q.\n", strings.TrimSpace(req.ProjectName))
	fmt.Fprintf(&b, "Overall score: %.1f/100, verdict: %s.\n\nDimension results:\n", score, band)
	for _, analysis := range analyses {
		fmt.Fprintf(&b, "- %s: %.0f (%s confidence)\n", analysis.Dimension, analysis.Score, analysis.Confidence)
	}
	b.WriteString("\nMention the strongest dimension, the weakest dimension, and the single most important next step.\n")
	return b.String()
}

// deepDiveAspects are the distinct angles a deep dive expands a topic into.
var deepDiveAspects = []string{
	"technical implementation challenges",
	"market size and demand",
	"cost and funding requirements",
	"competitive landscape",
	"industry trends",
}

func buildRefinementFeedback(validation Validation, analysis DimensionAnalysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The previous %s analysis had %s confidence and needs strengthening.", analysis.Dimension, analysis.Confidence)
	for _, conflict := range validation.Conflicts {
		for _, dim := range conflict.Dimensions {
			if dim == analysis.Dimension {
				fmt.Fprintf(&b, " Resolve this conflict: %s.", conflict.Description)
				break
			}
		}
	}
	if len(analysis.InformationGaps) > 0 {
		fmt.Fprintf(&b, " Address these gaps: %s.", strings.Join(analysis.InformationGaps, "; "))
	}
	return b.String()
}
