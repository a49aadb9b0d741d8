package analyzers

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"feasly/backend/internal/feasibility"
)

const (
	defaultParsedScore = 60
	analysisMaxTokens  = 1024
)

var scorePattern = regexp.MustCompile(`(?i)score[:\s]+(\d{1,3})`)

// LLMAnalyzer delegates a dimension analysis to the reasoner with a
// structured-output contract. Unusable reasoner output degrades in two steps:
// a regex score extraction with documented defaults, then the wrapped
// heuristic analyzer when the reasoner fails outright.
type LLMAnalyzer struct {
	reasoner feasibility.Reasoner
	fallback feasibility.Analyzer
}

func NewLLMAnalyzer(reasoner feasibility.Reasoner, fallback feasibility.Analyzer) LLMAnalyzer {
	return LLMAnalyzer{reasoner: reasoner, fallback: fallback}
}

func (a LLMAnalyzer) Dimension() feasibility.Dimension { return a.fallback.Dimension() }

func (a LLMAnalyzer) Analyze(ctx context.Context, input feasibility.AnalyzerInput) (feasibility.DimensionAnalysis, error) {
	if a.reasoner == nil {
		return a.degrade(ctx, input, "no reasoner configured")
	}

	raw, err := a.reasoner.Reason(ctx, feasibility.ReasonRequest{
		Prompt:       a.buildPrompt(input),
		SystemPrompt: fmt.Sprintf("You are a %s feasibility analyst. Respond with a single JSON object and nothing else.", a.Dimension()),
		Temperature:  0.3,
		MaxTokens:    analysisMaxTokens,
	})
	if err != nil {
		return a.degrade(ctx, input, fmt.Sprintf("reasoner failed: %v", err))
	}

	analysis, err := parseAnalysis(raw)
	if err != nil {
		analysis = extractAnalysis(raw)
	}
	analysis.Dimension = a.Dimension()
	return analysis, nil
}

func (a LLMAnalyzer) degrade(ctx context.Context, input feasibility.AnalyzerInput, reason string) (feasibility.DimensionAnalysis, error) {
	analysis, err := a.fallback.Analyze(ctx, input)
	if err != nil {
		return feasibility.DimensionAnalysis{}, err
	}
	analysis.Assumptions = append(analysis.Assumptions,
		fmt.Sprintf("%s analysis degraded to keyword heuristics: %s", a.Dimension(), reason))
	return analysis, nil
}

func (a LLMAnalyzer) buildPrompt(input feasibility.AnalyzerInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze the %s feasibility of this project.\n\nProject: %s\n", a.Dimension(), strings.TrimSpace(input.Description))
	if strings.TrimSpace(input.ResearchContext) != "" {
		fmt.Fprintf(&b, "\nResearch findings:\n%s\n", input.ResearchContext)
	}
	if input.Previous != nil {
		fmt.Fprintf(&b, "\nThis is refinement pass %d. Previous analysis scored %.0f with %s confidence:\n%s\n",
			input.Iteration, input.Previous.Score, input.Previous.Confidence, input.Previous.Reasoning)
	}
	if strings.TrimSpace(input.Feedback) != "" {
		fmt.Fprintf(&b, "\nValidator feedback: %s\n", input.Feedback)
	}
	b.WriteString("\nReturn JSON with this shape:\n")
	b.WriteString(`{"score": 0, "confidence": "medium", "reasoning": "...", "keyFindings": ["..."], "risks": [{"description": "...", "severity": "medium"}], "opportunities": [{"description": "...", "impact": "medium"}], "assumptions": ["..."], "informationGaps": ["..."], "recommendations": ["..."]}` + "\n\n")
	b.WriteString("score is in [0,100]; confidence is one of very_low, low, medium, high, very_high.\n")
	return b.String()
}

type analysisPayload struct {
	Score       float64  `json:"score"`
	Confidence  string   `json:"confidence"`
	Reasoning   string   `json:"reasoning"`
	KeyFindings []string `json:"keyFindings"`
	Risks       []struct {
		Description string `json:"description"`
		Severity    string `json:"severity"`
	} `json:"risks"`
	Opportunities []struct {
		Description string `json:"description"`
		Impact      string `json:"impact"`
	} `json:"opportunities"`
	Assumptions     []string `json:"assumptions"`
	InformationGaps []string `json:"informationGaps"`
	Recommendations []string `json:"recommendations"`
}

func parseAnalysis(raw string) (feasibility.DimensionAnalysis, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return feasibility.DimensionAnalysis{}, fmt.Errorf("response did not include json")
	}

	var payload analysisPayload
	if err := json.Unmarshal([]byte(raw[start:end+1]), &payload); err != nil {
		return feasibility.DimensionAnalysis{}, err
	}

	analysis := feasibility.DimensionAnalysis{
		Score:           clamp(payload.Score, 0, 100),
		Confidence:      parseConfidence(payload.Confidence),
		Reasoning:       strings.TrimSpace(payload.Reasoning),
		KeyFindings:     payload.KeyFindings,
		Assumptions:     payload.Assumptions,
		InformationGaps: payload.InformationGaps,
		Recommendations: payload.Recommendations,
	}
	for _, risk := range payload.Risks {
		analysis.Risks = append(analysis.Risks, feasibility.Risk{Description: risk.Description, Severity: risk.Severity})
	}
	for _, opp := range payload.Opportunities {
		analysis.Opportunities = append(analysis.Opportunities, feasibility.Opportunity{Description: opp.Description, Impact: opp.Impact})
	}
	return analysis, nil
}

// extractAnalysis is the secondary parser: it pattern-matches a score out of
// free-form text and otherwise fills documented defaults.
func extractAnalysis(raw string) feasibility.DimensionAnalysis {
	score := float64(defaultParsedScore)
	assumptions := []string{"Score extracted from unstructured reasoning text; defaults applied"}
	if match := scorePattern.FindStringSubmatch(raw); match != nil {
		if parsed, err := strconv.Atoi(match[1]); err == nil {
			score = clamp(float64(parsed), 0, 100)
		}
	} else {
		assumptions = append(assumptions, fmt.Sprintf("No explicit score found; default %d assumed", defaultParsedScore))
	}
	return feasibility.DimensionAnalysis{
		Score:       score,
		Confidence:  feasibility.ConfidenceLow,
		Reasoning:   strings.TrimSpace(raw),
		Assumptions: assumptions,
	}
}

func parseConfidence(raw string) feasibility.ConfidenceLevel {
	switch feasibility.ConfidenceLevel(strings.ToLower(strings.TrimSpace(raw))) {
	case feasibility.ConfidenceVeryLow:
		return feasibility.ConfidenceVeryLow
	case feasibility.ConfidenceLow:
		return feasibility.ConfidenceLow
	case feasibility.ConfidenceHigh:
		return feasibility.ConfidenceHigh
	case feasibility.ConfidenceVeryHigh:
		return feasibility.ConfidenceVeryHigh
	default:
		return feasibility.ConfidenceMedium
	}
}
