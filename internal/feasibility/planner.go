package feasibility

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const maxResearchQueries = 3

// JSONPlanner asks the reasoner for a structured strategy decision.
type JSONPlanner struct {
	reasoner Reasoner
}

func NewJSONPlanner(reasoner Reasoner) JSONPlanner {
	return JSONPlanner{reasoner: reasoner}
}

func (p JSONPlanner) Plan(ctx context.Context, req ProjectRequest) (Strategy, error) {
	if p.reasoner == nil {
		return Strategy{}, errors.New("planner reasoner unavailable")
	}
	raw, err := p.reasoner.Reason(ctx, ReasonRequest{
		Prompt:       buildPlannerPrompt(req),
		SystemPrompt: plannerSystemPrompt,
		Temperature:  0.2,
		MaxTokens:    512,
	})
	if err != nil {
		return Strategy{}, fmt.Errorf("plan strategy: %w", err)
	}
	decision, err := parsePlannerDecision(raw)
	if err != nil {
		return Strategy{}, fmt.Errorf("parse strategy: %w", err)
	}

	strategy := Strategy{
		NeedsResearch:      decision.NeedsResearch,
		Queries:            decision.Queries,
		PriorityDimensions: parseDimensions(decision.PriorityDimensions),
		Reason:             decision.Reason,
	}
	if len(strategy.Queries) > maxResearchQueries {
		strategy.Queries = strategy.Queries[:maxResearchQueries]
	}
	if strategy.NeedsResearch && len(strategy.Queries) == 0 {
		strategy.Queries = defaultQueries(req)
	}
	if len(strategy.PriorityDimensions) == 0 {
		strategy.PriorityDimensions = AllDimensions()
	}
	return strategy, nil
}

// HeuristicPlanner is the deterministic fallback used when the reasoner is
// unavailable or returns unusable output.
type HeuristicPlanner struct{}

func (HeuristicPlanner) Plan(req ProjectRequest) Strategy {
	needsResearch := req.Depth != DepthQuick
	strategy := Strategy{
		NeedsResearch:      needsResearch,
		PriorityDimensions: AllDimensions(),
		Reason:             "heuristic plan from requested depth",
	}
	if needsResearch {
		strategy.Queries = defaultQueries(req)
	}
	return strategy
}

// defaultQueries templates the three standard research angles from the
// project name, so information gathering never starts with an empty list.
func defaultQueries(req ProjectRequest) []string {
	subject := strings.TrimSpace(req.ProjectName)
	if subject == "" {
		subject = firstWords(req.Description, 6)
	}
	return []string{
		fmt.Sprintf("market size and demand for %s", subject),
		fmt.Sprintf("technology maturity %s", subject),
		fmt.Sprintf("cost of comparable projects to %s", subject),
	}
}

func firstWords(text string, limit int) string {
	words := strings.Fields(strings.TrimSpace(text))
	if len(words) > limit {
		words = words[:limit]
	}
	return strings.Join(words, " ")
}
