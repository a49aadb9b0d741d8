// Package providers adapts the concrete reasoning and retrieval clients to
// the interfaces the analysis workflow consumes, plus offline mock
// implementations for tests and demo runs.
package providers

import (
	"context"
	"fmt"
	"strings"

	"feasly/backend/internal/brave"
	"feasly/backend/internal/config"
	"feasly/backend/internal/feasibility"
	"feasly/backend/internal/openrouter"
)

// OpenRouterReasoner turns a chat completion client into a Reasoner.
type OpenRouterReasoner struct {
	client openrouter.Client
	model  string
}

func NewOpenRouterReasoner(client openrouter.Client, model string) OpenRouterReasoner {
	return OpenRouterReasoner{client: client, model: model}
}

func (r OpenRouterReasoner) Reason(ctx context.Context, req feasibility.ReasonRequest) (string, error) {
	messages := make([]openrouter.Message, 0, 2)
	if strings.TrimSpace(req.SystemPrompt) != "" {
		messages = append(messages, openrouter.Message{Role: "system", Content: req.SystemPrompt})
	}
	messages = append(messages, openrouter.Message{Role: "user", Content: req.Prompt})

	text, err := r.client.Complete(ctx, openrouter.CompletionRequest{
		Model:       r.model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("reason via openrouter: %w", err)
	}
	return text, nil
}

// BraveSearcher turns the Brave client into a Searcher.
type BraveSearcher struct {
	client brave.Client
}

func NewBraveSearcher(client brave.Client) BraveSearcher {
	return BraveSearcher{client: client}
}

func (s BraveSearcher) Search(ctx context.Context, query string, count int) ([]feasibility.SearchRecord, error) {
	results, err := s.client.Search(ctx, query, count)
	if err != nil {
		return nil, err
	}
	records := make([]feasibility.SearchRecord, 0, len(results))
	for _, result := range results {
		records = append(records, feasibility.SearchRecord{
			Title:   result.Title,
			URL:     result.URL,
			Snippet: result.Snippet,
			Source:  result.Source,
		})
	}
	return records, nil
}

// Resilient absorbs reasoner failures by answering with clearly marked
// mock text, so a run degrades instead of erroring on every call.
type Resilient struct {
	primary feasibility.Reasoner
	backup  feasibility.Reasoner
}

func NewResilient(primary feasibility.Reasoner) Resilient {
	return Resilient{primary: primary, backup: MockReasoner{}}
}

func (r Resilient) Reason(ctx context.Context, req feasibility.ReasonRequest) (string, error) {
	text, err := r.primary.Reason(ctx, req)
	if err == nil {
		return text, nil
	}
	fallback, backupErr := r.backup.Reason(ctx, req)
	if backupErr != nil {
		return "", err
	}
	return fallback, nil
}

// FromConfig wires the configured providers, or the mocks when the
// respective API keys are absent.
func FromConfig(cfg config.Config) (feasibility.Reasoner, feasibility.Searcher) {
	var reasoner feasibility.Reasoner
	if strings.TrimSpace(cfg.OpenRouterAPIKey) != "" {
		reasoner = NewResilient(NewOpenRouterReasoner(openrouter.NewClient(cfg, nil), cfg.OpenRouterModel))
	} else {
		reasoner = MockReasoner{}
	}

	var searcher feasibility.Searcher
	if strings.TrimSpace(cfg.BraveAPIKey) != "" {
		searcher = NewBraveSearcher(brave.NewClient(cfg, nil))
	} else {
		searcher = MockSearcher{}
	}
	return reasoner, searcher
}
