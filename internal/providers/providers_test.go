package providers

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"feasly/backend/internal/config"
	"feasly/backend/internal/feasibility"
)

type failingReasoner struct{}

func (failingReasoner) Reason(_ context.Context, _ feasibility.ReasonRequest) (string, error) {
	return "", errors.New("provider down")
}

func TestResilientFallsBackToMock(t *testing.T) {
	reasoner := NewResilient(failingReasoner{})

	text, err := reasoner.Reason(context.Background(), feasibility.ReasonRequest{
		Prompt: "Decide how to analyze the feasibility of the following project.",
	})
	if err != nil {
		t.Fatalf("resilient reasoner must absorb primary failure: %v", err)
	}
	if !strings.Contains(text, "needsResearch") {
		t.Fatalf("expected mock planner shape, got %q", text)
	}
}

func TestMockReasonerAnswersEveryPromptShape(t *testing.T) {
	prompts := map[string]string{
		"planner":    "Decide how to analyze the feasibility of the following project.",
		"evaluation": `Evaluate how useful these search results are for the query "x".`,
		"validation": "Check the following feasibility analyses for direct contradictions between dimensions.",
		"analysis":   "Analyze the technology feasibility of this project.",
	}
	for name, prompt := range prompts {
		text, err := (MockReasoner{}).Reason(context.Background(), feasibility.ReasonRequest{Prompt: prompt})
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if name != "summary" && !json.Valid([]byte(text)) {
			t.Fatalf("%s: mock response is not valid json: %q", name, text)
		}
	}

	summary, err := (MockReasoner{}).Reason(context.Background(), feasibility.ReasonRequest{
		Prompt: "Write a short executive summary (3-5 sentences) of the feasibility verdict.",
	})
	if err != nil || strings.TrimSpace(summary) == "" {
		t.Fatalf("summary prompt should get prose, got %q, %v", summary, err)
	}
}

func TestMockSearcherBoundsAndKeys(t *testing.T) {
	records, err := (MockSearcher{}).Search(context.Background(), "market size for robot baristas", 3)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected exactly 3 records, got %d", len(records))
	}
	if records[0].Source != "Market Research Firm" {
		t.Fatalf("market query should lead with market research, got %q", records[0].Source)
	}

	generic, err := (MockSearcher{}).Search(context.Background(), "something unrelated", 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(generic) != 5 {
		t.Fatalf("expected padding to requested count, got %d", len(generic))
	}
}

func TestFromConfigPicksMocksWithoutKeys(t *testing.T) {
	reasoner, searcher := FromConfig(config.Config{})
	if _, ok := reasoner.(MockReasoner); !ok {
		t.Fatalf("no API key should yield the mock reasoner, got %T", reasoner)
	}
	if _, ok := searcher.(MockSearcher); !ok {
		t.Fatalf("no API key should yield the mock searcher, got %T", searcher)
	}

	reasoner, searcher = FromConfig(config.Config{OpenRouterAPIKey: "k", BraveAPIKey: "k"})
	if _, ok := reasoner.(Resilient); !ok {
		t.Fatalf("configured key should yield the resilient reasoner, got %T", reasoner)
	}
	if _, ok := searcher.(BraveSearcher); !ok {
		t.Fatalf("configured key should yield the brave searcher, got %T", searcher)
	}
}
