package analyzers

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"feasly/backend/internal/feasibility"
)

var sampleDescriptions = []string{
	"A mobile app that uses machine learning to recommend local restaurants",
	"Large-scale quantum computing platform for pharmaceutical drug discovery with clinical trial integration",
	"A simple survey tool for collecting customer feedback",
	"Autonomous drone delivery network using facial recognition for recipient verification",
	"",
}

func TestHeuristicAnalyzersAreDeterministic(t *testing.T) {
	for _, analyzer := range Defaults() {
		for _, description := range sampleDescriptions {
			input := feasibility.AnalyzerInput{Description: description}
			first, err := analyzer.Analyze(context.Background(), input)
			if err != nil {
				t.Fatalf("%s analyze: %v", analyzer.Dimension(), err)
			}
			second, err := analyzer.Analyze(context.Background(), input)
			if err != nil {
				t.Fatalf("%s analyze: %v", analyzer.Dimension(), err)
			}
			if !reflect.DeepEqual(first, second) {
				t.Fatalf("%s is not deterministic for %q", analyzer.Dimension(), description)
			}
		}
	}
}

func TestHeuristicAnalyzersStayInBounds(t *testing.T) {
	for _, analyzer := range Defaults() {
		for _, description := range sampleDescriptions {
			analysis, err := analyzer.Analyze(context.Background(), feasibility.AnalyzerInput{Description: description})
			if err != nil {
				t.Fatalf("%s analyze: %v", analyzer.Dimension(), err)
			}
			if analysis.Score < 0 || analysis.Score > 100 {
				t.Fatalf("%s score %v out of bounds for %q", analyzer.Dimension(), analysis.Score, description)
			}
			if analysis.Confidence == "" {
				t.Fatalf("%s returned no confidence for %q", analyzer.Dimension(), description)
			}
			if analysis.Dimension != analyzer.Dimension() {
				t.Fatalf("analysis tagged %s, expected %s", analysis.Dimension, analyzer.Dimension())
			}
		}
	}
}

func TestTechnologyRecognizesEmergingTech(t *testing.T) {
	mature, _ := Technology{}.Analyze(context.Background(), feasibility.AnalyzerInput{
		Description: "A web application using machine learning and cloud computing",
	})
	emerging, _ := Technology{}.Analyze(context.Background(), feasibility.AnalyzerInput{
		Description: "Quantum computing with room temperature superconductor hardware",
	})
	if emerging.Score >= mature.Score {
		t.Fatalf("emerging tech (%v) should score below mature tech (%v)", emerging.Score, mature.Score)
	}
}

func TestCostScoresInverselyToSpend(t *testing.T) {
	cheap, _ := Cost{}.Analyze(context.Background(), feasibility.AnalyzerInput{
		Description: "A simple web application prototype",
	})
	expensive, _ := Cost{}.Analyze(context.Background(), feasibility.AnalyzerInput{
		Description: "Satellite constellation with dedicated data center and chip fabrication, large-scale manufacturing and hiring",
	})
	if expensive.Score >= cheap.Score {
		t.Fatalf("high-cost project (%v) should score below low-cost project (%v)", expensive.Score, cheap.Score)
	}
}

func TestEthicsFlagsCriticalDomains(t *testing.T) {
	benign, _ := Ethics{}.Analyze(context.Background(), feasibility.AnalyzerInput{
		Description: "A recipe sharing website",
	})
	critical, _ := Ethics{}.Analyze(context.Background(), feasibility.AnalyzerInput{
		Description: "Facial recognition surveillance of children with gene editing records",
	})
	if critical.Score >= benign.Score {
		t.Fatalf("critical domains (%v) should score below benign ones (%v)", critical.Score, benign.Score)
	}
	if len(critical.Risks) == 0 {
		t.Fatal("critical domains must produce risks")
	}
}

func TestMarketPrefersGrowingMarkets(t *testing.T) {
	growing, _ := Market{}.Analyze(context.Background(), feasibility.AnalyzerInput{
		Description: "Cybersecurity platform for the global healthcare industry to reduce cost and enhance safety",
	})
	early, _ := Market{}.Analyze(context.Background(), feasibility.AnalyzerInput{
		Description: "Space tourism brain-computer interface",
	})
	if early.Score >= growing.Score {
		t.Fatalf("premature market (%v) should score below growing market (%v)", early.Score, growing.Score)
	}
}

type cannedReasoner struct {
	text string
	err  error
}

func (r cannedReasoner) Reason(_ context.Context, _ feasibility.ReasonRequest) (string, error) {
	return r.text, r.err
}

func TestLLMAnalyzerParsesStructuredOutput(t *testing.T) {
	reasoner := cannedReasoner{text: `{"score": 82, "confidence": "high", "reasoning": "solid foundations", "keyFindings": ["f1"], "risks": [{"description": "r1", "severity": "low"}], "opportunities": [], "assumptions": [], "informationGaps": [], "recommendations": ["do it"]}`}
	analyzer := NewLLMAnalyzer(reasoner, Technology{})

	analysis, err := analyzer.Analyze(context.Background(), feasibility.AnalyzerInput{Description: "a project"})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if analysis.Score != 82 || analysis.Confidence != feasibility.ConfidenceHigh {
		t.Fatalf("unexpected analysis: %+v", analysis)
	}
	if analysis.Dimension != feasibility.DimensionTechnology {
		t.Fatalf("wrapped analyzer dimension lost: %s", analysis.Dimension)
	}
}

func TestLLMAnalyzerExtractsScoreFromProse(t *testing.T) {
	reasoner := cannedReasoner{text: "After careful thought I would give this a feasibility score: 45 out of 100."}
	analyzer := NewLLMAnalyzer(reasoner, Technology{})

	analysis, err := analyzer.Analyze(context.Background(), feasibility.AnalyzerInput{Description: "a project"})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if analysis.Score != 45 {
		t.Fatalf("expected regex-extracted score 45, got %v", analysis.Score)
	}
	if analysis.Confidence != feasibility.ConfidenceLow {
		t.Fatalf("extracted analysis should carry low confidence, got %s", analysis.Confidence)
	}
}

func TestLLMAnalyzerDefaultsWhenNoScoreFound(t *testing.T) {
	reasoner := cannedReasoner{text: "This is a thoughtful essay with no numbers whatsoever."}
	analyzer := NewLLMAnalyzer(reasoner, Technology{})

	analysis, err := analyzer.Analyze(context.Background(), feasibility.AnalyzerInput{Description: "a project"})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if analysis.Score != 60 {
		t.Fatalf("expected default score 60, got %v", analysis.Score)
	}
	if len(analysis.Assumptions) == 0 {
		t.Fatal("defaulted analysis must document its assumptions")
	}
}

func TestLLMAnalyzerFallsBackToHeuristic(t *testing.T) {
	analyzer := NewLLMAnalyzer(cannedReasoner{err: errors.New("provider down")}, Market{})

	analysis, err := analyzer.Analyze(context.Background(), feasibility.AnalyzerInput{Description: "cybersecurity platform"})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if analysis.Dimension != feasibility.DimensionMarket {
		t.Fatalf("fallback should keep the dimension, got %s", analysis.Dimension)
	}
	found := false
	for _, assumption := range analysis.Assumptions {
		if strings.Contains(assumption, "degraded to keyword heuristics") {
			found = true
		}
	}
	if !found {
		t.Fatalf("fallback must be documented in assumptions: %v", analysis.Assumptions)
	}
}
