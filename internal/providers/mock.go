package providers

import (
	"context"
	"fmt"
	"strings"

	"feasly/backend/internal/feasibility"
)

// MockReasoner returns canned, clearly marked responses shaped for each
// prompt the workflow issues. It keeps the full pipeline runnable offline.
type MockReasoner struct{}

func (MockReasoner) Reason(_ context.Context, req feasibility.ReasonRequest) (string, error) {
	prompt := req.Prompt
	switch {
	case strings.Contains(prompt, "Decide how to analyze"):
		return `{"needsResearch": true, "queries": ["market size for the proposed project", "technology maturity for the proposed project", "cost of comparable projects"], "priorityDimensions": ["technology", "market", "cost", "ethics"], "reason": "mock plan: research improves all dimensions"}`, nil
	case strings.Contains(prompt, "Evaluate how useful"):
		return `{"relevance": 0.7, "confidence": 0.6, "reasoning": "mock evaluation: results appear broadly relevant"}`, nil
	case strings.Contains(prompt, "Check the following feasibility analyses"):
		return `{"isConsistent": true, "conflicts": [], "reasoning": "mock validation: no direct contradictions found"}`, nil
	case strings.Contains(prompt, "executive summary"):
		return "Mock summary: the project shows balanced feasibility across dimensions. The strongest signals come from established technology choices, while cost remains the main constraint. The recommended next step is a small validation pilot.", nil
	default:
		return `{"score": 65, "confidence": "medium", "reasoning": "mock analysis: moderate feasibility with standard risks", "keyFindings": ["mock finding"], "risks": [{"description": "mock risk", "severity": "medium"}], "opportunities": [{"description": "mock opportunity", "impact": "medium"}], "assumptions": ["mock response used in place of a live reasoning provider"], "informationGaps": [], "recommendations": ["validate with a pilot"]}`, nil
	}
}

// MockSearcher fabricates plausible results keyed on query keywords and pads
// to the requested count.
type MockSearcher struct{}

func (MockSearcher) Search(_ context.Context, query string, count int) ([]feasibility.SearchRecord, error) {
	if count <= 0 {
		count = 5
	}
	lower := strings.ToLower(query)
	var records []feasibility.SearchRecord

	switch {
	case strings.Contains(lower, "market size") || strings.Contains(lower, "market"):
		records = append(records,
			feasibility.SearchRecord{
				Title:   "Market Analysis: " + query,
				URL:     "https://example.com/market-analysis",
				Snippet: "The global market is estimated at $2.5B with 15% annual growth. Key players include established tech companies and emerging startups.",
				Source:  "Market Research Firm",
			},
			feasibility.SearchRecord{
				Title:   "Industry Report",
				URL:     "https://example.com/industry-report",
				Snippet: "Total addressable market projected to reach $5B within three years. North America represents 40% of market share.",
				Source:  "Industry Analysis",
			})
	case strings.Contains(lower, "technology") || strings.Contains(lower, "technical"):
		records = append(records,
			feasibility.SearchRecord{
				Title:   "Technology Stack Overview",
				URL:     "https://example.com/tech-stack",
				Snippet: "Leading solutions use cloud-native architecture with microservices. Average development time is 8-14 months with a team of 5-8 engineers.",
				Source:  "Tech Review",
			},
			feasibility.SearchRecord{
				Title:   "Technical Challenges and Solutions",
				URL:     "https://example.com/tech-challenges",
				Snippet: "Common challenges include scalability, data integration, and real-time processing.",
				Source:  "Engineering Blog",
			})
	case strings.Contains(lower, "cost") || strings.Contains(lower, "budget"):
		records = append(records, feasibility.SearchRecord{
			Title:   "Development Cost Analysis",
			URL:     "https://example.com/cost-analysis",
			Snippet: "Typical development costs range from $200K-$800K depending on complexity. Cloud infrastructure adds $2K-$10K monthly.",
			Source:  "Cost Estimation Service",
		})
	case strings.Contains(lower, "ethic") || strings.Contains(lower, "privacy"):
		records = append(records, feasibility.SearchRecord{
			Title:   "Ethical Considerations in Tech",
			URL:     "https://example.com/ethics",
			Snippet: "Key concerns include data privacy, algorithmic bias, and user consent. Best practice recommends privacy-by-design.",
			Source:  "Ethics Institute",
		})
	default:
		records = append(records, feasibility.SearchRecord{
			Title:   "Information about: " + query,
			URL:     "https://example.com/info",
			Snippet: "Relevant information and analysis regarding the query from multiple perspectives.",
			Source:  "General Research",
		})
	}

	for len(records) < count {
		records = append(records, feasibility.SearchRecord{
			Title:   fmt.Sprintf("Additional resource %d", len(records)+1),
			URL:     fmt.Sprintf("https://example.com/resource-%d", len(records)+1),
			Snippet: "Supporting information and analysis.",
			Source:  "Research Database",
		})
	}
	return records[:count], nil
}
