package feasibility

import (
	"encoding/json"
	"errors"
	"strings"
)

func extractJSONBlock(raw string) string {
	value := strings.TrimSpace(raw)
	if strings.HasPrefix(value, "{") && strings.HasSuffix(value, "}") {
		return value
	}
	start := strings.Index(value, "{")
	end := strings.LastIndex(value, "}")
	if start == -1 || end == -1 || end <= start {
		return ""
	}
	return strings.TrimSpace(value[start : end+1])
}

type plannerDecision struct {
	NeedsResearch      bool     `json:"needsResearch"`
	Queries            []string `json:"queries"`
	PriorityDimensions []string `json:"priorityDimensions"`
	Reason             string   `json:"reason"`
}

func parsePlannerDecision(raw string) (plannerDecision, error) {
	jsonRaw := extractJSONBlock(raw)
	if jsonRaw == "" {
		return plannerDecision{}, errors.New("planner response did not include json")
	}
	var decision plannerDecision
	if err := json.Unmarshal([]byte(jsonRaw), &decision); err != nil {
		return plannerDecision{}, err
	}
	decision.Queries = dedupeStrings(decision.Queries)
	decision.Reason = strings.TrimSpace(decision.Reason)
	return decision, nil
}

type resultEvaluation struct {
	Relevance  float64 `json:"relevance"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

func parseResultEvaluation(raw string) (resultEvaluation, error) {
	jsonRaw := extractJSONBlock(raw)
	if jsonRaw == "" {
		return resultEvaluation{}, errors.New("evaluation response did not include json")
	}
	var eval resultEvaluation
	if err := json.Unmarshal([]byte(jsonRaw), &eval); err != nil {
		return resultEvaluation{}, err
	}
	eval.Relevance = clampUnit(eval.Relevance)
	eval.Confidence = clampUnit(eval.Confidence)
	eval.Reasoning = strings.TrimSpace(eval.Reasoning)
	return eval, nil
}

type consistencyVerdict struct {
	IsConsistent bool   `json:"isConsistent"`
	Conflicts    []struct {
		Dimensions  []string `json:"dimensions"`
		Description string   `json:"description"`
		Severity    string   `json:"severity"`
	} `json:"conflicts"`
	Reasoning string `json:"reasoning"`
}

func parseConsistencyVerdict(raw string) (consistencyVerdict, error) {
	jsonRaw := extractJSONBlock(raw)
	if jsonRaw == "" {
		return consistencyVerdict{}, errors.New("consistency response did not include json")
	}
	var verdict consistencyVerdict
	if err := json.Unmarshal([]byte(jsonRaw), &verdict); err != nil {
		return consistencyVerdict{}, err
	}
	verdict.Reasoning = strings.TrimSpace(verdict.Reasoning)
	return verdict, nil
}

func dedupeStrings(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		normalized := strings.Join(strings.Fields(strings.TrimSpace(value)), " ")
		if normalized == "" {
			continue
		}
		key := strings.ToLower(normalized)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, normalized)
	}
	return out
}

func parseDimensions(values []string) []Dimension {
	out := make([]Dimension, 0, len(values))
	seen := make(map[Dimension]struct{}, len(values))
	for _, value := range values {
		dim := Dimension(strings.ToLower(strings.TrimSpace(value)))
		switch dim {
		case DimensionTechnology, DimensionCost, DimensionEthics, DimensionMarket:
		default:
			continue
		}
		if _, ok := seen[dim]; ok {
			continue
		}
		seen[dim] = struct{}{}
		out = append(out, dim)
	}
	return out
}
