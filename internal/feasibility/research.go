package feasibility

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

const (
	sourceDiversityWeight   = 0.15
	sourceDiversityCeiling  = 0.35
	evaluationBonus         = 0.20
	confidenceFloor         = 0.10
	confidenceCeiling       = 0.95
	sufficiencyBar          = 0.60
	defaultResearchFanOut   = 5
	defaultResultsPerQuery  = 5
	maxDeepDiveSubQueries   = 5
	degradedSearchReasoning = "search provider failed for this query; no external information available"
)

// SufficiencyVerdict is the coordinator's call on whether gathered findings
// support analysis without another research pass.
type SufficiencyVerdict string

const (
	Sufficient       SufficiencyVerdict = "sufficient"
	NeedMoreResearch SufficiencyVerdict = "need_more_research"
)

// Coordinator gathers and scores research findings. Findings are cached by
// exact query string for the lifetime of the coordinator; the cache is never
// invalidated within a run.
type Coordinator struct {
	searcher      Searcher
	reasoner      Reasoner
	fanOut        int
	resultsPerHit int

	mu       sync.Mutex
	cache    map[string]Finding
	warnings []string
}

func NewCoordinator(searcher Searcher, reasoner Reasoner, fanOut, resultsPerQuery int) *Coordinator {
	if fanOut <= 0 {
		fanOut = defaultResearchFanOut
	}
	if resultsPerQuery <= 0 {
		resultsPerQuery = defaultResultsPerQuery
	}
	return &Coordinator{
		searcher:      searcher,
		reasoner:      reasoner,
		fanOut:        fanOut,
		resultsPerHit: resultsPerQuery,
		cache:         make(map[string]Finding),
	}
}

// Gather returns one finding per input query in input order. Distinct uncached
// queries are fetched concurrently, bounded by the fan-out limit; each
// distinct query is searched at most once per run.
func (c *Coordinator) Gather(ctx context.Context, queries []string, researchContext string) []Finding {
	missing := make([]string, 0, len(queries))
	seen := make(map[string]struct{}, len(queries))
	c.mu.Lock()
	for _, query := range queries {
		if _, cached := c.cache[query]; cached {
			continue
		}
		if _, dup := seen[query]; dup {
			continue
		}
		seen[query] = struct{}{}
		missing = append(missing, query)
	}
	c.mu.Unlock()

	if len(missing) > 0 {
		var wg sync.WaitGroup
		slots := make(chan struct{}, c.fanOut)
		for _, query := range missing {
			wg.Add(1)
			go func(query string) {
				defer wg.Done()
				slots <- struct{}{}
				defer func() { <-slots }()

				finding := c.investigate(ctx, query, researchContext)
				c.mu.Lock()
				c.cache[query] = finding
				c.mu.Unlock()
			}(query)
		}
		wg.Wait()
	}

	findings := make([]Finding, 0, len(queries))
	c.mu.Lock()
	for _, query := range queries {
		findings = append(findings, c.cache[query])
	}
	c.mu.Unlock()
	return findings
}

func (c *Coordinator) investigate(ctx context.Context, query, researchContext string) Finding {
	records, err := c.searcher.Search(ctx, query, c.resultsPerHit)
	if err != nil {
		c.warn(fmt.Sprintf("search failed for %q: %v", query, err))
		return Finding{
			Query:      query,
			Confidence: confidenceFloor,
			Relevance:  0,
			Reasoning:  degradedSearchReasoning,
		}
	}
	if len(records) == 0 {
		return Finding{
			Query:      query,
			Confidence: confidenceFloor,
			Relevance:  0,
			Reasoning:  "no results found for this query",
		}
	}

	sources := distinctSources(records)
	quantitative := float64(len(sources)) * sourceDiversityWeight
	if quantitative > sourceDiversityCeiling {
		quantitative = sourceDiversityCeiling
	}

	eval := c.evaluate(ctx, query, researchContext, records)
	confidence := (quantitative+eval.Confidence)/2 + evaluationBonus
	if confidence < confidenceFloor {
		confidence = confidenceFloor
	}
	if confidence > confidenceCeiling {
		confidence = confidenceCeiling
	}

	return Finding{
		Query:      query,
		Results:    records,
		Sources:    sources,
		Confidence: confidence,
		Relevance:  eval.Relevance,
		Reasoning:  eval.Reasoning,
	}
}

// evaluate asks the reasoner for a qualitative read of the results. On any
// failure it falls back to a snippet keyword overlap estimate.
func (c *Coordinator) evaluate(ctx context.Context, query, researchContext string, records []SearchRecord) resultEvaluation {
	if c.reasoner != nil {
		raw, err := c.reasoner.Reason(ctx, ReasonRequest{
			Prompt:       buildEvaluationPrompt(query, records),
			SystemPrompt: evaluatorSystemPrompt,
			Temperature:  0.1,
			MaxTokens:    256,
		})
		if err == nil {
			if eval, parseErr := parseResultEvaluation(raw); parseErr == nil {
				return eval
			}
			c.warn(fmt.Sprintf("result evaluation for %q returned unusable output; using keyword overlap", query))
		} else {
			c.warn(fmt.Sprintf("result evaluation for %q failed: %v", query, err))
		}
	}

	relevance := keywordOverlap(query+" "+researchContext, records)
	return resultEvaluation{
		Relevance:  relevance,
		Confidence: relevance,
		Reasoning:  "estimated from keyword overlap between query and result snippets",
	}
}

// DeepDive expands a topic into aspect sub-queries, gathers each, and merges
// them into one finding. Confidence and relevance merge via max rather than
// average: one strong sub-finding is sufficient evidence for the topic.
func (c *Coordinator) DeepDive(ctx context.Context, topic, researchContext string) Finding {
	subQueries := make([]string, 0, maxDeepDiveSubQueries)
	for _, aspect := range deepDiveAspects {
		if len(subQueries) >= maxDeepDiveSubQueries {
			break
		}
		subQueries = append(subQueries, fmt.Sprintf("%s %s", topic, aspect))
	}

	subFindings := c.Gather(ctx, subQueries, researchContext)

	merged := Finding{Query: topic}
	seenSources := make(map[string]struct{})
	reasons := make([]string, 0, len(subFindings))
	for _, finding := range subFindings {
		if finding.Confidence > merged.Confidence {
			merged.Confidence = finding.Confidence
		}
		if finding.Relevance > merged.Relevance {
			merged.Relevance = finding.Relevance
		}
		merged.Results = append(merged.Results, finding.Results...)
		for _, source := range finding.Sources {
			if _, ok := seenSources[source]; ok {
				continue
			}
			seenSources[source] = struct{}{}
			merged.Sources = append(merged.Sources, source)
		}
		if strings.TrimSpace(finding.Reasoning) != "" {
			reasons = append(reasons, finding.Reasoning)
		}
	}
	merged.Reasoning = strings.Join(reasons, " | ")
	return merged
}

// DecideSufficiency requires both mean confidence and mean relevance to clear
// the bar before declaring the findings sufficient.
func (c *Coordinator) DecideSufficiency(findings []Finding) SufficiencyVerdict {
	if len(findings) == 0 {
		return NeedMoreResearch
	}
	var confidenceSum, relevanceSum float64
	for _, finding := range findings {
		confidenceSum += finding.Confidence
		relevanceSum += finding.Relevance
	}
	n := float64(len(findings))
	if confidenceSum/n >= sufficiencyBar && relevanceSum/n >= sufficiencyBar {
		return Sufficient
	}
	return NeedMoreResearch
}

// Warnings returns the degradation notes accumulated so far.
func (c *Coordinator) Warnings() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.warnings))
	copy(out, c.warnings)
	return out
}

func (c *Coordinator) warn(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, existing := range c.warnings {
		if existing == message {
			return
		}
	}
	c.warnings = append(c.warnings, message)
}

func distinctSources(records []SearchRecord) []string {
	seen := make(map[string]struct{}, len(records))
	out := make([]string, 0, len(records))
	for _, record := range records {
		source := strings.TrimSpace(record.Source)
		if source == "" {
			continue
		}
		if _, ok := seen[source]; ok {
			continue
		}
		seen[source] = struct{}{}
		out = append(out, source)
	}
	return out
}

func keywordOverlap(context string, records []SearchRecord) float64 {
	terms := make(map[string]struct{})
	for _, word := range strings.Fields(strings.ToLower(context)) {
		if len(word) >= 4 {
			terms[word] = struct{}{}
		}
	}
	if len(terms) == 0 {
		return 0
	}
	matched := make(map[string]struct{})
	for _, record := range records {
		text := strings.ToLower(record.Title + " " + record.Snippet)
		for term := range terms {
			if strings.Contains(text, term) {
				matched[term] = struct{}{}
			}
		}
	}
	return clampUnit(float64(len(matched)) / float64(len(terms)))
}
