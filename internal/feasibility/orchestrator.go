package feasibility

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"
)

// Options is the configuration surface the orchestrator consumes.
type Options struct {
	ConfidenceThreshold float64
	MaxIterations       int
	ResearchFanOut      int
	ResultsPerQuery     int
	// Weights overrides the default dimension weight table when non-nil.
	Weights map[Dimension]float64
	Logger  *log.Logger
}

// Orchestrator drives one analysis run through planning, information
// gathering, parallel analysis, validation, bounded refinement, and
// synthesis. Each instance owns its own iteration counter and decision log;
// separate instances may run concurrently.
type Orchestrator struct {
	reasoner  Reasoner
	analyzers map[Dimension]Analyzer
	coord     *Coordinator
	opts      Options

	mu       sync.Mutex
	warnings []string
	log      []LogEntry
}

func NewOrchestrator(reasoner Reasoner, searcher Searcher, analyzers []Analyzer, opts Options) (*Orchestrator, error) {
	if opts.ConfidenceThreshold <= 0 || opts.ConfidenceThreshold > 1 {
		return nil, configErrorf("confidence threshold must be in (0,1], got %v", opts.ConfidenceThreshold)
	}
	if opts.MaxIterations < 1 {
		return nil, configErrorf("max iterations must be at least 1, got %d", opts.MaxIterations)
	}
	if len(analyzers) == 0 {
		return nil, configErrorf("at least one dimension analyzer is required")
	}

	byDimension := make(map[Dimension]Analyzer, len(analyzers))
	for _, analyzer := range analyzers {
		if _, dup := byDimension[analyzer.Dimension()]; dup {
			return nil, configErrorf("duplicate analyzer for dimension %s", analyzer.Dimension())
		}
		byDimension[analyzer.Dimension()] = analyzer
	}

	return &Orchestrator{
		reasoner:  reasoner,
		analyzers: byDimension,
		coord:     NewCoordinator(searcher, reasoner, opts.ResearchFanOut, opts.ResultsPerQuery),
		opts:      opts,
	}, nil
}

// Analyze runs the full workflow and returns the final decision. The only
// errors it returns are fatal: invalid input or a missing dimension analysis.
// Provider failures degrade the result instead and are surfaced through the
// decision's limitations.
func (o *Orchestrator) Analyze(ctx context.Context, req ProjectRequest) (Decision, error) {
	if strings.TrimSpace(req.Description) == "" {
		return Decision{}, configErrorf("project description is empty")
	}
	if req.Depth == "" {
		req.Depth = DepthStandard
	}

	strategy := o.plan(ctx, req)

	var findings []Finding
	if strategy.NeedsResearch {
		findings = o.gather(ctx, req, strategy)
	} else {
		o.appendLog(PhaseInformationGathering, "skipped", "strategy decided external research is unnecessary")
	}
	researchContext := summarizeFindings(findings)

	analyses, err := o.analyzeDimensions(ctx, req, strategy, researchContext)
	if err != nil {
		return Decision{}, err
	}

	validator := NewValidator(o.reasoner, o.opts.ConfidenceThreshold, o.warn)
	refiner := NewRefiner(o.analyzers, o.opts.ConfidenceThreshold, o.warn)

	validation, err := validator.Validate(ctx, analyses)
	if err != nil {
		return Decision{}, err
	}
	o.appendLog(PhaseValidation, "validated", fmt.Sprintf("overall confidence %.2f, consistent=%t", validation.OverallConfidence, validation.IsConsistent))

	iteration := 0
	for validation.NeedsRefinement && iteration < o.opts.MaxIterations {
		iteration++
		o.appendLog(PhaseRefinement, "refining", fmt.Sprintf("iteration %d of %d", iteration, o.opts.MaxIterations))

		analyses = refiner.Refine(ctx, analyses, validation, AnalyzerInput{
			Description:     req.Description,
			ResearchContext: researchContext,
			Iteration:       iteration,
		})

		validation, err = validator.Validate(ctx, analyses)
		if err != nil {
			return Decision{}, err
		}
		o.appendLog(PhaseValidation, "revalidated", fmt.Sprintf("overall confidence %.2f", validation.OverallConfidence))
	}
	if validation.NeedsRefinement {
		o.warn(fmt.Sprintf("confidence %.2f still below threshold %.2f after %d iterations", validation.OverallConfidence, o.opts.ConfidenceThreshold, iteration))
	}

	synthesizer := NewSynthesizer(o.reasoner, o.opts.Weights, o.warn)
	decision := synthesizer.Synthesize(ctx, req, analyses, validation, iteration)
	o.appendLog(PhaseSynthesis, "synthesized", fmt.Sprintf("score %.1f, %s", decision.OverallScore, decision.Feasibility))

	decision.Limitations = append(decision.Limitations, o.collectWarnings()...)
	o.appendLog(PhaseComplete, "done", "")
	decision.Log = o.snapshotLog()
	return decision, nil
}

func (o *Orchestrator) plan(ctx context.Context, req ProjectRequest) Strategy {
	planner := NewJSONPlanner(o.reasoner)
	strategy, err := planner.Plan(ctx, req)
	if err != nil {
		o.warn(fmt.Sprintf("strategy planning degraded to heuristic: %v", err))
		strategy = HeuristicPlanner{}.Plan(req)
	}
	strategy.ConfidenceThreshold = o.opts.ConfidenceThreshold
	strategy.MaxIterations = o.opts.MaxIterations
	o.appendLog(PhasePlanning, "planned", fmt.Sprintf("research=%t, %d queries", strategy.NeedsResearch, len(strategy.Queries)))
	return strategy
}

func (o *Orchestrator) gather(ctx context.Context, req ProjectRequest, strategy Strategy) []Finding {
	findings := o.coord.Gather(ctx, strategy.Queries, req.Description)
	verdict := o.coord.DecideSufficiency(findings)
	o.appendLog(PhaseInformationGathering, "gathered", fmt.Sprintf("%d findings, %s", len(findings), verdict))

	if req.Depth == DepthDeep {
		topic := strings.TrimSpace(req.ProjectName)
		if topic == "" {
			topic = firstWords(req.Description, 6)
		}
		findings = append(findings, o.coord.DeepDive(ctx, topic, req.Description))
		o.appendLog(PhaseInformationGathering, "deep_dive", topic)
	}
	return findings
}

// analyzeDimensions fans out to every analyzer concurrently and joins on all
// of them. A failed analyzer leaves a gap in the dimension set, which is a
// fatal error rather than a silently skipped dimension.
func (o *Orchestrator) analyzeDimensions(ctx context.Context, req ProjectRequest, strategy Strategy, researchContext string) ([]DimensionAnalysis, error) {
	dimensions := orderedDimensions(strategy.PriorityDimensions)
	input := AnalyzerInput{
		Description:     req.Description,
		ResearchContext: researchContext,
	}

	analyses := make([]DimensionAnalysis, len(dimensions))
	errs := make([]error, len(dimensions))
	var wg sync.WaitGroup
	for i, dimension := range dimensions {
		analyzer, ok := o.analyzers[dimension]
		if !ok {
			return nil, configErrorf("no analyzer configured for dimension %s", dimension)
		}
		wg.Add(1)
		go func(i int, dimension Dimension, analyzer Analyzer) {
			defer wg.Done()
			analysis, err := analyzer.Analyze(ctx, input)
			if err != nil {
				errs[i] = fmt.Errorf("analyze %s: %w", dimension, err)
				return
			}
			analysis.Dimension = dimension
			analysis.Score = clampScore(analysis.Score)
			analyses[i] = analysis
		}(i, dimension, analyzer)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, configErrorf("dimension analysis incomplete: %v", err)
		}
	}
	o.appendLog(PhaseParallelAnalysis, "analyzed", fmt.Sprintf("%d dimensions", len(analyses)))
	return analyses, nil
}

// orderedDimensions puts the strategy's priorities first, then any configured
// dimensions the strategy did not mention, in canonical order.
func orderedDimensions(priorities []Dimension) []Dimension {
	out := make([]Dimension, 0, len(AllDimensions()))
	seen := make(map[Dimension]struct{}, len(AllDimensions()))
	for _, dimension := range priorities {
		if _, ok := seen[dimension]; ok {
			continue
		}
		seen[dimension] = struct{}{}
		out = append(out, dimension)
	}
	for _, dimension := range AllDimensions() {
		if _, ok := seen[dimension]; ok {
			continue
		}
		seen[dimension] = struct{}{}
		out = append(out, dimension)
	}
	return out
}

func summarizeFindings(findings []Finding) string {
	if len(findings) == 0 {
		return ""
	}
	var b strings.Builder
	for _, finding := range findings {
		fmt.Fprintf(&b, "Query: %s (confidence %.2f, relevance %.2f)\n", finding.Query, finding.Confidence, finding.Relevance)
		for _, record := range finding.Results {
			fmt.Fprintf(&b, "- %s [%s]: %s\n", record.Title, record.Source, record.Snippet)
		}
	}
	return b.String()
}

func (o *Orchestrator) warn(message string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, existing := range o.warnings {
		if existing == message {
			return
		}
	}
	o.warnings = append(o.warnings, message)
}

func (o *Orchestrator) collectWarnings() []string {
	combined := append([]string{}, o.coord.Warnings()...)
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, warning := range o.warnings {
		duplicate := false
		for _, existing := range combined {
			if existing == warning {
				duplicate = true
				break
			}
		}
		if !duplicate {
			combined = append(combined, warning)
		}
	}
	return combined
}

func (o *Orchestrator) appendLog(phase Phase, action, detail string) {
	entry := LogEntry{Phase: phase, Action: action, Detail: detail, At: time.Now().UTC()}
	o.mu.Lock()
	o.log = append(o.log, entry)
	o.mu.Unlock()
	if o.opts.Logger != nil {
		if detail != "" {
			o.opts.Logger.Printf("feasibility: %s %s (%s)", phase, action, detail)
		} else {
			o.opts.Logger.Printf("feasibility: %s %s", phase, action)
		}
	}
}

func (o *Orchestrator) snapshotLog() []LogEntry {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]LogEntry, len(o.log))
	copy(out, o.log)
	return out
}
