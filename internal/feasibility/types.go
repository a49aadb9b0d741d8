package feasibility

import (
	"context"
	"fmt"
	"time"
)

// Dimension is one independent feasibility axis.
type Dimension string

const (
	DimensionTechnology Dimension = "technology"
	DimensionCost       Dimension = "cost"
	DimensionEthics     Dimension = "ethics"
	DimensionMarket     Dimension = "market"
)

func AllDimensions() []Dimension {
	return []Dimension{DimensionTechnology, DimensionCost, DimensionEthics, DimensionMarket}
}

// Depth controls how much effort a run spends before synthesizing.
type Depth string

const (
	DepthQuick         Depth = "quick"
	DepthStandard      Depth = "standard"
	DepthComprehensive Depth = "comprehensive"
	DepthDeep          Depth = "deep"
)

func ParseDepth(raw string) (Depth, error) {
	switch Depth(raw) {
	case DepthQuick, DepthStandard, DepthComprehensive, DepthDeep:
		return Depth(raw), nil
	case "":
		return DepthStandard, nil
	default:
		return "", fmt.Errorf("unknown analysis depth %q", raw)
	}
}

// ConfidenceLevel is the qualitative reliability bucket attached to an
// analysis. Midpoint maps it onto [0,1] for aggregation.
type ConfidenceLevel string

const (
	ConfidenceVeryLow  ConfidenceLevel = "very_low"
	ConfidenceLow      ConfidenceLevel = "low"
	ConfidenceMedium   ConfidenceLevel = "medium"
	ConfidenceHigh     ConfidenceLevel = "high"
	ConfidenceVeryHigh ConfidenceLevel = "very_high"
)

func (l ConfidenceLevel) Midpoint() float64 {
	switch l {
	case ConfidenceVeryLow:
		return 0.20
	case ConfidenceLow:
		return 0.40
	case ConfidenceMedium:
		return 0.60
	case ConfidenceHigh:
		return 0.80
	case ConfidenceVeryHigh:
		return 0.95
	default:
		return 0.60
	}
}

// LevelForValue buckets a numeric confidence in [0,1] into a level.
func LevelForValue(value float64) ConfidenceLevel {
	switch {
	case value >= 0.90:
		return ConfidenceVeryHigh
	case value >= 0.70:
		return ConfidenceHigh
	case value >= 0.50:
		return ConfidenceMedium
	case value >= 0.30:
		return ConfidenceLow
	default:
		return ConfidenceVeryLow
	}
}

// Phase names a stage of the orchestration state machine.
type Phase string

const (
	PhasePlanning             Phase = "planning"
	PhaseInformationGathering Phase = "information_gathering"
	PhaseParallelAnalysis     Phase = "parallel_analysis"
	PhaseValidation           Phase = "validation"
	PhaseRefinement           Phase = "refinement"
	PhaseSynthesis            Phase = "synthesis"
	PhaseComplete             Phase = "complete"
)

// ProjectRequest is the immutable input for one analysis run.
type ProjectRequest struct {
	ProjectName string `json:"projectName"`
	Description string `json:"description"`
	Depth       Depth  `json:"depth"`
}

// Strategy is decided once at planning time and consumed read-only by the
// later phases.
type Strategy struct {
	NeedsResearch       bool        `json:"needsResearch"`
	Queries             []string    `json:"queries"`
	PriorityDimensions  []Dimension `json:"priorityDimensions"`
	ConfidenceThreshold float64     `json:"confidenceThreshold"`
	MaxIterations       int         `json:"maxIterations"`
	Reason              string      `json:"reason"`
}

// SearchRecord is one retrieval result.
type SearchRecord struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
	Source  string `json:"source"`
}

// Finding is the scored result set for a single research query.
type Finding struct {
	Query      string         `json:"query"`
	Results    []SearchRecord `json:"results"`
	Sources    []string       `json:"sources"`
	Confidence float64        `json:"confidence"`
	Relevance  float64        `json:"relevance"`
	Reasoning  string         `json:"reasoning"`
}

// Risk and Opportunity are tagged with the dimension that produced them once
// they reach the final decision.
type Risk struct {
	Dimension   Dimension `json:"dimension,omitempty"`
	Description string    `json:"description"`
	Severity    string    `json:"severity"`
}

type Opportunity struct {
	Dimension   Dimension `json:"dimension,omitempty"`
	Description string    `json:"description"`
	Impact      string    `json:"impact"`
}

// DimensionAnalysis is one analyzer's verdict for one dimension. Refinement
// replaces an entry wholesale; entries are never partially mutated.
type DimensionAnalysis struct {
	Dimension       Dimension       `json:"dimension"`
	Score           float64         `json:"score"`
	Confidence      ConfidenceLevel `json:"confidence"`
	Reasoning       string          `json:"reasoning"`
	KeyFindings     []string        `json:"keyFindings"`
	Risks           []Risk          `json:"risks"`
	Opportunities   []Opportunity   `json:"opportunities"`
	Assumptions     []string        `json:"assumptions"`
	InformationGaps []string        `json:"informationGaps"`
	Recommendations []string        `json:"recommendations"`
	Evidence        []string        `json:"evidence"`
}

// AnalyzerInput carries the project text plus optional research context and,
// on refinement passes, the prior analysis and validation feedback.
type AnalyzerInput struct {
	Description     string
	ResearchContext string
	Previous        *DimensionAnalysis
	Feedback        string
	Iteration       int
}

// Analyzer scores a single dimension. Implementations must return a score in
// [0,100] and a confidence level for any non-empty description.
type Analyzer interface {
	Dimension() Dimension
	Analyze(ctx context.Context, input AnalyzerInput) (DimensionAnalysis, error)
}

// Conflict is a detected cross-dimension contradiction.
type Conflict struct {
	Dimensions  []Dimension `json:"dimensions"`
	Description string      `json:"description"`
	Severity    string      `json:"severity"`
}

// Validation is recomputed fresh each iteration.
type Validation struct {
	OverallConfidence float64    `json:"overallConfidence"`
	IsConsistent      bool       `json:"isConsistent"`
	Conflicts         []Conflict `json:"conflicts"`
	NeedsRefinement   bool       `json:"needsRefinement"`
	Reasoning         string     `json:"reasoning"`

	// consistencySource records whether the reasoner or the rule-based
	// detector produced the consistency verdict.
	consistencySource string
}

// Feasibility is the terminal verdict band.
type Feasibility string

const (
	HighlyFeasible     Feasibility = "HIGHLY_FEASIBLE"
	Feasible           Feasibility = "FEASIBLE"
	ModeratelyFeasible Feasibility = "MODERATELY_FEASIBLE"
	Challenging        Feasibility = "CHALLENGING"
	NotFeasible        Feasibility = "NOT_FEASIBLE"
)

// FeasibilityForScore maps an overall score onto its band. Bands are
// inclusive on their lower bound.
func FeasibilityForScore(score float64) Feasibility {
	switch {
	case score >= 80:
		return HighlyFeasible
	case score >= 65:
		return Feasible
	case score >= 50:
		return ModeratelyFeasible
	case score >= 35:
		return Challenging
	default:
		return NotFeasible
	}
}

// LogEntry is one append-only orchestration decision record.
type LogEntry struct {
	Phase  Phase     `json:"phase"`
	Action string    `json:"action"`
	Detail string    `json:"detail,omitempty"`
	At     time.Time `json:"at"`
}

// Decision is the terminal artifact of a run.
type Decision struct {
	Feasibility      Feasibility           `json:"overallFeasibility"`
	OverallScore     float64               `json:"overallScore"`
	Confidence       ConfidenceLevel       `json:"confidence"`
	Reasoning        string                `json:"reasoning"`
	Recommendation   string                `json:"recommendation"`
	CriticalRisks    []Risk                `json:"criticalRisks"`
	KeyOpportunities []Opportunity         `json:"keyOpportunities"`
	NextSteps        []string              `json:"nextSteps"`
	DimensionScores  map[Dimension]float64 `json:"dimensionScores"`
	AnalysisQuality  string                `json:"analysisQuality"`
	Assumptions      []string              `json:"assumptions"`
	Limitations      []string              `json:"limitations"`
	Iterations       int                   `json:"iterations"`
	Log              []LogEntry            `json:"log,omitempty"`
}

// Reasoner is the text-in/text-out reasoning capability. Implementations are
// expected to absorb provider unavailability by returning clearly marked
// fallback text rather than failing every call.
type Reasoner interface {
	Reason(ctx context.Context, req ReasonRequest) (string, error)
}

type ReasonRequest struct {
	Prompt       string
	SystemPrompt string
	Temperature  float64
	MaxTokens    int
}

// Searcher is the information-retrieval capability. An empty result list is a
// valid response meaning no information was found.
type Searcher interface {
	Search(ctx context.Context, query string, count int) ([]SearchRecord, error)
}

// ConfigError marks a fatal misconfiguration; it aborts the run immediately
// and is never absorbed into a degraded result.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "feasibility: " + e.Reason
}

func configErrorf(format string, args ...any) *ConfigError {
	return &ConfigError{Reason: fmt.Sprintf(format, args...)}
}

func clampScore(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return value
}

func clampUnit(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
