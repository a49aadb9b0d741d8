package httpapi

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	_ "modernc.org/sqlite"

	"feasly/backend/internal/auth"
	"feasly/backend/internal/config"
	dbpkg "feasly/backend/internal/db"
	"feasly/backend/internal/feasibility"
	"feasly/backend/internal/report"
	"feasly/backend/internal/session"
)

type stubRunner struct {
	decision feasibility.Decision
	err      error
	calls    int
	lastReq  feasibility.ProjectRequest
}

func (s *stubRunner) Run(_ context.Context, req feasibility.ProjectRequest) (feasibility.Decision, error) {
	s.calls++
	s.lastReq = req
	if s.err != nil {
		return feasibility.Decision{}, s.err
	}
	return s.decision, nil
}

func testConfig() config.Config {
	return config.Config{
		Port:              "8080",
		Environment:       "test",
		AuthRequired:      false,
		SessionCookieName: "feasly_session",
		SessionTTL:        time.Hour,
		AnalysisTimeout:   5 * time.Second,
	}
}

func testRouter(t *testing.T, runner AnalysisRunner) http.Handler {
	t.Helper()

	sqldb, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { sqldb.Close() })
	if err := dbpkg.Migrate(context.Background(), sqldb); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := testConfig()
	h := NewHandler(cfg, session.NewStore(sqldb), auth.NewVerifier(cfg), runner, report.NewStore(sqldb))

	r := chi.NewRouter()
	r.Get("/healthz", h.Healthz)
	r.Group(func(p chi.Router) {
		p.Use(h.RequireSession)
		p.Post("/v1/analyses", h.CreateAnalysis)
		p.Get("/v1/analyses", h.ListAnalyses)
		p.Get("/v1/analyses/{id}", h.GetAnalysis)
	})
	return r
}

func stubDecision() feasibility.Decision {
	return feasibility.Decision{
		Feasibility:  feasibility.Feasible,
		OverallScore: 71.5,
		Confidence:   feasibility.ConfidenceHigh,
		Reasoning:    "strong fundamentals",
		DimensionScores: map[feasibility.Dimension]float64{
			feasibility.DimensionTechnology: 70,
			feasibility.DimensionMarket:     73,
		},
		AnalysisQuality: "high",
		Iterations:      1,
	}
}

func TestHealthz(t *testing.T) {
	router := testRouter(t, &stubRunner{decision: stubDecision()})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestCreateAnalysisSavesReport(t *testing.T) {
	runner := &stubRunner{decision: stubDecision()}
	router := testRouter(t, runner)

	body := bytes.NewBufferString(`{"projectName":"Solar Microgrid","description":"A community solar microgrid with storage.","depth":"standard"}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/analyses", body))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var saved report.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &saved); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if saved.ID == "" {
		t.Fatal("expected report id")
	}
	if saved.ProjectName != "Solar Microgrid" {
		t.Fatalf("unexpected project name %q", saved.ProjectName)
	}
	if saved.Decision.Feasibility != feasibility.Feasible {
		t.Fatalf("unexpected verdict %q", saved.Decision.Feasibility)
	}
	if runner.lastReq.Depth != feasibility.DepthStandard {
		t.Fatalf("unexpected depth %q", runner.lastReq.Depth)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/analyses/"+saved.ID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on fetch, got %d", rec.Code)
	}
}

func TestCreateAnalysisDefaultsProjectName(t *testing.T) {
	runner := &stubRunner{decision: stubDecision()}
	router := testRouter(t, runner)

	body := bytes.NewBufferString(`{"description":"An unnamed idea."}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/analyses", body))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if runner.lastReq.ProjectName != "Untitled Project" {
		t.Fatalf("unexpected project name %q", runner.lastReq.ProjectName)
	}
	if runner.lastReq.Depth != feasibility.DepthStandard {
		t.Fatalf("unexpected default depth %q", runner.lastReq.Depth)
	}
}

func TestCreateAnalysisRejectsEmptyDescription(t *testing.T) {
	runner := &stubRunner{decision: stubDecision()}
	router := testRouter(t, runner)

	body := bytes.NewBufferString(`{"projectName":"No Description","description":"   "}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/analyses", body))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if runner.calls != 0 {
		t.Fatalf("runner should not have been called, got %d calls", runner.calls)
	}
}

func TestCreateAnalysisRejectsUnknownDepth(t *testing.T) {
	router := testRouter(t, &stubRunner{decision: stubDecision()})

	body := bytes.NewBufferString(`{"description":"Something.","depth":"exhaustive"}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/analyses", body))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreateAnalysisMapsConfigErrorTo400(t *testing.T) {
	runner := &stubRunner{err: &feasibility.ConfigError{Reason: "at least one analyzer is required"}}
	router := testRouter(t, runner)

	body := bytes.NewBufferString(`{"description":"Broken setup."}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/analyses", body))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCreateAnalysisMapsRunnerFailureTo500(t *testing.T) {
	runner := &stubRunner{err: fmt.Errorf("provider exploded")}
	router := testRouter(t, runner)

	body := bytes.NewBufferString(`{"description":"Flaky provider."}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/analyses", body))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestGetAnalysisUnknownID(t *testing.T) {
	router := testRouter(t, &stubRunner{decision: stubDecision()})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/analyses/does-not-exist", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestListAnalyses(t *testing.T) {
	runner := &stubRunner{decision: stubDecision()}
	router := testRouter(t, runner)

	for i := 0; i < 2; i++ {
		body := bytes.NewBufferString(fmt.Sprintf(`{"projectName":"Project %d","description":"Idea number %d."}`, i, i))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/analyses", body))
		if rec.Code != http.StatusCreated {
			t.Fatalf("seed report %d: expected 201, got %d", i, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/analyses", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var payload struct {
		Reports []report.Summary `json:"reports"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Reports) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(payload.Reports))
	}
	if payload.Reports[0].Feasibility != feasibility.Feasible {
		t.Fatalf("unexpected summary verdict %q", payload.Reports[0].Feasibility)
	}
}

func TestListAnalysesRejectsBadLimit(t *testing.T) {
	router := testRouter(t, &stubRunner{decision: stubDecision()})

	for _, raw := range []string{"0", "-3", "9999", "abc"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/analyses?limit="+raw, nil))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("limit %q: expected 400, got %d", raw, rec.Code)
		}
	}
}

func TestListAnalysesEmptyIsArray(t *testing.T) {
	router := testRouter(t, &stubRunner{decision: stubDecision()})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/analyses", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := rec.Body.String(); !bytes.Contains([]byte(body), []byte(`"reports":[]`)) {
		t.Fatalf("expected empty array, got %s", body)
	}
}
