package httpapi

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"feasly/backend/internal/analyzers"
	"feasly/backend/internal/auth"
	"feasly/backend/internal/config"
	"feasly/backend/internal/feasibility"
	"feasly/backend/internal/providers"
	"feasly/backend/internal/report"
	"feasly/backend/internal/session"
)

func NewRouter(cfg config.Config, db *sql.DB) http.Handler {
	store := session.NewStore(db)
	verifier := auth.NewVerifier(cfg)
	reports := report.NewStore(db)
	h := NewHandler(cfg, store, verifier, workflowRunner{cfg: cfg}, reports)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", "X-Test-Email", "X-Test-Google-Sub"},
		ExposedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", h.Healthz)

	r.Route("/v1", func(v1 chi.Router) {
		v1.Route("/auth", func(authR chi.Router) {
			authR.Post("/google", h.AuthGoogle)
			authR.With(h.RequireSession).Get("/me", h.AuthMe)
			authR.With(h.RequireSession).Post("/logout", h.AuthLogout)
		})

		v1.Group(func(p chi.Router) {
			p.Use(h.RequireSession)
			p.Post("/analyses", h.CreateAnalysis)
			p.Get("/analyses", h.ListAnalyses)
			p.Get("/analyses/{id}", h.GetAnalysis)
		})
	})

	return r
}

// workflowRunner builds a fresh orchestrator per request; each run owns its
// own iteration counter and decision log.
type workflowRunner struct {
	cfg config.Config
}

func (wr workflowRunner) Run(ctx context.Context, req feasibility.ProjectRequest) (feasibility.Decision, error) {
	reasoner, searcher := providers.FromConfig(wr.cfg)
	orch, err := feasibility.NewOrchestrator(reasoner, searcher, analyzers.Reasoned(reasoner), feasibility.Options{
		ConfidenceThreshold: wr.cfg.ConfidenceThreshold,
		MaxIterations:       wr.cfg.MaxIterations,
		ResearchFanOut:      wr.cfg.ResearchFanOut,
		ResultsPerQuery:     wr.cfg.ResultsPerQuery,
		Weights:             feasibility.WeightsFor(wr.cfg.Weights),
	})
	if err != nil {
		return feasibility.Decision{}, err
	}
	return orch.Analyze(ctx, req)
}
