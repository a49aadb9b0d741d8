package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultPort                = "8080"
	defaultSessionCookieName   = "feasly_session"
	defaultSessionTTLHours     = 168
	defaultDatabaseURL         = "file:feasly.db"
	defaultOpenRouterBaseURL   = "https://openrouter.ai/api/v1"
	defaultOpenRouterModel     = "openrouter/free"
	defaultBraveBaseURL        = "https://api.search.brave.com/res/v1"
	defaultProviderTimeoutSecs = 60
	defaultAnalysisTimeoutSecs = 300
	defaultConfidenceThreshold = 0.75
	defaultMaxIterations       = 3
	defaultResearchFanOut      = 5
	defaultResultsPerQuery     = 5
)

type Config struct {
	Port                     string
	Environment              string
	AllowedOrigins           []string
	AuthRequired             bool
	CookieSecure             bool
	SessionCookieName        string
	SessionTTL               time.Duration
	AllowedGoogleEmails      map[string]struct{}
	GoogleClientID           string
	InsecureSkipGoogleVerify bool
	DatabaseURL              string
	DatabaseAuthToken        string
	OpenRouterAPIKey         string
	OpenRouterBaseURL        string
	OpenRouterModel          string
	BraveAPIKey              string
	BraveBaseURL             string
	ProviderTimeout          time.Duration
	AnalysisTimeout          time.Duration
	ConfidenceThreshold      float64
	MaxIterations            int
	ResearchFanOut           int
	ResultsPerQuery          int
	// Weights comes only from a policy file; nil keeps the built-in table.
	Weights map[string]float64
}

func (c Config) ListenAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

func Load() (Config, error) {
	cfg := Config{
		Port:                     envOrDefault("PORT", defaultPort),
		Environment:              envOrDefault("APP_ENV", "development"),
		AuthRequired:             boolOrDefault("AUTH_REQUIRED", false),
		CookieSecure:             boolOrDefault("COOKIE_SECURE", false),
		SessionCookieName:        envOrDefault("SESSION_COOKIE_NAME", defaultSessionCookieName),
		GoogleClientID:           strings.TrimSpace(os.Getenv("GOOGLE_CLIENT_ID")),
		InsecureSkipGoogleVerify: boolOrDefault("AUTH_INSECURE_SKIP_GOOGLE_VERIFY", false),
		DatabaseURL:              envOrDefault("DATABASE_URL", defaultDatabaseURL),
		DatabaseAuthToken:        strings.TrimSpace(os.Getenv("DATABASE_AUTH_TOKEN")),
		OpenRouterAPIKey:         strings.TrimSpace(os.Getenv("OPENROUTER_API_KEY")),
		OpenRouterBaseURL:        envOrDefault("OPENROUTER_BASE_URL", defaultOpenRouterBaseURL),
		OpenRouterModel:          envOrDefault("OPENROUTER_MODEL", defaultOpenRouterModel),
		BraveAPIKey:              strings.TrimSpace(os.Getenv("BRAVE_API_KEY")),
		BraveBaseURL:             envOrDefault("BRAVE_BASE_URL", defaultBraveBaseURL),
		ConfidenceThreshold:      floatOrDefault("CONFIDENCE_THRESHOLD", defaultConfidenceThreshold),
		MaxIterations:            intOrDefault("MAX_ITERATIONS", defaultMaxIterations),
		ResearchFanOut:           intOrDefault("RESEARCH_FAN_OUT", defaultResearchFanOut),
		ResultsPerQuery:          intOrDefault("RESULTS_PER_QUERY", defaultResultsPerQuery),
	}

	if cfg.Environment == "production" {
		cfg.CookieSecure = true
	}

	cfg.ProviderTimeout = time.Duration(intOrDefault("PROVIDER_TIMEOUT_SECONDS", defaultProviderTimeoutSecs)) * time.Second
	cfg.AnalysisTimeout = time.Duration(intOrDefault("ANALYSIS_TIMEOUT_SECONDS", defaultAnalysisTimeoutSecs)) * time.Second

	sessionTTLHours := intOrDefault("SESSION_TTL_HOURS", defaultSessionTTLHours)
	cfg.SessionTTL = time.Duration(sessionTTLHours) * time.Hour
	if cfg.SessionTTL <= 0 {
		return Config{}, errors.New("SESSION_TTL_HOURS must be > 0")
	}

	cfg.AllowedGoogleEmails = parseEmailSet(strings.TrimSpace(os.Getenv("ALLOWED_GOOGLE_EMAILS")))

	origins := parseList(envOrDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:4173"))
	if len(origins) == 0 {
		return Config{}, errors.New("CORS_ALLOWED_ORIGINS must include at least one origin")
	}
	cfg.AllowedOrigins = origins

	if strings.HasPrefix(cfg.DatabaseURL, "libsql://") && cfg.DatabaseAuthToken == "" {
		return Config{}, errors.New("DATABASE_AUTH_TOKEN is required for libsql:// URLs")
	}
	if cfg.AuthRequired && !cfg.InsecureSkipGoogleVerify && cfg.GoogleClientID == "" {
		return Config{}, errors.New("GOOGLE_CLIENT_ID is required unless AUTH_INSECURE_SKIP_GOOGLE_VERIFY=true")
	}
	if cfg.ConfidenceThreshold <= 0 || cfg.ConfidenceThreshold > 1 {
		return Config{}, errors.New("CONFIDENCE_THRESHOLD must be in (0, 1]")
	}
	if cfg.MaxIterations < 1 {
		return Config{}, errors.New("MAX_ITERATIONS must be >= 1")
	}

	return cfg, nil
}

// Policy is the optional analysis policy file: per-dimension weights plus
// iteration control. Zero-valued fields keep the environment-derived values.
type Policy struct {
	ConfidenceThreshold float64            `yaml:"confidence_threshold"`
	MaxIterations       int                `yaml:"max_iterations"`
	Weights             map[string]float64 `yaml:"weights"`
}

func LoadPolicy(path string) (Policy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("read policy file: %w", err)
	}

	var policy Policy
	if err := yaml.Unmarshal(raw, &policy); err != nil {
		return Policy{}, fmt.Errorf("parse policy file: %w", err)
	}

	if policy.ConfidenceThreshold < 0 || policy.ConfidenceThreshold > 1 {
		return Policy{}, errors.New("confidence_threshold must be in (0, 1]")
	}
	if policy.MaxIterations < 0 {
		return Policy{}, errors.New("max_iterations must be >= 1")
	}
	for dimension, weight := range policy.Weights {
		if weight < 0 {
			return Policy{}, fmt.Errorf("weight for %q must be >= 0", dimension)
		}
	}

	return policy, nil
}

func (c Config) Apply(policy Policy) Config {
	out := c
	if policy.ConfidenceThreshold > 0 {
		out.ConfidenceThreshold = policy.ConfidenceThreshold
	}
	if policy.MaxIterations > 0 {
		out.MaxIterations = policy.MaxIterations
	}
	if len(policy.Weights) > 0 {
		out.Weights = policy.Weights
	}
	return out
}

func envOrDefault(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func boolOrDefault(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

func intOrDefault(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

func floatOrDefault(key string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func parseList(raw string) []string {
	items := strings.Split(raw, ",")
	out := make([]string, 0, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func parseEmailSet(raw string) map[string]struct{} {
	emails := parseList(raw)
	out := make(map[string]struct{}, len(emails))
	for _, email := range emails {
		out[strings.ToLower(email)] = struct{}{}
	}
	return out
}
