package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	unsetIfSet(t, "DATABASE_URL")
	unsetIfSet(t, "CONFIDENCE_THRESHOLD")
	unsetIfSet(t, "MAX_ITERATIONS")
	unsetIfSet(t, "OPENROUTER_BASE_URL")
	unsetIfSet(t, "BRAVE_BASE_URL")
	unsetIfSet(t, "AUTH_REQUIRED")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.DatabaseURL != "file:feasly.db" {
		t.Fatalf("unexpected default database url: %s", cfg.DatabaseURL)
	}
	if cfg.ConfidenceThreshold != 0.75 {
		t.Fatalf("unexpected default confidence threshold: %v", cfg.ConfidenceThreshold)
	}
	if cfg.MaxIterations != 3 {
		t.Fatalf("unexpected default max iterations: %d", cfg.MaxIterations)
	}
	if cfg.OpenRouterBaseURL != "https://openrouter.ai/api/v1" {
		t.Fatalf("unexpected openrouter base url: %s", cfg.OpenRouterBaseURL)
	}
	if cfg.BraveBaseURL != "https://api.search.brave.com/res/v1" {
		t.Fatalf("unexpected brave base url: %s", cfg.BraveBaseURL)
	}
	if cfg.AuthRequired {
		t.Fatal("auth should be disabled by default")
	}
}

func TestLoadRejectsInvalidThreshold(t *testing.T) {
	t.Setenv("CONFIDENCE_THRESHOLD", "1.5")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for threshold > 1")
	}
}

func TestLoadRejectsNonPositiveIterations(t *testing.T) {
	t.Setenv("MAX_ITERATIONS", "0")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for max iterations < 1")
	}
}

func TestLoadRequiresGoogleClientIDWhenAuthEnabled(t *testing.T) {
	t.Setenv("AUTH_REQUIRED", "true")
	t.Setenv("GOOGLE_CLIENT_ID", "")
	t.Setenv("AUTH_INSECURE_SKIP_GOOGLE_VERIFY", "false")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when GOOGLE_CLIENT_ID is missing")
	}
}

func TestLoadPolicyAppliesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	raw := []byte("confidence_threshold: 0.8\nmax_iterations: 2\nweights:\n  technology: 0.4\n  market: 0.4\n  cost: 0.1\n  ethics: 0.1\n")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write policy: %v", err)
	}

	policy, err := LoadPolicy(path)
	if err != nil {
		t.Fatalf("load policy: %v", err)
	}
	if policy.Weights["technology"] != 0.4 {
		t.Fatalf("unexpected technology weight: %v", policy.Weights["technology"])
	}

	cfg := Config{ConfidenceThreshold: 0.75, MaxIterations: 3}.Apply(policy)
	if cfg.ConfidenceThreshold != 0.8 {
		t.Fatalf("policy threshold not applied: %v", cfg.ConfidenceThreshold)
	}
	if cfg.MaxIterations != 2 {
		t.Fatalf("policy iterations not applied: %d", cfg.MaxIterations)
	}
	if cfg.Weights["market"] != 0.4 {
		t.Fatalf("policy weights not applied: %v", cfg.Weights)
	}
}

func TestLoadPolicyRejectsNegativeWeight(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	if err := os.WriteFile(path, []byte("weights:\n  cost: -0.2\n"), 0o644); err != nil {
		t.Fatalf("write policy: %v", err)
	}

	if _, err := LoadPolicy(path); err == nil {
		t.Fatal("expected error for negative weight")
	}
}

func unsetIfSet(t *testing.T, key string) {
	t.Helper()
	if _, ok := os.LookupEnv(key); ok {
		t.Setenv(key, "")
	}
}
