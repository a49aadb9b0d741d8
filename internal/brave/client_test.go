package brave

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"feasly/backend/internal/config"
)

func TestSearchParsesAndBoundsResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "" {
			t.Errorf("expected query parameter, got none")
		}
		if r.Header.Get("X-Subscription-Token") != "test-key" {
			t.Errorf("missing subscription token header")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"web":{"results":[
			{"url":"https://example.gov/a","title":"Report A","description":"first snippet","profile":{"name":"Example Agency"}},
			{"url":"https://example.gov/a","title":"Duplicate","description":"dupe"},
			{"url":"https://example.org/b","title":"Report B","description":"second snippet"},
			{"url":"https://example.com/c","title":"Report C","description":"third snippet"}
		]}}`))
	}))
	defer server.Close()

	client := NewClient(config.Config{BraveAPIKey: "test-key", BraveBaseURL: server.URL}, server.Client())

	results, err := client.Search(context.Background(), "market size for robotics", 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results after dedupe and cap, got %d", len(results))
	}
	if results[0].Source != "Example Agency" {
		t.Fatalf("expected profile name source, got %q", results[0].Source)
	}
	if results[1].Source != "example.org" {
		t.Fatalf("expected hostname fallback source, got %q", results[1].Source)
	}
}

func TestSearchRequiresAPIKey(t *testing.T) {
	client := NewClient(config.Config{BraveBaseURL: "https://api.search.brave.com/res/v1"}, nil)

	_, err := client.Search(context.Background(), "anything", 5)
	if err != ErrMissingAPIKey {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestSearchSurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("rate limited"))
	}))
	defer server.Close()

	client := NewClient(config.Config{BraveAPIKey: "test-key", BraveBaseURL: server.URL}, server.Client())

	_, err := client.Search(context.Background(), "anything", 5)
	apiErr, ok := err.(APIError)
	if !ok {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("unexpected status: %d", apiErr.StatusCode)
	}
}
