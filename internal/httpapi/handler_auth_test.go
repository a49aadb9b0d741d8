package httpapi

import (
	"bytes"
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"feasly/backend/internal/auth"
	dbpkg "feasly/backend/internal/db"
	"feasly/backend/internal/report"
	"feasly/backend/internal/session"
)

func authTestRouter(t *testing.T) http.Handler {
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
	cfg.AuthRequired = true
	cfg.InsecureSkipGoogleVerify = true
	cfg.AllowedGoogleEmails = map[string]struct{}{"tester@example.com": {}}

	h := NewHandler(cfg, session.NewStore(sqldb), auth.NewVerifier(cfg), &stubRunner{decision: stubDecision()}, report.NewStore(sqldb))

	r := chi.NewRouter()
	r.Post("/v1/auth/google", h.AuthGoogle)
	r.With(h.RequireSession).Get("/v1/auth/me", h.AuthMe)
	r.With(h.RequireSession).Post("/v1/auth/logout", h.AuthLogout)
	return r
}

func TestAuthGoogleInsecureModeCreatesSession(t *testing.T) {
	router := authTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/google", bytes.NewBufferString(`{"idToken":"test"}`))
	req.Header.Set("X-Test-Email", "tester@example.com")
	req.Header.Set("X-Test-Google-Sub", "sub-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "feasly_session" {
			cookie = c
		}
	}
	if cookie == nil || cookie.Value == "" {
		t.Fatal("expected a session cookie")
	}

	meReq := httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil)
	meReq.AddCookie(cookie)
	meRec := httptest.NewRecorder()
	router.ServeHTTP(meRec, meReq)
	if meRec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /me with session, got %d", meRec.Code)
	}
	if !bytes.Contains(meRec.Body.Bytes(), []byte("tester@example.com")) {
		t.Fatalf("expected session user in response, got %s", meRec.Body.String())
	}
}

func TestAuthGoogleRejectsNonAllowlistedEmail(t *testing.T) {
	router := authTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/google", bytes.NewBufferString(`{"idToken":"test"}`))
	req.Header.Set("X-Test-Email", "stranger@example.com")
	req.Header.Set("X-Test-Google-Sub", "sub-999")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRequireSessionRejectsMissingCookie(t *testing.T) {
	router := authTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestLogoutInvalidatesSession(t *testing.T) {
	router := authTestRouter(t)

	loginReq := httptest.NewRequest(http.MethodPost, "/v1/auth/google", bytes.NewBufferString(`{"idToken":"test"}`))
	loginReq.Header.Set("X-Test-Email", "tester@example.com")
	loginReq.Header.Set("X-Test-Google-Sub", "sub-123")
	loginRec := httptest.NewRecorder()
	router.ServeHTTP(loginRec, loginReq)
	if loginRec.Code != http.StatusOK {
		t.Fatalf("login failed: %d", loginRec.Code)
	}

	var cookie *http.Cookie
	for _, c := range loginRec.Result().Cookies() {
		if c.Name == "feasly_session" {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("expected a session cookie")
	}

	logoutReq := httptest.NewRequest(http.MethodPost, "/v1/auth/logout", nil)
	logoutReq.AddCookie(cookie)
	logoutRec := httptest.NewRecorder()
	router.ServeHTTP(logoutRec, logoutReq)
	if logoutRec.Code != http.StatusOK {
		t.Fatalf("logout failed: %d", logoutRec.Code)
	}

	meReq := httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil)
	meReq.AddCookie(cookie)
	meRec := httptest.NewRecorder()
	router.ServeHTTP(meRec, meReq)
	if meRec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", meRec.Code)
	}
}
