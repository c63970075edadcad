// PreviouslyOn - Social TV Tracking and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/previouslyon

package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/previouslyon/internal/auth"
	"github.com/tomtom215/previouslyon/internal/config"
	"github.com/tomtom215/previouslyon/internal/logging"
)

func TestRouter_UnknownRouteUsesEnvelope(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec, resp := do(t, env.handler, http.MethodGet, "/api/v1/nope", "", "")
	if rec.Code != http.StatusNotFound || resp.Success || resp.Error.Code != ErrCodeNotFound {
		t.Errorf("status = %d, resp = %+v", rec.Code, resp)
	}
	if resp.Meta == nil || resp.Meta.RequestID == "" {
		t.Error("expected request id in meta")
	}
	if rec.Header().Get("X-Request-ID") != resp.Meta.RequestID {
		t.Error("header and envelope request ids differ")
	}
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec, _ := do(t, env.handler, http.MethodDelete, "/api/v1/recommendations", "", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	do(t, env.handler, http.MethodGet, "/health/live", "", "")

	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "api_requests_total") {
		t.Error("expected api_requests_total in exposition")
	}
}

func TestRouter_RateLimit(t *testing.T) {
	t.Parallel()

	h := NewHandler(Dependencies{Recommender: &fakeRecommender{}}, HandlerConfig{}, logging.NewTestLogger(io.Discard))
	chiMW := NewChiMiddleware(ChiMiddlewareConfigFromSecurity(&config.SecurityConfig{
		RateLimitReqs:   2,
		RateLimitWindow: time.Minute,
	}))
	handler := NewRouter(h, chiMW, nil).SetupChi()

	codes := make([]int, 0, 3)
	for range 3 {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/recommendations", nil))
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v, want [200 200 429]", codes)
	}

	// Probes are outside the limited group.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("live after limit = %d", rec.Code)
	}
}

func TestRouter_AssistantRateLimit(t *testing.T) {
	t.Parallel()

	h := NewHandler(Dependencies{
		Recommender: &fakeRecommender{},
		Assistant:   &fakeAssistant{},
		Resolver:    &fakeResolver{},
	}, HandlerConfig{}, logging.NewTestLogger(io.Discard))
	chiMW := NewChiMiddleware(ChiMiddlewareConfigFromSecurity(&config.SecurityConfig{
		RateLimitReqs:          100,
		RateLimitWindow:        time.Minute,
		AssistantRateLimitReqs: 1,
	}))
	handler := NewRouter(h, chiMW, nil).SetupChi()

	ask := func() int {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/assistant", strings.NewReader(`{"query":"slow burn sci-fi"}`))
		req.Header.Set("Content-Type", "application/json")
		handler.ServeHTTP(rec, req)
		return rec.Code
	}
	if code := ask(); code != http.StatusOK {
		t.Fatalf("first assistant call = %d, want 200", code)
	}
	if code := ask(); code != http.StatusTooManyRequests {
		t.Errorf("second assistant call = %d, want 429", code)
	}

	// The global budget is separate.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/recommendations", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("recommendations after assistant limit = %d", rec.Code)
	}
}

func TestRouter_AssistantRateLimitPerUser(t *testing.T) {
	t.Parallel()

	h := NewHandler(Dependencies{
		Recommender: &fakeRecommender{},
		Assistant:   &fakeAssistant{},
		Resolver:    &fakeResolver{},
	}, HandlerConfig{}, logging.NewTestLogger(io.Discard))
	chiMW := NewChiMiddleware(ChiMiddlewareConfigFromSecurity(&config.SecurityConfig{
		RateLimitReqs:          100,
		RateLimitWindow:        time.Minute,
		AssistantRateLimitReqs: 1,
	}))
	// Stand-in for JWT verification: trust a test header.
	authenticate := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id := r.Header.Get("X-Test-User"); id != "" {
				r = r.WithContext(auth.ContextWithUserID(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
	handler := NewRouter(h, chiMW, authenticate).SetupChi()

	ask := func(user string) int {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/assistant", strings.NewReader(`{"query":"cozy mysteries"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Test-User", user)
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	// Same IP, different accounts: separate budgets.
	if code := ask("user-a"); code != http.StatusOK {
		t.Fatalf("user-a first call = %d", code)
	}
	if code := ask("user-b"); code != http.StatusOK {
		t.Fatalf("user-b first call = %d, want its own budget", code)
	}
	if code := ask("user-a"); code != http.StatusTooManyRequests {
		t.Errorf("user-a second call = %d, want 429", code)
	}
}

func TestRouter_CORS(t *testing.T) {
	t.Parallel()

	h := NewHandler(Dependencies{Recommender: &fakeRecommender{}}, HandlerConfig{}, logging.NewTestLogger(io.Discard))
	chiMW := NewChiMiddleware(ChiMiddlewareConfigFromSecurity(&config.SecurityConfig{
		CORSOrigins:       []string{"https://app.previously.on"},
		RateLimitDisabled: true,
	}))
	handler := NewRouter(h, chiMW, nil).SetupChi()

	tests := []struct {
		origin string
		want   string
	}{
		{"https://app.previously.on", "https://app.previously.on"},
		{"https://evil.example", ""},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/recommendations", nil)
		req.Header.Set("Origin", tt.origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.want {
			t.Errorf("origin %s: allow-origin = %q, want %q", tt.origin, got, tt.want)
		}
	}
}
