// PreviouslyOn - Social TV Tracking and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/previouslyon

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/tomtom215/previouslyon/internal/auth"
	"github.com/tomtom215/previouslyon/internal/config"
)

// ChiMiddlewareConfig holds configuration for the chi middleware factories.
type ChiMiddlewareConfig struct {
	CORSAllowedOrigins   []string
	CORSAllowedMethods   []string
	CORSAllowedHeaders   []string
	CORSExposedHeaders   []string
	CORSAllowCredentials bool
	CORSMaxAge           int // seconds

	RateLimitRequests int
	RateLimitWindow   time.Duration
	RateLimitDisabled bool
	RateLimitKeyFunc  httprate.KeyFunc

	// AssistantRequests caps assistant queries per key within
	// RateLimitWindow, on top of the global limit. Zero disables it.
	AssistantRequests int
}

// DefaultChiMiddlewareConfig returns the defaults. CORS origins are empty,
// so cross-origin requests are refused until configured.
func DefaultChiMiddlewareConfig() *ChiMiddlewareConfig {
	return &ChiMiddlewareConfig{
		CORSAllowedOrigins: []string{},
		CORSAllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		// apikey and x-client-info are sent by supabase-js alongside the token.
		CORSAllowedHeaders: []string{"Content-Type", "Authorization", "X-Request-ID", "apikey", "x-client-info"},
		CORSExposedHeaders: []string{"X-Request-ID"},
		CORSMaxAge:         86400,

		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,
		AssistantRequests: 10,
	}
}

// ChiMiddlewareConfigFromSecurity maps the security section onto the
// defaults.
func ChiMiddlewareConfigFromSecurity(sec *config.SecurityConfig) *ChiMiddlewareConfig {
	cfg := DefaultChiMiddlewareConfig()
	cfg.CORSAllowedOrigins = sec.CORSOrigins
	if sec.RateLimitReqs > 0 {
		cfg.RateLimitRequests = sec.RateLimitReqs
	}
	if sec.RateLimitWindow > 0 {
		cfg.RateLimitWindow = sec.RateLimitWindow
	}
	cfg.RateLimitDisabled = sec.RateLimitDisabled
	cfg.AssistantRequests = sec.AssistantRateLimitReqs
	return cfg
}

// ChiMiddleware builds the CORS and rate limiting middleware.
type ChiMiddleware struct {
	config *ChiMiddlewareConfig
	cors   func(http.Handler) http.Handler
}

// NewChiMiddleware uses the defaults when config is nil.
func NewChiMiddleware(config *ChiMiddlewareConfig) *ChiMiddleware {
	if config == nil {
		config = DefaultChiMiddlewareConfig()
	}
	opts := cors.Options{
		AllowedOrigins:   config.CORSAllowedOrigins,
		AllowedMethods:   config.CORSAllowedMethods,
		AllowedHeaders:   config.CORSAllowedHeaders,
		ExposedHeaders:   config.CORSExposedHeaders,
		AllowCredentials: config.CORSAllowCredentials,
		MaxAge:           config.CORSMaxAge,
	}
	return &ChiMiddleware{config: config, cors: cors.Handler(opts)}
}

// CORS returns the go-chi/cors handler.
func (m *ChiMiddleware) CORS() func(http.Handler) http.Handler { return m.cors }

// RateLimit limits every /api/v1 route per client IP. It runs before
// authentication, so it cannot see the user.
func (m *ChiMiddleware) RateLimit() func(http.Handler) http.Handler {
	return m.limiter(m.config.RateLimitRequests, m.ipKey(), "Rate limit exceeded")
}

// AssistantRateLimit is the tighter budget for assistant queries. It runs
// after authentication and charges signed-in users per account, so users
// behind one NAT do not share a budget; anonymous callers fall back to IP.
func (m *ChiMiddleware) AssistantRateLimit() func(http.Handler) http.Handler {
	byIP := m.ipKey()
	byCaller := func(r *http.Request) (string, error) {
		if id := auth.UserIDFromContext(r.Context()); id != "" {
			return "user:" + id, nil
		}
		return byIP(r)
	}
	return m.limiter(m.config.AssistantRequests, byCaller, "Too many assistant requests, try again shortly")
}

func (m *ChiMiddleware) ipKey() httprate.KeyFunc {
	if m.config.RateLimitKeyFunc != nil {
		return m.config.RateLimitKeyFunc
	}
	return httprate.KeyByIP
}

func (m *ChiMiddleware) limiter(requests int, key httprate.KeyFunc, message string) func(http.Handler) http.Handler {
	if m.config.RateLimitDisabled || requests <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(requests, m.config.RateLimitWindow,
		httprate.WithKeyFuncs(key),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			WriteError(w, r, ErrCodeTooManyRequests, message)
		}),
	)
}
