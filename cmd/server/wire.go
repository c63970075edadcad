// PreviouslyOn - Social TV Tracking and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/previouslyon

package main

import (
	"fmt"
	"net/http"

	"github.com/tomtom215/previouslyon/internal/api"
	"github.com/tomtom215/previouslyon/internal/auth"
	"github.com/tomtom215/previouslyon/internal/config"
	"github.com/tomtom215/previouslyon/internal/gemini"
	"github.com/tomtom215/previouslyon/internal/hydrate"
	"github.com/tomtom215/previouslyon/internal/logging"
	"github.com/tomtom215/previouslyon/internal/recommend"
	"github.com/tomtom215/previouslyon/internal/store"
	"github.com/tomtom215/previouslyon/internal/supervisor/services"
	"github.com/tomtom215/previouslyon/internal/tmdb"
)

// components are the long-lived pieces main hands to the supervisor tree.
type components struct {
	router      *api.Router
	catalog     *tmdb.CachedClient
	cacheWriter *services.CacheWriterService
}

func wire(cfg *config.Config, st *store.Store) (*components, error) {
	logger := logging.Logger()

	rawTMDB := tmdb.NewClient(tmdb.Config{
		BaseURL:         cfg.TMDB.BaseURL,
		ReadAccessToken: cfg.TMDB.ReadAccessToken,
		Language:        cfg.TMDB.Language,
		RequestTimeout:  cfg.TMDB.RequestTimeout,
		RateLimit:       cfg.TMDB.RateLimit,
		RateBurst:       cfg.TMDB.RateBurst,
		MaxRetries:      cfg.TMDB.MaxRetries,
	}, logger)
	catalog := tmdb.NewCachedClient(tmdb.NewCircuitBreakerClient(rawTMDB, logger), tmdb.CacheConfig{
		Size:    cfg.TMDB.CacheSize,
		TTL:     cfg.TMDB.CacheTTL,
		ListTTL: cfg.TMDB.ListCacheTTL,
	})

	logging.Info().
		Str("tmdb_base_url", cfg.TMDB.BaseURL).
		Str("tmdb_token", logging.Redact(cfg.TMDB.ReadAccessToken)).
		Str("gemini_model", cfg.Gemini.Model).
		Str("gemini_key", logging.Redact(cfg.Gemini.APIKey)).
		Msg("Upstream clients configured")

	if !cfg.AssistantEnabled() {
		logging.Warn().Msg("GEMINI_API_KEY not set; assistant queries will return the fallback response")
	}
	model := gemini.NewCircuitBreakerClient(gemini.NewClient(gemini.Config{
		APIKey:  cfg.Gemini.APIKey,
		Model:   cfg.Gemini.Model,
		BaseURL: cfg.Gemini.BaseURL,
		Timeout: cfg.Gemini.Timeout,
	}, logger), logger)

	cacheWriter := services.NewCacheWriterService(st, cfg.CacheWriter, logger,
		services.WithDrainTimeout(cfg.Server.ShutdownTimeout))

	handler := api.NewHandler(api.Dependencies{
		Recommender: recommend.NewRecommender(st, catalog, cfg.Recommend, logger),
		Assistant:   recommend.NewAssistant(st, model, cfg.Assistant, logger),
		Resolver:    recommend.NewResolver(catalog, cfg.Assistant.ResolveTimeout, cfg.Assistant.ResolveConcurrency, logger),
		Hydrator:    hydrate.NewEngine(catalog, cacheWriter, cfg.Hydrate, logger),
		Activity:    st,
		Social:      st,
		Health:      st,
		Catalog:     catalog,
		Cache:       cacheWriter,
	}, api.HandlerConfig{ActivityLimit: cfg.Hydrate.ActivityLimit}, logger)

	authenticate, err := authMiddleware(cfg)
	if err != nil {
		return nil, err
	}

	chiMW := api.NewChiMiddleware(api.ChiMiddlewareConfigFromSecurity(&cfg.Security))
	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}

	return &components{
		router:      api.NewRouter(handler, chiMW, authenticate),
		catalog:     catalog,
		cacheWriter: cacheWriter,
	}, nil
}

// authMiddleware builds token verification. Config validation already
// rejects a missing secret in production; elsewhere every caller is
// anonymous.
func authMiddleware(cfg *config.Config) (func(http.Handler) http.Handler, error) {
	if cfg.Security.JWTSecret == "" {
		logging.Warn().Msg("SUPABASE_JWT_SECRET not set; all requests are anonymous. Use only for local development.")
		return nil, nil
	}
	verifier, err := auth.NewVerifier(&cfg.Security)
	if err != nil {
		return nil, fmt.Errorf("auth: %w", err)
	}
	logging.Info().Msg("JWT verification enabled")
	return auth.Middleware(verifier, logging.Logger()), nil
}
