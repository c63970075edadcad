// PreviouslyOn - Social TV Tracking and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/previouslyon

package config

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Validate checks that required configuration is present and in range.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateDatabase,
		c.validateTMDB,
		c.validateGemini,
		c.validateRecommend,
		c.validateAssistant,
		c.validateHydrate,
		c.validateCacheWriter,
		c.validateSecurity,
		c.validateLogging,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	return requirePositive(map[string]time.Duration{
		"HTTP_TIMEOUT":     c.Server.Timeout,
		"SHUTDOWN_TIMEOUT": c.Server.ShutdownTimeout,
	})
}

func (c *Config) validateDatabase() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if containsPlaceholder(c.Database.URL) {
		return fmt.Errorf("DATABASE_URL contains a placeholder value")
	}
	if c.Database.MaxOpenConns < 1 {
		return fmt.Errorf("DATABASE_MAX_OPEN_CONNS must be at least 1")
	}
	if c.Database.MaxIdleConns < 0 || c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("DATABASE_MAX_IDLE_CONNS must be between 0 and DATABASE_MAX_OPEN_CONNS")
	}
	return nil
}

func (c *Config) validateTMDB() error {
	if c.TMDB.ReadAccessToken == "" {
		return fmt.Errorf("TMDB_READ_ACCESS_TOKEN is required")
	}
	if containsPlaceholder(c.TMDB.ReadAccessToken) {
		return fmt.Errorf("TMDB_READ_ACCESS_TOKEN contains a placeholder value")
	}
	if !strings.HasPrefix(c.TMDB.BaseURL, "http://") && !strings.HasPrefix(c.TMDB.BaseURL, "https://") {
		return fmt.Errorf("TMDB_BASE_URL must start with http:// or https://")
	}
	if c.TMDB.RateLimit <= 0 || c.TMDB.RateBurst < 1 {
		return fmt.Errorf("TMDB_RATE_LIMIT must be positive and TMDB_RATE_BURST at least 1")
	}
	if c.TMDB.MaxRetries < 0 {
		return fmt.Errorf("TMDB_MAX_RETRIES must not be negative")
	}
	if c.TMDB.CacheSize < 1 {
		return fmt.Errorf("TMDB_CACHE_SIZE must be at least 1")
	}
	return requirePositive(map[string]time.Duration{
		"TMDB_REQUEST_TIMEOUT": c.TMDB.RequestTimeout,
		"TMDB_CACHE_TTL":       c.TMDB.CacheTTL,
		"TMDB_LIST_CACHE_TTL":  c.TMDB.ListCacheTTL,
	})
}

// validateGemini accepts an empty key; the assistant then always degrades.
func (c *Config) validateGemini() error {
	if c.Gemini.APIKey != "" && c.Gemini.Model == "" {
		return fmt.Errorf("GEMINI_MODEL is required when GEMINI_API_KEY is set")
	}
	return requirePositive(map[string]time.Duration{
		"GEMINI_TIMEOUT": c.Gemini.Timeout,
	})
}

func (c *Config) validateRecommend() error {
	r := c.Recommend
	if r.MinLibrarySize < 0 {
		return fmt.Errorf("RECOMMEND_MIN_LIBRARY_SIZE must not be negative")
	}
	if r.SeedCount < 1 {
		return fmt.Errorf("RECOMMEND_SEED_COUNT must be at least 1")
	}
	if r.MaxLimit < 1 || r.DefaultLimit < 1 || r.DefaultLimit > r.MaxLimit {
		return fmt.Errorf("RECOMMEND_DEFAULT_LIMIT must be between 1 and RECOMMEND_MAX_LIMIT")
	}
	return requirePositive(map[string]time.Duration{
		"RECOMMEND_CALL_TIMEOUT": r.CallTimeout,
	})
}

func (c *Config) validateAssistant() error {
	if c.Assistant.RecentLists < 0 {
		return fmt.Errorf("ASSISTANT_RECENT_LISTS must not be negative")
	}
	if c.Assistant.ResolveConcurrency < 1 {
		return fmt.Errorf("ASSISTANT_RESOLVE_CONCURRENCY must be at least 1")
	}
	return requirePositive(map[string]time.Duration{
		"ASSISTANT_MODEL_TIMEOUT":   c.Assistant.ModelTimeout,
		"ASSISTANT_RESOLVE_TIMEOUT": c.Assistant.ResolveTimeout,
	})
}

func (c *Config) validateHydrate() error {
	if c.Hydrate.MaxConcurrency < 1 {
		return fmt.Errorf("HYDRATE_MAX_CONCURRENCY must be at least 1")
	}
	if c.Hydrate.ActivityLimit < 1 || c.Hydrate.ActivityLimit > 200 {
		return fmt.Errorf("ACTIVITY_LIMIT must be between 1 and 200")
	}
	return requirePositive(map[string]time.Duration{
		"HYDRATE_CALL_TIMEOUT": c.Hydrate.CallTimeout,
	})
}

func (c *Config) validateCacheWriter() error {
	if c.CacheWriter.Buffer < 1 {
		return fmt.Errorf("CACHE_WRITER_BUFFER must be at least 1")
	}
	return requirePositive(map[string]time.Duration{
		"CACHE_WRITER_WRITE_TIMEOUT": c.CacheWriter.WriteTimeout,
	})
}

// Rate limit bounds.
const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour
)

func (c *Config) validateSecurity() error {
	if c.IsProduction() {
		if c.Security.JWTSecret == "" {
			return fmt.Errorf("SUPABASE_JWT_SECRET is required when ENVIRONMENT=production")
		}
		if c.hasWildcardCORS() {
			return fmt.Errorf("CORS_ORIGINS=* (wildcard) is not allowed in production; " +
				"set specific origins such as CORS_ORIGINS=https://previouslyon.app")
		}
	}

	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	if c.Security.AssistantRateLimitReqs < 0 || c.Security.AssistantRateLimitReqs > c.Security.RateLimitReqs {
		return fmt.Errorf("ASSISTANT_RATE_LIMIT_REQUESTS must be between 0 and RATE_LIMIT_REQUESTS (%d)", c.Security.RateLimitReqs)
	}
	return nil
}

func (c *Config) hasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// IsProduction reports ENVIRONMENT=production (or prod).
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "production" || env == "prod"
}

// AssistantEnabled reports whether a model key is configured.
func (c *Config) AssistantEnabled() bool {
	return c.Gemini.APIKey != ""
}

var (
	validLogLevels  = map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true}
	validLogFormats = map[string]bool{"json": true, "console": true}
)

func (c *Config) validateLogging() error {
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if !validLogFormats[strings.ToLower(c.Logging.Format)] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

// requirePositive reports the first non-positive duration by name. Names
// are checked in sorted order so the error is deterministic.
func requirePositive(durations map[string]time.Duration) error {
	names := make([]string, 0, len(durations))
	for name := range durations {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		if durations[name] <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	return nil
}

var placeholderPatterns = []string{"changeme", "your_", "your-", "<", "xxx"}

func containsPlaceholder(value string) bool {
	lower := strings.ToLower(value)
	for _, p := range placeholderPatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
