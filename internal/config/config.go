// PreviouslyOn - Social TV Tracking and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/previouslyon

package config

import "time"

// Config holds all application configuration.
//
// Loading order (Koanf v2):
//  1. Defaults from defaultConfig
//  2. Optional YAML file (CONFIG_PATH, config.yaml, /etc/previouslyon/config.yaml)
//  3. Mapped environment variables
type Config struct {
	Server      ServerConfig      `koanf:"server"`
	Database    DatabaseConfig    `koanf:"database"`
	TMDB        TMDBConfig        `koanf:"tmdb"`
	Gemini      GeminiConfig      `koanf:"gemini"`
	Recommend   RecommendConfig   `koanf:"recommend"`
	Assistant   AssistantConfig   `koanf:"assistant"`
	Hydrate     HydrateConfig     `koanf:"hydrate"`
	CacheWriter CacheWriterConfig `koanf:"cache_writer"`
	Security    SecurityConfig    `koanf:"security"`
	Logging     LoggingConfig     `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // development, staging, production
}

// DatabaseConfig holds the Postgres connection settings.
type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`

	// AutoMigrate applies the embedded schema on startup. Intended for
	// local development only.
	AutoMigrate bool `koanf:"auto_migrate"`
}

// TMDBConfig holds the metadata client settings.
type TMDBConfig struct {
	ReadAccessToken string        `koanf:"read_access_token"`
	BaseURL         string        `koanf:"base_url"`
	ImageBaseURL    string        `koanf:"image_base_url"`
	Language        string        `koanf:"language"`
	RequestTimeout  time.Duration `koanf:"request_timeout"`
	RateLimit       float64       `koanf:"rate_limit"` // requests per second
	RateBurst       int           `koanf:"rate_burst"`
	MaxRetries      int           `koanf:"max_retries"` // 429 retries only

	CacheTTL     time.Duration `koanf:"cache_ttl"`
	ListCacheTTL time.Duration `koanf:"list_cache_ttl"` // trending, search, discover
	CacheSize    int           `koanf:"cache_size"`
}

// GeminiConfig holds the generative model settings. An empty APIKey
// leaves the assistant permanently degraded.
type GeminiConfig struct {
	APIKey  string        `koanf:"api_key"`
	Model   string        `koanf:"model"`
	BaseURL string        `koanf:"base_url"`
	Timeout time.Duration `koanf:"timeout"`
}

// RecommendConfig tunes the collaborative recommender.
type RecommendConfig struct {
	MinLibrarySize int           `koanf:"min_library_size"`
	SeedCount      int           `koanf:"seed_count"`
	DefaultLimit   int           `koanf:"default_limit"`
	MaxLimit       int           `koanf:"max_limit"`
	CallTimeout    time.Duration `koanf:"call_timeout"`
	Seed           int64         `koanf:"seed"` // 0 seeds from the clock
}

// AssistantConfig tunes the AI assistant.
type AssistantConfig struct {
	RecentLists    int           `koanf:"recent_lists"`
	ModelTimeout   time.Duration `koanf:"model_timeout"`
	ResolveTimeout time.Duration `koanf:"resolve_timeout"`

	// ResolveConcurrency bounds the TMDB lookups for one reply's codes.
	ResolveConcurrency int `koanf:"resolve_concurrency"`
}

// HydrateConfig tunes the hydration engine and feed sizes.
type HydrateConfig struct {
	CallTimeout    time.Duration `koanf:"call_timeout"`
	MaxConcurrency int           `koanf:"max_concurrency"`
	ActivityLimit  int           `koanf:"activity_limit"`
}

// CacheWriterConfig sizes the write-through queue.
type CacheWriterConfig struct {
	Buffer       int           `koanf:"buffer"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
}

// SecurityConfig holds token verification, CORS and rate limiting.
type SecurityConfig struct {
	JWTSecret         string        `koanf:"jwt_secret"`
	JWTAudience       string        `koanf:"jwt_audience"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	// AssistantRateLimitReqs caps assistant queries per user (per IP when
	// anonymous) within RateLimitWindow. Each query is a model call.
	AssistantRateLimitReqs int `koanf:"assistant_rate_limit_reqs"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Load reads configuration from defaults, an optional file and the
// environment, then validates it.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
