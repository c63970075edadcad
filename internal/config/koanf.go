// PreviouslyOn - Social TV Tracking and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/previouslyon

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order; the first existing file wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/previouslyon/config.yaml",
	"/etc/previouslyon/config.yml",
}

// ConfigPathEnvVar overrides the config file search.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		Database: DatabaseConfig{
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
		},
		TMDB: TMDBConfig{
			BaseURL:        "https://api.themoviedb.org/3",
			ImageBaseURL:   "https://image.tmdb.org/t/p",
			Language:       "en-US",
			RequestTimeout: 5 * time.Second,
			RateLimit:      40,
			RateBurst:      20,
			MaxRetries:     3,
			CacheTTL:       6 * time.Hour,
			ListCacheTTL:   10 * time.Minute,
			CacheSize:      5000,
		},
		Gemini: GeminiConfig{
			Model:   "gemini-2.5-flash-lite",
			BaseURL: "https://generativelanguage.googleapis.com",
			Timeout: 15 * time.Second,
		},
		Recommend: RecommendConfig{
			MinLibrarySize: 2,
			SeedCount:      3,
			DefaultLimit:   10,
			MaxLimit:       20,
			CallTimeout:    4 * time.Second,
		},
		Assistant: AssistantConfig{
			RecentLists:    3,
			ModelTimeout:   10 * time.Second,
			ResolveTimeout: 4 * time.Second,
			// Matches the hydrate fan-out width.
			ResolveConcurrency: 8,
		},
		Hydrate: HydrateConfig{
			CallTimeout:    4 * time.Second,
			MaxConcurrency: 8,
			ActivityLimit:  20,
		},
		CacheWriter: CacheWriterConfig{
			Buffer:       256,
			WriteTimeout: 5 * time.Second,
		},
		Security: SecurityConfig{
			JWTAudience:            "authenticated",
			CORSOrigins:            []string{"*"},
			RateLimitReqs:          100,
			RateLimitWindow:        time.Minute,
			AssistantRateLimitReqs: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadWithKoanf merges defaults, the config file and the environment, in
// that order of increasing priority.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Paths whose environment values are comma-separated lists.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		var parts []string
		for _, p := range strings.Split(strVal, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if len(parts) == 0 {
			continue
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

var envMappings = map[string]string{
	"http_host":        "server.host",
	"http_port":        "server.port",
	"http_timeout":     "server.timeout",
	"shutdown_timeout": "server.shutdown_timeout",
	"environment":      "server.environment",

	"database_url":               "database.url",
	"database_max_open_conns":    "database.max_open_conns",
	"database_max_idle_conns":    "database.max_idle_conns",
	"database_conn_max_lifetime": "database.conn_max_lifetime",
	"database_auto_migrate":      "database.auto_migrate",

	"tmdb_read_access_token": "tmdb.read_access_token",
	"tmdb_base_url":          "tmdb.base_url",
	"tmdb_image_base_url":    "tmdb.image_base_url",
	"tmdb_language":          "tmdb.language",
	"tmdb_request_timeout":   "tmdb.request_timeout",
	"tmdb_rate_limit":        "tmdb.rate_limit",
	"tmdb_rate_burst":        "tmdb.rate_burst",
	"tmdb_max_retries":       "tmdb.max_retries",
	"tmdb_cache_ttl":         "tmdb.cache_ttl",
	"tmdb_list_cache_ttl":    "tmdb.list_cache_ttl",
	"tmdb_cache_size":        "tmdb.cache_size",

	"gemini_api_key":  "gemini.api_key",
	"gemini_model":    "gemini.model",
	"gemini_base_url": "gemini.base_url",
	"gemini_timeout":  "gemini.timeout",

	"recommend_min_library_size": "recommend.min_library_size",
	"recommend_seed_count":       "recommend.seed_count",
	"recommend_default_limit":    "recommend.default_limit",
	"recommend_max_limit":        "recommend.max_limit",
	"recommend_call_timeout":     "recommend.call_timeout",
	"recommend_seed":             "recommend.seed",

	"assistant_recent_lists":        "assistant.recent_lists",
	"assistant_model_timeout":       "assistant.model_timeout",
	"assistant_resolve_timeout":     "assistant.resolve_timeout",
	"assistant_resolve_concurrency": "assistant.resolve_concurrency",

	"hydrate_call_timeout":    "hydrate.call_timeout",
	"hydrate_max_concurrency": "hydrate.max_concurrency",
	"activity_limit":          "hydrate.activity_limit",

	"cache_writer_buffer":        "cache_writer.buffer",
	"cache_writer_write_timeout": "cache_writer.write_timeout",

	"supabase_jwt_secret": "security.jwt_secret",
	"jwt_audience":        "security.jwt_audience",
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	"assistant_rate_limit_requests": "security.assistant_rate_limit_reqs",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps an environment variable name to its koanf path.
// Unmapped variables return "" and are skipped, so unrelated environment
// never leaks into the config.
//
//	TMDB_READ_ACCESS_TOKEN -> tmdb.read_access_token
//	SUPABASE_JWT_SECRET    -> security.jwt_secret
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
