// PreviouslyOn - Social TV Tracking and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/previouslyon

/*
Package config loads and validates PreviouslyOn configuration.

Configuration is layered with Koanf v2: struct defaults, then an optional
YAML file, then environment variables. Only mapped environment variables
are read; see envMappings for the full list.

Required:
  - DATABASE_URL: Postgres DSN (pgx)
  - TMDB_READ_ACCESS_TOKEN: TMDB v4 read access token used as a bearer token
  - SUPABASE_JWT_SECRET: required when ENVIRONMENT=production

Optional highlights:
  - GEMINI_API_KEY: without it the assistant always returns the apology payload
  - RECOMMEND_MIN_LIBRARY_SIZE (2), RECOMMEND_SEED_COUNT (3), RECOMMEND_CALL_TIMEOUT (4s)
  - ASSISTANT_MODEL_TIMEOUT (10s)
  - HYDRATE_MAX_CONCURRENCY (8), HYDRATE_CALL_TIMEOUT (4s)

Example config.yaml:

	server:
	  port: 8080
	tmdb:
	  cache_ttl: 6h
	recommend:
	  seed_count: 3
	security:
	  cors_origins:
	    - https://previouslyon.app
*/
package config
