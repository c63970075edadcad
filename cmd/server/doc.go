// PreviouslyOn - Social TV Tracking and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/previouslyon

/*
Package main is the entry point for the PreviouslyOn API server.

PreviouslyOn lets users track the TV shows they watch, follow friends and
get recommendations. Show and episode metadata comes from TMDB; free-text
recommendation queries go to Gemini. Users, lists, progress and reviews
live in Postgres, shared with the web client through Supabase.

# Process Layout

	RootSupervisor ("previouslyon")
	├── DataSupervisor ("data-layer")
	│   └── Cache writer (metadata write-through queue)
	├── MaintenanceSupervisor ("maintenance-layer")
	│   └── Cache janitor (TMDB LRU expiry sweep)
	└── APISupervisor ("api-layer")
	    └── HTTP server

Startup order:

 1. Configuration (Koanf v2: defaults, config.yaml, environment)
 2. Logging (zerolog)
 3. Postgres pool (pgx), optional schema bootstrap
 4. TMDB client chain: HTTP client, circuit breaker, LRU cache
 5. Gemini client behind a circuit breaker
 6. Recommender, assistant, resolver, hydration engine
 7. Token verifier, router and HTTP server
 8. Supervisor tree

# Configuration

Required:
  - DATABASE_URL: Postgres connection string
  - TMDB_READ_ACCESS_TOKEN: TMDB v4 read token

Optional:
  - GEMINI_API_KEY: enables the assistant; without it every query degrades
  - SUPABASE_JWT_SECRET: verifies caller tokens (required in production)
  - CORS_ORIGINS, RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW
  - LOG_LEVEL, LOG_FORMAT

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server stops accepting
connections and waits for in-flight requests, the cache writer flushes its
queue, and the database pool is closed last.
*/
package main
