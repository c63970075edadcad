// PreviouslyOn - Social TV Tracking and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/previouslyon

/*
Package metrics defines the Prometheus metrics exported at /metrics.

All collectors are promauto globals registered on the default registry.
Components record through the Record* helpers where one exists and use the
vectors directly otherwise.

# Groups

  - api_*: request counts, latency and in-flight gauge (middleware)
  - db_*: Postgres query latency and errors (store)
  - upstream_*: TMDB and Gemini calls (tmdb, gemini)
  - circuit_breaker_*: breaker state and transitions (breaker)
  - metadata_cache_*: TMDB response cache (tmdb.CachedClient)
  - recommend_*, assistant_*: personalization outcomes (recommend)
  - hydration_*: fallback fetches and dropped records (hydrate)
  - cache_write*: write-through queue (supervisor/services)
*/
package metrics
