// PreviouslyOn - Social TV Tracking and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/previouslyon

package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values shared by the counters below.
const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeDegraded = "degraded"
	OutcomeSkipped  = "skipped"
	OutcomeDropped  = "dropped"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Duration of Postgres queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_query_errors_total",
			Help: "Total number of Postgres query errors",
		},
		[]string{"operation", "table"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Upstream (TMDB, Gemini) Metrics
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_requests_total",
			Help: "Total number of requests to external services",
		},
		[]string{"service", "endpoint", "outcome"},
	)

	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_request_duration_seconds",
			Help:    "External service request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8, 15},
		},
		[]string{"service", "endpoint"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Metadata Cache Metrics
	MetadataCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metadata_cache_hits_total",
			Help: "Total number of TMDB metadata cache hits",
		},
		[]string{"kind"},
	)

	MetadataCacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metadata_cache_misses_total",
			Help: "Total number of TMDB metadata cache misses",
		},
		[]string{"kind"},
	)

	MetadataCacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "metadata_cache_entries",
			Help: "Current number of cached TMDB responses",
		},
	)

	// Recommendation Metrics
	RecommendRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_runs_total",
			Help: "Collaborative recommendation runs by outcome",
		},
		[]string{"outcome"}, // success, skipped (below threshold), degraded (all seeds failed)
	)

	RecommendSeedFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_seed_failures_total",
			Help: "Seed shows whose recommendations could not be fetched",
		},
	)

	RecommendCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_candidates",
			Help:    "Number of candidates returned per recommendation run",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
		},
	)

	AssistantReplies = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_replies_total",
			Help: "AI assistant replies by outcome",
		},
		[]string{"outcome"},
	)

	// Hydration Metrics
	HydrationFallbackFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hydration_fallback_fetches_total",
			Help: "TMDB fetches made to fill gaps in the local cache",
		},
		[]string{"kind", "outcome"}, // kind: show, episode
	)

	HydrationDroppedRecords = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hydration_dropped_records_total",
			Help: "Activity records dropped because they could not be resolved",
		},
	)

	// Cache Writer Metrics
	CacheWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_writes_total",
			Help: "Write-through cache upserts by entity and outcome",
		},
		[]string{"entity", "outcome"},
	)

	CacheWriteDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cache_write_dropped_total",
			Help: "Write-through jobs dropped because the queue was full",
		},
	)

	CacheWriteQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cache_write_queue_depth",
			Help: "Jobs waiting in the write-through queue",
		},
	)

	// Auth Metrics
	AuthTokens = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_tokens_total",
			Help: "Bearer tokens seen by the auth middleware, by verification result",
		},
		[]string{"result"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordDBQuery records a database query metric.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, status string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordUpstream records one call to an external service.
func RecordUpstream(service, endpoint string, duration time.Duration, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	UpstreamRequests.WithLabelValues(service, endpoint, outcome).Inc()
	UpstreamRequestDuration.WithLabelValues(service, endpoint).Observe(duration.Seconds())
}

// RecordCacheLookup records a metadata cache hit or miss.
func RecordCacheLookup(kind string, hit bool) {
	if hit {
		MetadataCacheHits.WithLabelValues(kind).Inc()
	} else {
		MetadataCacheMisses.WithLabelValues(kind).Inc()
	}
}

// RecordHydrationFetch records one fallback fetch.
func RecordHydrationFetch(kind string, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	HydrationFallbackFetches.WithLabelValues(kind, outcome).Inc()
}

// RecordCacheWrite records one write-through upsert.
func RecordCacheWrite(entity string, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	CacheWrites.WithLabelValues(entity, outcome).Inc()
}

// Token verification results for AuthTokens.
const (
	TokenValid   = "valid"
	TokenExpired = "expired"
	TokenInvalid = "invalid"
)

// SetAppInfo publishes the build version.
func SetAppInfo(version string) {
	AppInfo.WithLabelValues(version, runtime.Version()).Set(1)
}
