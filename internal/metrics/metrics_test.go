// PreviouslyOn - Social TV Tracking and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/previouslyon

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordDBQuery(t *testing.T) {
	before := testutil.ToFloat64(DBQueryErrors.WithLabelValues("select", "test_shows"))

	RecordDBQuery("select", "test_shows", 5*time.Millisecond, nil)
	RecordDBQuery("select", "test_shows", 5*time.Millisecond, errors.New("connection refused"))

	if got := testutil.ToFloat64(DBQueryErrors.WithLabelValues("select", "test_shows")) - before; got != 1 {
		t.Errorf("errors delta = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(DBQueryDuration); n == 0 {
		t.Error("expected at least one duration series")
	}
}

func TestRecordAPIRequest(t *testing.T) {
	c := APIRequestsTotal.WithLabelValues("GET", "/test/recommendations", "200")
	before := testutil.ToFloat64(c)

	RecordAPIRequest("GET", "/test/recommendations", "200", 20*time.Millisecond)

	if got := testutil.ToFloat64(c) - before; got != 1 {
		t.Errorf("delta = %v, want 1", got)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	TrackActiveRequest(true)
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests) - before; got != 1 {
		t.Errorf("delta = %v, want 1", got)
	}
	TrackActiveRequest(false)
}

func TestOutcomeHelpers(t *testing.T) {
	tests := []struct {
		name    string
		record  func(error)
		counter func(outcome string) prometheus.Counter
	}{
		{
			name:   "upstream",
			record: func(err error) { RecordUpstream("test-svc", "/tv", time.Millisecond, err) },
			counter: func(o string) prometheus.Counter {
				return UpstreamRequests.WithLabelValues("test-svc", "/tv", o)
			},
		},
		{
			name:   "hydration",
			record: func(err error) { RecordHydrationFetch("test-kind", err) },
			counter: func(o string) prometheus.Counter {
				return HydrationFallbackFetches.WithLabelValues("test-kind", o)
			},
		},
		{
			name:   "cache write",
			record: func(err error) { RecordCacheWrite("test-entity", err) },
			counter: func(o string) prometheus.Counter {
				return CacheWrites.WithLabelValues("test-entity", o)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			okBefore := testutil.ToFloat64(tt.counter(OutcomeSuccess))
			failBefore := testutil.ToFloat64(tt.counter(OutcomeFailure))

			tt.record(nil)
			tt.record(errors.New("boom"))
			tt.record(errors.New("boom"))

			if got := testutil.ToFloat64(tt.counter(OutcomeSuccess)) - okBefore; got != 1 {
				t.Errorf("success delta = %v, want 1", got)
			}
			if got := testutil.ToFloat64(tt.counter(OutcomeFailure)) - failBefore; got != 2 {
				t.Errorf("failure delta = %v, want 2", got)
			}
		})
	}
}

func TestRecordCacheLookup(t *testing.T) {
	hits := MetadataCacheHits.WithLabelValues("test")
	misses := MetadataCacheMisses.WithLabelValues("test")
	h0, m0 := testutil.ToFloat64(hits), testutil.ToFloat64(misses)

	RecordCacheLookup("test", true)
	RecordCacheLookup("test", false)
	RecordCacheLookup("test", false)

	if got := testutil.ToFloat64(hits) - h0; got != 1 {
		t.Errorf("hits delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(misses) - m0; got != 2 {
		t.Errorf("misses delta = %v, want 2", got)
	}
}

func TestMetricGathering(t *testing.T) {
	SetAppInfo("test")
	RecordDBQuery("select", "lint", time.Millisecond, nil)

	problems, err := testutil.GatherAndLint(prometheus.DefaultGatherer)
	if err != nil {
		t.Fatalf("GatherAndLint: %v", err)
	}
	for _, p := range problems {
		t.Logf("Metric lint problem: %s: %s", p.Metric, p.Text)
	}
}
