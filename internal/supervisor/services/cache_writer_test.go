// PreviouslyOn - Social TV Tracking and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/previouslyon

package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/tomtom215/previouslyon/internal/config"
	"github.com/tomtom215/previouslyon/internal/metrics"
	"github.com/tomtom215/previouslyon/internal/models"
)

// recordingWriter records upserts. If gate is set, every write waits on it.
type recordingWriter struct {
	mu       sync.Mutex
	shows    []models.ShowRef
	episodes []models.EpisodeRef
	err      error
	gate     chan struct{}
}

func (w *recordingWriter) wait(ctx context.Context) error {
	if w.gate == nil {
		return nil
	}
	select {
	case <-w.gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *recordingWriter) UpsertShow(ctx context.Context, show models.ShowRef) error {
	if err := w.wait(ctx); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.shows = append(w.shows, show)
	return w.err
}

func (w *recordingWriter) UpsertEpisode(ctx context.Context, ep models.EpisodeRef) error {
	if err := w.wait(ctx); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.episodes = append(w.episodes, ep)
	return w.err
}

func (w *recordingWriter) counts() (shows, episodes int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.shows), len(w.episodes)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// Tests below read global counters and so do not run in parallel.

func TestCacheWriter_EnqueueDropsWhenFull(t *testing.T) {
	w := &recordingWriter{}
	svc := NewCacheWriterService(w, config.CacheWriterConfig{Buffer: 2}, zerolog.Nop())

	before := testutil.ToFloat64(metrics.CacheWriteDropped)

	done := make(chan struct{})
	go func() {
		for i := 1; i <= 5; i++ {
			svc.EnqueueShow(models.ShowRef{ID: i, Name: "show"})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Enqueue blocked on a full queue")
	}

	if got := svc.Pending(); got != 2 {
		t.Errorf("Pending() = %d, want 2", got)
	}
	if got := testutil.ToFloat64(metrics.CacheWriteDropped) - before; got != 3 {
		t.Errorf("dropped delta = %v, want 3", got)
	}
}

func TestCacheWriter_WritesAndCountsOutcomes(t *testing.T) {
	w := &recordingWriter{err: errors.New("db down")}
	svc := NewCacheWriterService(w, config.CacheWriterConfig{Buffer: 8, WriteTimeout: time.Second}, zerolog.Nop())

	failures := metrics.CacheWrites.WithLabelValues(EntityEpisode, metrics.OutcomeFailure)
	before := testutil.ToFloat64(failures)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	svc.EnqueueEpisode(models.EpisodeRef{ID: 11, ShowID: 1, SeasonNumber: 1, EpisodeNumber: 1})
	svc.EnqueueEpisode(models.EpisodeRef{ID: 12, ShowID: 1, SeasonNumber: 1, EpisodeNumber: 2})

	waitFor(t, func() bool { _, n := w.counts(); return n == 2 })
	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v, want context.Canceled", err)
	}

	if got := testutil.ToFloat64(failures) - before; got != 2 {
		t.Errorf("failure delta = %v, want 2", got)
	}
}

func TestCacheWriter_DrainsOnShutdown(t *testing.T) {
	w := &recordingWriter{}
	svc := NewCacheWriterService(w, config.CacheWriterConfig{Buffer: 8}, zerolog.Nop())

	svc.EnqueueShow(models.ShowRef{ID: 1, Name: "Dark"})
	svc.EnqueueEpisode(models.EpisodeRef{ID: 2, ShowID: 1})
	svc.EnqueueShow(models.ShowRef{ID: 3, Name: "Severance"})

	// Serve starts already canceled, so everything is written by the drain.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := svc.Serve(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v", err)
	}

	shows, episodes := w.counts()
	if shows != 2 || episodes != 1 {
		t.Errorf("wrote %d shows, %d episodes; want 2, 1", shows, episodes)
	}
	if svc.Pending() != 0 {
		t.Errorf("Pending() = %d after drain", svc.Pending())
	}
}

func TestCacheWriter_DrainIsBounded(t *testing.T) {
	w := &recordingWriter{gate: make(chan struct{})}
	svc := NewCacheWriterService(w, config.CacheWriterConfig{Buffer: 4, WriteTimeout: 20 * time.Millisecond}, zerolog.Nop(),
		WithDrainTimeout(50*time.Millisecond))

	for i := range 4 {
		svc.EnqueueShow(models.ShowRef{ID: i + 1, Name: "x"})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	_ = svc.Serve(ctx)
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("drain took %v, want it bounded by the drain timeout", elapsed)
	}
	if shows, _ := w.counts(); shows != 0 {
		t.Errorf("wrote %d shows through a closed gate", shows)
	}
}
