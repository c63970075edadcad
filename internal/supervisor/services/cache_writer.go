// PreviouslyOn - Social TV Tracking and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/previouslyon

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/previouslyon/internal/config"
	"github.com/tomtom215/previouslyon/internal/metrics"
	"github.com/tomtom215/previouslyon/internal/models"
)

// MetadataWriter persists cache rows.
type MetadataWriter interface {
	UpsertShow(ctx context.Context, show models.ShowRef) error
	UpsertEpisode(ctx context.Context, ep models.EpisodeRef) error
}

// Cache write entity labels.
const (
	EntityShow    = "show"
	EntityEpisode = "episode"
)

// cacheJob holds exactly one of show or episode.
type cacheJob struct {
	show    *models.ShowRef
	episode *models.EpisodeRef
}

func (j cacheJob) entity() (kind string, id int) {
	if j.show != nil {
		return EntityShow, j.show.ID
	}
	return EntityEpisode, j.episode.ID
}

// CacheWriterService applies metadata cache upserts off the request path.
// It implements hydrate.CacheSink and api.CacheSink.
type CacheWriterService struct {
	writer       MetadataWriter
	jobs         chan cacheJob
	writeTimeout time.Duration
	drainTimeout time.Duration
	logger       zerolog.Logger
}

// CacheWriterOption customizes a CacheWriterService.
type CacheWriterOption func(*CacheWriterService)

// WithDrainTimeout bounds how long shutdown spends flushing queued jobs.
func WithDrainTimeout(d time.Duration) CacheWriterOption {
	return func(s *CacheWriterService) {
		if d > 0 {
			s.drainTimeout = d
		}
	}
}

// NewCacheWriterService creates the writer with a queue of cfg.Buffer jobs.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewCacheWriterService(writer MetadataWriter, cfg config.CacheWriterConfig, logger zerolog.Logger,
	opts ...CacheWriterOption,
) *CacheWriterService {
	if cfg.Buffer <= 0 {
		cfg.Buffer = 256
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 3 * time.Second
	}
	s := &CacheWriterService{
		writer:       writer,
		jobs:         make(chan cacheJob, cfg.Buffer),
		writeTimeout: cfg.WriteTimeout,
		drainTimeout: 5 * time.Second,
		logger:       logger.With().Str("service", "cache-writer").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnqueueShow queues a show upsert without blocking.
func (s *CacheWriterService) EnqueueShow(show models.ShowRef) {
	s.enqueue(cacheJob{show: &show})
}

// EnqueueEpisode queues an episode upsert without blocking.
func (s *CacheWriterService) EnqueueEpisode(ep models.EpisodeRef) {
	s.enqueue(cacheJob{episode: &ep})
}

func (s *CacheWriterService) enqueue(job cacheJob) {
	select {
	case s.jobs <- job:
		metrics.CacheWriteQueueDepth.Set(float64(len(s.jobs)))
	default:
		metrics.CacheWriteDropped.Inc()
		kind, id := job.entity()
		s.logger.Debug().Str("entity", kind).Int("id", id).Msg("Cache write queue full, dropping job")
	}
}

// Pending returns the number of queued jobs.
func (s *CacheWriterService) Pending() int {
	return len(s.jobs)
}

// Serve implements suture.Service. On cancel it drains what is queued,
// bounded by the drain timeout, then returns ctx.Err().
func (s *CacheWriterService) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			s.drain()
			return ctx.Err()
		case job := <-s.jobs:
			// A write already dequeued finishes under its own timeout.
			s.write(context.WithoutCancel(ctx), job)
		}
	}
}

func (s *CacheWriterService) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), s.drainTimeout)
	defer cancel()

	flushed := 0
	for {
		select {
		case <-ctx.Done():
			s.logger.Warn().Int("flushed", flushed).Int("abandoned", len(s.jobs)).Msg("Cache write drain timed out")
			return
		case job := <-s.jobs:
			s.write(ctx, job)
			flushed++
		default:
			if flushed > 0 {
				s.logger.Info().Int("flushed", flushed).Msg("Cache write queue drained")
			}
			return
		}
	}
}

func (s *CacheWriterService) write(ctx context.Context, job cacheJob) {
	defer metrics.CacheWriteQueueDepth.Set(float64(len(s.jobs)))

	writeCtx, cancel := context.WithTimeout(ctx, s.writeTimeout)
	defer cancel()

	var err error
	if job.show != nil {
		err = s.writer.UpsertShow(writeCtx, *job.show)
	} else {
		err = s.writer.UpsertEpisode(writeCtx, *job.episode)
	}

	kind, id := job.entity()
	metrics.RecordCacheWrite(kind, err)
	if err != nil {
		s.logger.Warn().Err(err).Str("entity", kind).Int("id", id).Msg("Cache write failed")
	}
}

func (s *CacheWriterService) String() string {
	return "cache-writer"
}
