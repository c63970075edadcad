// PreviouslyOn - Social TV Tracking and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/previouslyon

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// ExpiringCache evicts entries past their TTL and reports how many.
type ExpiringCache interface {
	CleanupExpired() int
}

// CacheJanitorService sweeps an ExpiringCache on a fixed interval. Without
// it, expired entries linger until LRU pressure pushes them out.
type CacheJanitorService struct {
	cache    ExpiringCache
	interval time.Duration
	logger   zerolog.Logger
}

// NewCacheJanitorService creates a janitor. A non-positive interval means
// five minutes.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewCacheJanitorService(cache ExpiringCache, interval time.Duration, logger zerolog.Logger) *CacheJanitorService {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &CacheJanitorService{
		cache:    cache,
		interval: interval,
		logger:   logger.With().Str("service", "cache-janitor").Logger(),
	}
}

// Serve implements suture.Service.
func (s *CacheJanitorService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if removed := s.cache.CleanupExpired(); removed > 0 {
				s.logger.Debug().Int("removed", removed).Msg("Evicted expired metadata")
			}
		}
	}
}

func (s *CacheJanitorService) String() string {
	return "cache-janitor"
}
