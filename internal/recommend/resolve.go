// PreviouslyOn - Social TV Tracking and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/previouslyon

package recommend

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/previouslyon/internal/models"
)

// ShowSource fetches one show.
type ShowSource interface {
	GetShowDetails(ctx context.Context, showID int) (*models.ShowDetails, error)
}

// Resolver turns show IDs into ShowRefs.
type Resolver struct {
	shows       ShowSource
	timeout     time.Duration
	concurrency int
	logger      zerolog.Logger
}

// NewResolver creates a Resolver. Each lookup runs under timeout, with at
// most concurrency lookups in flight.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewResolver(shows ShowSource, timeout time.Duration, concurrency int, logger zerolog.Logger) *Resolver {
	if timeout <= 0 {
		timeout = 4 * time.Second
	}
	if concurrency <= 0 {
		concurrency = 8
	}
	return &Resolver{
		shows:       shows,
		timeout:     timeout,
		concurrency: concurrency,
		logger:      logger.With().Str("component", "resolver").Logger(),
	}
}

// ResolveShows looks up each distinct positive ID once, concurrently.
// The result follows the first occurrence of each ID in ids; IDs that fail
// to resolve are omitted.
func (r *Resolver) ResolveShows(ctx context.Context, ids []int) []models.ShowRef {
	unique := make([]int, 0, len(ids))
	seen := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	resolved := make([]*models.ShowRef, len(unique))
	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for i, id := range unique {
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(ctx, r.timeout)
			defer cancel()

			details, err := r.shows.GetShowDetails(callCtx, id)
			if err != nil {
				r.logger.Warn().Err(err).Int("show_id", id).Msg("Failed to resolve show")
				return nil
			}
			show := details.ShowRef
			resolved[i] = &show
			return nil
		})
	}
	_ = g.Wait()

	out := make([]models.ShowRef, 0, len(unique))
	for _, s := range resolved {
		if s != nil {
			out = append(out, *s)
		}
	}
	return out
}
