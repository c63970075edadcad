// PreviouslyOn - Social TV Tracking and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/previouslyon

/*
Package hydrate turns activity rows into displayable feed items.

The store joins progress and review rows against the local shows and
episodes tables. Rows whose show or episode was never cached come back
incomplete; Engine fetches exactly the missing pieces from TMDB, one
request per distinct show or episode, and writes what it fetched back to
the cache through a non-blocking sink. Rows that still cannot be completed
are dropped and counted. Output is always sorted newest first.
*/
package hydrate

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/previouslyon/internal/config"
	"github.com/tomtom215/previouslyon/internal/metrics"
	"github.com/tomtom215/previouslyon/internal/models"
)

// MetadataSource fetches the pieces a local join can be missing.
type MetadataSource interface {
	GetShowDetails(ctx context.Context, showID int) (*models.ShowDetails, error)
	GetEpisodeDetails(ctx context.Context, showID, season, episode int) (*models.EpisodeRef, error)
}

// CacheSink accepts write-through upserts. Implementations must not block.
type CacheSink interface {
	EnqueueShow(show models.ShowRef)
	EnqueueEpisode(ep models.EpisodeRef)
}

// Engine hydrates activity records. Safe for concurrent use.
type Engine struct {
	meta        MetadataSource
	sink        CacheSink
	callTimeout time.Duration
	concurrency int
	logger      zerolog.Logger
}

// NewEngine creates an Engine. sink may be nil to disable write-through.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(meta MetadataSource, sink CacheSink, cfg config.HydrateConfig, logger zerolog.Logger) *Engine {
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 4 * time.Second
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 8
	}
	return &Engine{
		meta:        meta,
		sink:        sink,
		callTimeout: cfg.CallTimeout,
		concurrency: cfg.MaxConcurrency,
		logger:      logger.With().Str("component", "hydrate").Logger(),
	}
}

type lookupKind string

const (
	kindShow    lookupKind = "show"
	kindEpisode lookupKind = "episode"
)

// lookup is one deduplicated fallback fetch.
type lookup struct {
	kind    lookupKind
	showID  int
	season  int
	episode int
}

func (l lookup) key() string {
	if l.kind == kindShow {
		return fmt.Sprintf("show:%d", l.showID)
	}
	return fmt.Sprintf("episode:%d:%d:%d", l.showID, l.season, l.episode)
}

// result holds whichever of show or episode the lookup produced.
type result struct {
	show    *models.ShowRef
	episode *models.EpisodeRef
}

// Hydrate returns one item per record that is complete locally or can be
// completed from TMDB, sorted by OccurredAt descending. It never fails;
// records that cannot be completed are omitted.
func (e *Engine) Hydrate(ctx context.Context, records []models.ActivityRecord) []models.ActivityItem {
	items := make([]models.ActivityItem, 0, len(records))
	var pending []int

	for i := range records {
		if records[i].Resolved() {
			items = append(items, models.NewActivityItem(&records[i], models.SourceLocal))
			continue
		}
		pending = append(pending, i)
	}

	if len(pending) > 0 {
		lookups := e.planLookups(records, pending)
		results := e.fetch(ctx, lookups)
		items = append(items, e.merge(records, pending, results)...)
	}

	slices.SortStableFunc(items, func(a, b models.ActivityItem) int {
		return cmp.Compare(b.OccurredAt.UnixNano(), a.OccurredAt.UnixNano())
	})
	return items
}

// planLookups builds the distinct set of fetches the pending records need.
func (e *Engine) planLookups(records []models.ActivityRecord, pending []int) []lookup {
	seen := make(map[string]struct{})
	var out []lookup
	add := func(l lookup) {
		if _, dup := seen[l.key()]; dup {
			return
		}
		seen[l.key()] = struct{}{}
		out = append(out, l)
	}

	for _, i := range pending {
		r := &records[i]
		if r.Show == nil {
			add(lookup{kind: kindShow, showID: r.ShowID})
		}
		if r.NeedsEpisode() && r.Episode == nil {
			add(lookup{kind: kindEpisode, showID: r.ShowID, season: *r.SeasonNumber, episode: *r.EpisodeNumber})
		}
	}
	return out
}

// fetch runs every lookup concurrently under its own timeout. A failed
// lookup is absent from the returned map.
func (e *Engine) fetch(ctx context.Context, lookups []lookup) map[string]result {
	slots := make([]*result, len(lookups))

	var g errgroup.Group
	g.SetLimit(e.concurrency)
	for i, l := range lookups {
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
			defer cancel()

			res, err := e.fetchOne(callCtx, l)
			metrics.RecordHydrationFetch(string(l.kind), err)
			if err != nil {
				e.logger.Warn().Err(err).Str("key", l.key()).Msg("Fallback fetch failed")
				return nil
			}
			slots[i] = res
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[string]result, len(lookups))
	for i, l := range lookups {
		if slots[i] == nil {
			continue
		}
		out[l.key()] = *slots[i]
		if e.sink == nil {
			continue
		}
		if s := slots[i].show; s != nil {
			e.sink.EnqueueShow(*s)
		}
		if ep := slots[i].episode; ep != nil {
			e.sink.EnqueueEpisode(*ep)
		}
	}
	return out
}

func (e *Engine) fetchOne(ctx context.Context, l lookup) (*result, error) {
	switch l.kind {
	case kindShow:
		details, err := e.meta.GetShowDetails(ctx, l.showID)
		if err != nil {
			return nil, err
		}
		show := details.ShowRef
		return &result{show: &show}, nil
	default:
		ep, err := e.meta.GetEpisodeDetails(ctx, l.showID, l.season, l.episode)
		if err != nil {
			return nil, err
		}
		// ep may be the metadata cache's shared value; fill in a copy.
		episode := *ep
		if episode.ShowID == 0 {
			episode.ShowID = l.showID
		}
		return &result{episode: &episode}, nil
	}
}

// merge completes pending records from the fetch results. Records with any
// lookup still missing are dropped.
func (e *Engine) merge(records []models.ActivityRecord, pending []int, results map[string]result) []models.ActivityItem {
	out := make([]models.ActivityItem, 0, len(pending))
	for _, i := range pending {
		r := records[i]

		if r.Show == nil {
			if res, ok := results[lookup{kind: kindShow, showID: r.ShowID}.key()]; ok {
				r.Show = res.show
			}
		}
		if r.NeedsEpisode() && r.Episode == nil {
			key := lookup{kind: kindEpisode, showID: r.ShowID, season: *r.SeasonNumber, episode: *r.EpisodeNumber}.key()
			if res, ok := results[key]; ok {
				r.Episode = res.episode
			}
		}

		if !r.Resolved() {
			metrics.HydrationDroppedRecords.Inc()
			e.logger.Debug().
				Err(models.ErrDataGap).
				Str("user_id", r.UserID).
				Int("show_id", r.ShowID).
				Str("kind", string(r.Kind)).
				Msg("Dropping unresolvable activity record")
			continue
		}
		out = append(out, models.NewActivityItem(&r, models.SourceFallback))
	}
	return out
}
