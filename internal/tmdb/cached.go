// PreviouslyOn - Social TV Tracking and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/previouslyon

package tmdb

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/previouslyon/internal/cache"
	"github.com/tomtom215/previouslyon/internal/metrics"
	"github.com/tomtom215/previouslyon/internal/models"
)

// Cache kinds, used as key prefixes and metric labels.
const (
	kindShow    = "show"
	kindRecs    = "recommendations"
	kindEpisode = "episode"
	kindSeason  = "season"
	kindSearch  = "search"
	kindTrend   = "trending"
	kindDisc    = "discover"
	kindGenres  = "genres"
)

// CacheConfig sizes the metadata cache.
type CacheConfig struct {
	Size int

	// TTL applies to per-entity lookups; ListTTL to search, trending and
	// discover pages, which change faster.
	TTL     time.Duration
	ListTTL time.Duration
}

// CachedClient memoizes successful responses in a bounded LRU. Concurrent
// misses for the same key share one upstream call. Errors are never cached.
//
// Cached values are shared between callers and must be treated as
// read-only.
type CachedClient struct {
	next    API
	lru     *cache.LRU[string, any]
	ttl     time.Duration
	listTTL time.Duration
	group   singleflight.Group
}

var _ API = (*CachedClient)(nil)

// NewCachedClient wraps next with a metadata cache.
func NewCachedClient(next API, cfg CacheConfig) *CachedClient {
	if cfg.TTL <= 0 {
		cfg.TTL = 6 * time.Hour
	}
	if cfg.ListTTL <= 0 {
		cfg.ListTTL = 10 * time.Minute
	}
	return &CachedClient{
		next:    next,
		lru:     cache.NewLRU[string, any](cfg.Size, cfg.TTL),
		ttl:     cfg.TTL,
		listTTL: cfg.ListTTL,
	}
}

// CleanupExpired drops expired entries and returns how many were removed.
func (c *CachedClient) CleanupExpired() int {
	n := c.lru.CleanupExpired()
	metrics.MetadataCacheEntries.Set(float64(c.lru.Len()))
	return n
}

// Stats exposes the underlying cache counters.
func (c *CachedClient) Stats() cache.Stats { return c.lru.Stats() }

func cached[T any](ctx context.Context, c *CachedClient, kind, key string, ttl time.Duration, fetch func(context.Context) (T, error)) (T, error) {
	var zero T
	key = kind + ":" + key

	if v, ok := c.lru.Get(key); ok {
		if typed, ok := v.(T); ok {
			metrics.RecordCacheLookup(kind, true)
			return typed, nil
		}
	}
	metrics.RecordCacheLookup(kind, false)

	// The shared call must not be cancelled by whichever caller arrived
	// first, so it runs detached and each caller waits on its own context.
	ch := c.group.DoChan(key, func() (any, error) {
		v, err := fetch(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		c.lru.AddWithTTL(key, v, ttl)
		metrics.MetadataCacheEntries.Set(float64(c.lru.Len()))
		return v, nil
	})

	select {
	case <-ctx.Done():
		return zero, fmt.Errorf("%w: tmdb %s: %w", models.ErrUpstreamUnavailable, kind, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		typed, ok := res.Val.(T)
		if !ok {
			return zero, fmt.Errorf("tmdb cache: unexpected %T for %s", res.Val, key)
		}
		return typed, nil
	}
}

func (c *CachedClient) GetShowDetails(ctx context.Context, showID int) (*models.ShowDetails, error) {
	return cached(ctx, c, kindShow, strconv.Itoa(showID), c.ttl, func(ctx context.Context) (*models.ShowDetails, error) {
		return c.next.GetShowDetails(ctx, showID)
	})
}

func (c *CachedClient) GetRecommendations(ctx context.Context, showID int) (*models.ShowPage, error) {
	return cached(ctx, c, kindRecs, strconv.Itoa(showID), c.ttl, func(ctx context.Context) (*models.ShowPage, error) {
		return c.next.GetRecommendations(ctx, showID)
	})
}

func (c *CachedClient) GetEpisodeDetails(ctx context.Context, showID, season, episode int) (*models.EpisodeRef, error) {
	key := fmt.Sprintf("%d/%d/%d", showID, season, episode)
	return cached(ctx, c, kindEpisode, key, c.ttl, func(ctx context.Context) (*models.EpisodeRef, error) {
		return c.next.GetEpisodeDetails(ctx, showID, season, episode)
	})
}

func (c *CachedClient) GetSeasonDetails(ctx context.Context, showID, season int) (*models.SeasonDetails, error) {
	key := fmt.Sprintf("%d/%d", showID, season)
	return cached(ctx, c, kindSeason, key, c.ttl, func(ctx context.Context) (*models.SeasonDetails, error) {
		return c.next.GetSeasonDetails(ctx, showID, season)
	})
}

func (c *CachedClient) Search(ctx context.Context, query string, page int) (*models.ShowPage, error) {
	key := strconv.Itoa(max(page, 1)) + ":" + query
	return cached(ctx, c, kindSearch, key, c.listTTL, func(ctx context.Context) (*models.ShowPage, error) {
		return c.next.Search(ctx, query, page)
	})
}

func (c *CachedClient) Trending(ctx context.Context) (*models.ShowPage, error) {
	return cached(ctx, c, kindTrend, "week", c.listTTL, func(ctx context.Context) (*models.ShowPage, error) {
		return c.next.Trending(ctx)
	})
}

func (c *CachedClient) Discover(ctx context.Context, filters models.DiscoverFilters) (*models.ShowPage, error) {
	raw, err := json.Marshal(filters)
	if err != nil {
		return c.next.Discover(ctx, filters)
	}
	return cached(ctx, c, kindDisc, string(raw), c.listTTL, func(ctx context.Context) (*models.ShowPage, error) {
		return c.next.Discover(ctx, filters)
	})
}

func (c *CachedClient) Genres(ctx context.Context) ([]models.Genre, error) {
	return cached(ctx, c, kindGenres, "tv", c.ttl, func(ctx context.Context) ([]models.Genre, error) {
		return c.next.Genres(ctx)
	})
}
