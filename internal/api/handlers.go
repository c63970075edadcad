// PreviouslyOn - Social TV Tracking and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/previouslyon

package api

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/previouslyon/internal/models"
)

// Recommender produces collaborative recommendations.
type Recommender interface {
	Recommend(ctx context.Context, userID string, limit int) models.RecommendationResult
}

// Assistant answers a natural language query.
type Assistant interface {
	Reply(ctx context.Context, userID, query string) models.AssistantResponse
}

// ShowResolver turns assistant codes into shows.
type ShowResolver interface {
	ResolveShows(ctx context.Context, ids []int) []models.ShowRef
}

// Hydrator fills in missing show and episode metadata on activity rows.
type Hydrator interface {
	Hydrate(ctx context.Context, records []models.ActivityRecord) []models.ActivityItem
}

// ActivityStore reads persisted progress and reviews.
type ActivityStore interface {
	RecentProgress(ctx context.Context, userID string, limit int) ([]models.ActivityRecord, error)
	RecentReviews(ctx context.Context, userID string, limit int) ([]models.ActivityRecord, error)
	FriendActivity(ctx context.Context, userID string, limit int) ([]models.ActivityRecord, error)
}

// SocialStore writes the follow graph and watch progress.
type SocialStore interface {
	Follow(ctx context.Context, followerID, followingID string) error
	Unfollow(ctx context.Context, followerID, followingID string) error
	IsFollowing(ctx context.Context, followerID, followingID string) (bool, error)
	MarkWatched(ctx context.Context, p models.ProgressRecord) (bool, error)
	UnmarkWatched(ctx context.Context, userID string, episodeID int) (bool, error)
}

// Pinger reports store reachability for readiness checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Catalog is the TMDB surface exposed as passthroughs.
type Catalog interface {
	GetShowDetails(ctx context.Context, showID int) (*models.ShowDetails, error)
	GetSeasonDetails(ctx context.Context, showID, season int) (*models.SeasonDetails, error)
	Search(ctx context.Context, query string, page int) (*models.ShowPage, error)
	Trending(ctx context.Context) (*models.ShowPage, error)
	Discover(ctx context.Context, filters models.DiscoverFilters) (*models.ShowPage, error)
	Genres(ctx context.Context) ([]models.Genre, error)
}

// CacheSink accepts non-blocking metadata cache upserts.
type CacheSink interface {
	EnqueueShow(show models.ShowRef)
	EnqueueEpisode(ep models.EpisodeRef)
}

// Dependencies are the components the handlers compose.
type Dependencies struct {
	Recommender Recommender
	Assistant   Assistant
	Resolver    ShowResolver
	Hydrator    Hydrator
	Activity    ActivityStore
	Social      SocialStore
	Health      Pinger
	Catalog     Catalog
	Cache       CacheSink
}

// HandlerConfig sizes activity feeds.
type HandlerConfig struct {
	ActivityLimit    int
	MaxActivityLimit int
	ReadyTimeout     time.Duration
}

// Handler serves every endpoint.
type Handler struct {
	deps      Dependencies
	cfg       HandlerConfig
	logger    zerolog.Logger
	startTime time.Time
}

// NewHandler creates a Handler.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHandler(deps Dependencies, cfg HandlerConfig, logger zerolog.Logger) *Handler {
	if cfg.ActivityLimit <= 0 {
		cfg.ActivityLimit = 20
	}
	if cfg.MaxActivityLimit < cfg.ActivityLimit {
		cfg.MaxActivityLimit = max(100, cfg.ActivityLimit)
	}
	if cfg.ReadyTimeout <= 0 {
		cfg.ReadyTimeout = 2 * time.Second
	}
	return &Handler{
		deps:      deps,
		cfg:       cfg,
		logger:    logger,
		startTime: time.Now(),
	}
}
