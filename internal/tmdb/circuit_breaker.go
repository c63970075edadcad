// PreviouslyOn - Social TV Tracking and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/previouslyon

package tmdb

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/tomtom215/previouslyon/internal/breaker"
	"github.com/tomtom215/previouslyon/internal/models"
)

// BreakerName labels the TMDB breaker in metrics.
const BreakerName = "tmdb-api"

// CircuitBreakerClient wraps an API with a circuit breaker. Once TMDB is
// failing, calls fail fast with models.ErrUpstreamUnavailable instead of
// waiting out the request timeout.
type CircuitBreakerClient struct {
	next API
	cb   *breaker.Breaker
}

var _ API = (*CircuitBreakerClient)(nil)

// NewCircuitBreakerClient wraps next with the default breaker settings.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewCircuitBreakerClient(next API, logger zerolog.Logger) *CircuitBreakerClient {
	s := breaker.DefaultSettings(BreakerName)
	s.IsSuccessful = isBreakerSuccess
	return NewCircuitBreakerClientWithSettings(next, s, logger)
}

// NewCircuitBreakerClientWithSettings wraps next with custom settings.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewCircuitBreakerClientWithSettings(next API, s breaker.Settings, logger zerolog.Logger) *CircuitBreakerClient {
	return &CircuitBreakerClient{next: next, cb: breaker.New(s, logger)}
}

// State returns the breaker state.
func (c *CircuitBreakerClient) State() string { return c.cb.State() }

// isBreakerSuccess keeps 4xx responses (other than 429) and caller
// cancellation from tripping the breaker.
func isBreakerSuccess(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var se *StatusError
	return errors.As(err, &se) && se.IsClientError()
}

func (c *CircuitBreakerClient) GetShowDetails(ctx context.Context, showID int) (*models.ShowDetails, error) {
	return breaker.Do(c.cb, func() (*models.ShowDetails, error) {
		return c.next.GetShowDetails(ctx, showID)
	})
}

func (c *CircuitBreakerClient) GetRecommendations(ctx context.Context, showID int) (*models.ShowPage, error) {
	return breaker.Do(c.cb, func() (*models.ShowPage, error) {
		return c.next.GetRecommendations(ctx, showID)
	})
}

func (c *CircuitBreakerClient) GetEpisodeDetails(ctx context.Context, showID, season, episode int) (*models.EpisodeRef, error) {
	return breaker.Do(c.cb, func() (*models.EpisodeRef, error) {
		return c.next.GetEpisodeDetails(ctx, showID, season, episode)
	})
}

func (c *CircuitBreakerClient) GetSeasonDetails(ctx context.Context, showID, season int) (*models.SeasonDetails, error) {
	return breaker.Do(c.cb, func() (*models.SeasonDetails, error) {
		return c.next.GetSeasonDetails(ctx, showID, season)
	})
}

func (c *CircuitBreakerClient) Search(ctx context.Context, query string, page int) (*models.ShowPage, error) {
	return breaker.Do(c.cb, func() (*models.ShowPage, error) {
		return c.next.Search(ctx, query, page)
	})
}

func (c *CircuitBreakerClient) Trending(ctx context.Context) (*models.ShowPage, error) {
	return breaker.Do(c.cb, func() (*models.ShowPage, error) {
		return c.next.Trending(ctx)
	})
}

func (c *CircuitBreakerClient) Discover(ctx context.Context, filters models.DiscoverFilters) (*models.ShowPage, error) {
	return breaker.Do(c.cb, func() (*models.ShowPage, error) {
		return c.next.Discover(ctx, filters)
	})
}

func (c *CircuitBreakerClient) Genres(ctx context.Context) ([]models.Genre, error) {
	return breaker.Do(c.cb, func() ([]models.Genre, error) {
		return c.next.Genres(ctx)
	})
}
