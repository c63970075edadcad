// PreviouslyOn - Social TV Tracking and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/previouslyon

/*
Package tmdb is the metadata client for The Movie Database v3 API.

Client issues bearer-token GET requests, shares a client-side token bucket
across all callers and retries HTTP 429 with exponential backoff. Every
other failure is returned after one attempt as an error wrapping
models.ErrUpstreamUnavailable.

cmd/server stacks two decorators on top, in this order:

	client := tmdb.NewClient(cfg, logger)
	breaker := tmdb.NewCircuitBreakerClient(client, logger)
	cached := tmdb.NewCachedClient(breaker, cacheCfg)

All three implement API.
*/
package tmdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/previouslyon/internal/metrics"
	"github.com/tomtom215/previouslyon/internal/models"
)

// API is the full set of TMDB operations used by PreviouslyOn.
type API interface {
	GetShowDetails(ctx context.Context, showID int) (*models.ShowDetails, error)
	GetRecommendations(ctx context.Context, showID int) (*models.ShowPage, error)
	GetEpisodeDetails(ctx context.Context, showID, season, episode int) (*models.EpisodeRef, error)
	GetSeasonDetails(ctx context.Context, showID, season int) (*models.SeasonDetails, error)
	Search(ctx context.Context, query string, page int) (*models.ShowPage, error)
	Trending(ctx context.Context) (*models.ShowPage, error)
	Discover(ctx context.Context, filters models.DiscoverFilters) (*models.ShowPage, error)
	Genres(ctx context.Context) ([]models.Genre, error)
}

var _ API = (*Client)(nil)

// Config configures Client. Zero values take the defaults noted.
type Config struct {
	BaseURL         string        // https://api.themoviedb.org/3
	ReadAccessToken string        // required
	Language        string        // en-US, used by Discover
	RequestTimeout  time.Duration // 5s per attempt
	RateLimit       float64       // 40 requests/second
	RateBurst       int           // 20
	MaxRetries      int           // 429 retries; negative disables

	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// Client talks to TMDB directly. Safe for concurrent use.
type Client struct {
	baseURL        string
	token          string
	language       string
	requestTimeout time.Duration
	maxRetries     int
	limiter        *rate.Limiter
	httpClient     *http.Client
	logger         zerolog.Logger

	// newBackOff is replaced in tests to avoid real sleeps.
	newBackOff func() backoff.BackOff
}

// NewClient creates a TMDB client.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewClient(cfg Config, logger zerolog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.themoviedb.org/3"
	}
	if cfg.Language == "" {
		cfg.Language = "en-US"
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 5 * time.Second
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 40
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = 20
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Client{
		baseURL:        strings.TrimSuffix(cfg.BaseURL, "/"),
		token:          cfg.ReadAccessToken,
		language:       cfg.Language,
		requestTimeout: cfg.RequestTimeout,
		maxRetries:     max(cfg.MaxRetries, 0),
		limiter:        rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		httpClient:     httpClient,
		logger:         logger.With().Str("component", "tmdb").Logger(),
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 500 * time.Millisecond
			b.Multiplier = 2
			b.MaxInterval = 5 * time.Second
			b.MaxElapsedTime = 0
			return b
		},
	}
}

// StatusError is a non-2xx TMDB response.
type StatusError struct {
	StatusCode int
	Status     string
	Endpoint   string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("TMDB API Error: %s (%s)", e.Status, e.Endpoint)
}

// Unwrap makes every StatusError match models.ErrUpstreamUnavailable.
func (e *StatusError) Unwrap() error {
	return models.ErrUpstreamUnavailable
}

// IsClientError reports a 4xx other than 429. Such responses describe the
// request, not the health of TMDB.
func (e *StatusError) IsClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500 && e.StatusCode != http.StatusTooManyRequests
}

// IsNotFound reports whether err is a TMDB 404.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

// get fetches endpoint and decodes the JSON body into out. op is the
// low-cardinality metric label for the operation.
func (c *Client) get(ctx context.Context, op, endpoint string, params url.Values, out any) error {
	start := time.Now()
	err := c.getWithRetry(ctx, endpoint, params, out)
	metrics.RecordUpstream("tmdb", op, time.Since(start), err)
	return err
}

func (c *Client) getWithRetry(ctx context.Context, endpoint string, params url.Values, out any) error {
	attempt := 0
	operation := func() error {
		attempt++
		err := c.doRequest(ctx, endpoint, params, out)
		var se *StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusTooManyRequests {
			return err
		}
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}

	b := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), uint64(c.maxRetries)), ctx)
	return backoff.RetryNotify(operation, b, func(err error, wait time.Duration) {
		c.logger.Warn().
			Err(err).
			Str("endpoint", endpoint).
			Int("attempt", attempt).
			Dur("wait", wait).
			Msg("TMDB rate limited, retrying")
	})
}

func (c *Client) doRequest(ctx context.Context, endpoint string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: tmdb rate limiter: %w", models.ErrUpstreamUnavailable, err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	reqURL := c.baseURL + endpoint
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create tmdb request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: tmdb %s: %w", models.ErrUpstreamUnavailable, endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &StatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Endpoint:   endpoint,
			Body:       string(body),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode tmdb %s: %w", models.ErrUpstreamUnavailable, endpoint, err)
	}
	return nil
}

// GetShowDetails fetches /tv/{id}.
func (c *Client) GetShowDetails(ctx context.Context, showID int) (*models.ShowDetails, error) {
	var out models.ShowDetails
	if err := c.get(ctx, "show_details", "/tv/"+strconv.Itoa(showID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetRecommendations fetches /tv/{id}/recommendations.
func (c *Client) GetRecommendations(ctx context.Context, showID int) (*models.ShowPage, error) {
	var out models.ShowPage
	endpoint := "/tv/" + strconv.Itoa(showID) + "/recommendations"
	if err := c.get(ctx, "recommendations", endpoint, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetEpisodeDetails fetches /tv/{id}/season/{s}/episode/{e}.
func (c *Client) GetEpisodeDetails(ctx context.Context, showID, season, episode int) (*models.EpisodeRef, error) {
	var out models.EpisodeRef
	endpoint := fmt.Sprintf("/tv/%d/season/%d/episode/%d", showID, season, episode)
	if err := c.get(ctx, "episode_details", endpoint, nil, &out); err != nil {
		return nil, err
	}
	if out.ShowID == 0 {
		out.ShowID = showID
	}
	return &out, nil
}

// GetSeasonDetails fetches /tv/{id}/season/{s}.
func (c *Client) GetSeasonDetails(ctx context.Context, showID, season int) (*models.SeasonDetails, error) {
	var out models.SeasonDetails
	endpoint := fmt.Sprintf("/tv/%d/season/%d", showID, season)
	if err := c.get(ctx, "season_details", endpoint, nil, &out); err != nil {
		return nil, err
	}
	for i := range out.Episodes {
		if out.Episodes[i].ShowID == 0 {
			out.Episodes[i].ShowID = showID
		}
	}
	return &out, nil
}

// Search fetches /search/tv. Page defaults to 1.
func (c *Client) Search(ctx context.Context, query string, page int) (*models.ShowPage, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(max(page, 1)))

	var out models.ShowPage
	if err := c.get(ctx, "search", "/search/tv", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Trending fetches /trending/tv/week.
func (c *Client) Trending(ctx context.Context) (*models.ShowPage, error) {
	var out models.ShowPage
	if err := c.get(ctx, "trending", "/trending/tv/week", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Discover fetches /discover/tv with the filters applied over the defaults.
func (c *Client) Discover(ctx context.Context, filters models.DiscoverFilters) (*models.ShowPage, error) {
	var out models.ShowPage
	if err := c.get(ctx, "discover", "/discover/tv", c.discoverParams(filters), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) discoverParams(f models.DiscoverFilters) url.Values {
	params := url.Values{}
	params.Set("include_adult", "false")
	params.Set("include_null_first_air_dates", "false")
	params.Set("language", c.language)
	params.Set("page", strconv.Itoa(max(f.Page, 1)))
	params.Set("sort_by", models.SortPopularityDesc)

	if f.SortBy != "" {
		params.Set("sort_by", f.SortBy)
	}
	if len(f.GenreIDs) > 0 {
		ids := make([]string, len(f.GenreIDs))
		for i, id := range f.GenreIDs {
			ids[i] = strconv.Itoa(id)
		}
		params.Set("with_genres", strings.Join(ids, ","))
	}
	if f.FirstAirYear > 0 {
		params.Set("first_air_date_year", strconv.Itoa(f.FirstAirYear))
	}
	if f.MinVoteAverage > 0 {
		params.Set("vote_average.gte", strconv.FormatFloat(f.MinVoteAverage, 'f', -1, 64))
	}
	if f.OriginalLanguage != "" {
		params.Set("with_original_language", f.OriginalLanguage)
	}
	return params
}

// Genres fetches /genre/tv/list.
func (c *Client) Genres(ctx context.Context) ([]models.Genre, error) {
	var out struct {
		Genres []models.Genre `json:"genres"`
	}
	if err := c.get(ctx, "genres", "/genre/tv/list", nil, &out); err != nil {
		return nil, err
	}
	return out.Genres, nil
}
