// PreviouslyOn - Social TV Tracking and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/previouslyon

package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/previouslyon/internal/auth"
	"github.com/tomtom215/previouslyon/internal/config"
	"github.com/tomtom215/previouslyon/internal/logging"
	"github.com/tomtom215/previouslyon/internal/models"
)

const (
	testSecret = "api-test-secret-with-enough-length"
	aliceID    = "11111111-1111-4111-8111-111111111111"
	bobID      = "22222222-2222-4222-8222-222222222222"
)

var errBoom = errors.New("boom")

type fakeRecommender struct {
	calls  atomic.Int32
	userID string
	limit  int
	result models.RecommendationResult
}

func (f *fakeRecommender) Recommend(_ context.Context, userID string, limit int) models.RecommendationResult {
	f.calls.Add(1)
	f.userID, f.limit = userID, limit
	if userID == "" {
		return models.EmptyRecommendation()
	}
	return f.result
}

type fakeAssistant struct {
	calls atomic.Int32
	reply models.AssistantResponse
}

func (f *fakeAssistant) Reply(_ context.Context, userID, _ string) models.AssistantResponse {
	f.calls.Add(1)
	if userID == "" {
		return models.DegradedAssistantResponse()
	}
	return f.reply
}

type fakeResolver struct {
	calls atomic.Int32
}

func (f *fakeResolver) ResolveShows(_ context.Context, ids []int) []models.ShowRef {
	f.calls.Add(1)
	out := make([]models.ShowRef, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.ShowRef{ID: id, Name: "show"})
	}
	return out
}

// passthroughHydrator keeps only records whose show is already joined.
type passthroughHydrator struct{}

func (passthroughHydrator) Hydrate(_ context.Context, records []models.ActivityRecord) []models.ActivityItem {
	items := make([]models.ActivityItem, 0, len(records))
	for i := range records {
		if records[i].Show != nil {
			items = append(items, models.NewActivityItem(&records[i], models.SourceLocal))
		}
	}
	return items
}

type fakeStore struct {
	mu        sync.Mutex
	records   []models.ActivityRecord
	err       error
	lastUser  string
	lastLimit int
	follows   map[string]bool
	watched   map[int]bool
	pingErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{follows: map[string]bool{}, watched: map[int]bool{}}
}

func (f *fakeStore) query(userID string, limit int) ([]models.ActivityRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastUser, f.lastLimit = userID, limit
	return f.records, f.err
}

func (f *fakeStore) RecentProgress(_ context.Context, userID string, limit int) ([]models.ActivityRecord, error) {
	return f.query(userID, limit)
}

func (f *fakeStore) RecentReviews(_ context.Context, userID string, limit int) ([]models.ActivityRecord, error) {
	return f.query(userID, limit)
}

func (f *fakeStore) FriendActivity(_ context.Context, userID string, limit int) ([]models.ActivityRecord, error) {
	return f.query(userID, limit)
}

func (f *fakeStore) Follow(_ context.Context, a, b string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.follows[a+">"+b] = true
	return f.err
}

func (f *fakeStore) Unfollow(_ context.Context, a, b string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.follows, a+">"+b)
	return f.err
}

func (f *fakeStore) IsFollowing(_ context.Context, a, b string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.follows[a+">"+b], f.err
}

func (f *fakeStore) MarkWatched(_ context.Context, p models.ProgressRecord) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	if f.watched[p.EpisodeID] {
		return false, nil
	}
	f.watched[p.EpisodeID] = true
	return true, nil
}

func (f *fakeStore) UnmarkWatched(_ context.Context, _ string, episodeID int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	existed := f.watched[episodeID]
	delete(f.watched, episodeID)
	return existed, f.err
}

func (f *fakeStore) Ping(context.Context) error { return f.pingErr }

type fakeCatalog struct {
	err     error
	filters models.DiscoverFilters
	query   string
	page    int
}

func (f *fakeCatalog) GetShowDetails(_ context.Context, id int) (*models.ShowDetails, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.ShowDetails{ShowRef: models.ShowRef{ID: id, Name: "Dark"}}, nil
}

func (f *fakeCatalog) GetSeasonDetails(_ context.Context, _, season int) (*models.SeasonDetails, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.SeasonDetails{SeasonNumber: season}, nil
}

func (f *fakeCatalog) Search(_ context.Context, q string, page int) (*models.ShowPage, error) {
	f.query, f.page = q, page
	if f.err != nil {
		return nil, f.err
	}
	return &models.ShowPage{Page: page, Results: []models.ShowRef{{ID: 1, Name: q}}}, nil
}

func (f *fakeCatalog) Trending(context.Context) (*models.ShowPage, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.ShowPage{Page: 1, Results: []models.ShowRef{{ID: 1}}}, nil
}

func (f *fakeCatalog) Discover(_ context.Context, filters models.DiscoverFilters) (*models.ShowPage, error) {
	f.filters = filters
	if f.err != nil {
		return nil, f.err
	}
	return &models.ShowPage{Page: 1, Results: []models.ShowRef{}}, nil
}

func (f *fakeCatalog) Genres(context.Context) ([]models.Genre, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []models.Genre{{ID: 18, Name: "Drama"}}, nil
}

type recordingSink struct {
	mu       sync.Mutex
	shows    []models.ShowRef
	episodes []models.EpisodeRef
}

func (s *recordingSink) EnqueueShow(show models.ShowRef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shows = append(s.shows, show)
}

func (s *recordingSink) EnqueueEpisode(ep models.EpisodeRef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.episodes = append(s.episodes, ep)
}

type testEnv struct {
	recommender *fakeRecommender
	assistant   *fakeAssistant
	resolver    *fakeResolver
	store       *fakeStore
	catalog     *fakeCatalog
	sink        *recordingSink
	handler     http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		recommender: &fakeRecommender{},
		assistant:   &fakeAssistant{},
		resolver:    &fakeResolver{},
		store:       newFakeStore(),
		catalog:     &fakeCatalog{},
		sink:        &recordingSink{},
	}
	env.handler = env.build(t, Dependencies{Recommender: env.recommender})
	return env
}

// build wires the router. A non-nil deps.Recommender overrides the fake.
func (env *testEnv) build(t *testing.T, deps Dependencies) http.Handler {
	t.Helper()
	logger := logging.NewTestLogger(io.Discard)

	verifier, err := auth.NewVerifier(&config.SecurityConfig{JWTSecret: testSecret})
	if err != nil {
		t.Fatal(err)
	}

	deps.Assistant = env.assistant
	deps.Resolver = env.resolver
	deps.Hydrator = passthroughHydrator{}
	deps.Activity = env.store
	deps.Social = env.store
	deps.Health = env.store
	deps.Catalog = env.catalog
	deps.Cache = env.sink

	h := NewHandler(deps, HandlerConfig{ActivityLimit: 20, MaxActivityLimit: 50}, logger)
	chiMW := NewChiMiddleware(&ChiMiddlewareConfig{RateLimitDisabled: true})
	return NewRouter(h, chiMW, auth.Middleware(verifier, logger)).SetupChi()
}

func tokenFor(t *testing.T, userID string) string {
	t.Helper()
	claims := auth.Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   userID,
		Audience:  jwt.ClaimStrings{auth.DefaultAudience},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

// do performs a request; userID "" sends no token.
func do(t *testing.T, h http.Handler, method, target, userID, body string) (*httptest.ResponseRecorder, APIResponse) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, userID))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp APIResponse
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode %s %s: %v (%s)", method, target, err, rec.Body.String())
		}
	}
	return rec, resp
}

// dataAs re-decodes resp.Data into out.
func dataAs(t *testing.T, resp APIResponse, out interface{}) {
	t.Helper()
	raw, err := json.Marshal(resp.Data)
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		t.Fatalf("decode data: %v (%s)", err, raw)
	}
}
