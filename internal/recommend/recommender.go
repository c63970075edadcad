// PreviouslyOn - Social TV Tracking and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/previouslyon

package recommend

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/previouslyon/internal/config"
	"github.com/tomtom215/previouslyon/internal/metrics"
	"github.com/tomtom215/previouslyon/internal/models"
)

// LibrarySource lists the show IDs in a user's lists.
type LibrarySource interface {
	LibraryShowIDs(ctx context.Context, userID string) ([]int, error)
}

// RecommendationSource returns TMDB's recommendations for one show.
type RecommendationSource interface {
	GetRecommendations(ctx context.Context, showID int) (*models.ShowPage, error)
}

// Recommender produces collaborative recommendations. Safe for concurrent
// use.
type Recommender struct {
	library LibrarySource
	meta    RecommendationSource
	cfg     config.RecommendConfig
	logger  zerolog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// RecommenderOption customizes a Recommender.
type RecommenderOption func(*Recommender)

// WithRand replaces the random source, for deterministic tests.
func WithRand(r *rand.Rand) RecommenderOption {
	return func(rec *Recommender) { rec.rng = r }
}

// NewRecommender creates a Recommender. A zero cfg.Seed seeds from the
// clock.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRecommender(library LibrarySource, meta RecommendationSource, cfg config.RecommendConfig,
	logger zerolog.Logger, opts ...RecommenderOption,
) *Recommender {
	if cfg.SeedCount <= 0 {
		cfg.SeedCount = 3
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 10
	}
	if cfg.MaxLimit < cfg.DefaultLimit {
		cfg.MaxLimit = max(cfg.DefaultLimit, 20)
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 4 * time.Second
	}

	seed := uint64(cfg.Seed) //nolint:gosec // sign is irrelevant for a PRNG seed
	if cfg.Seed == 0 {
		seed = uint64(time.Now().UnixNano()) //nolint:gosec // same
	}

	r := &Recommender{
		library: library,
		meta:    meta,
		cfg:     cfg,
		logger:  logger.With().Str("component", "recommender").Logger(),
		rng:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ClampLimit maps a requested limit into [1, MaxLimit]; zero or negative
// selects the default.
func (r *Recommender) ClampLimit(limit int) int {
	if limit <= 0 {
		return r.cfg.DefaultLimit
	}
	return min(limit, r.cfg.MaxLimit)
}

// Recommend returns up to limit shows recommended for userID, none of which
// are already in the user's library. It never fails: a small library, a
// library read error or failing seeds all yield fewer or zero candidates.
func (r *Recommender) Recommend(ctx context.Context, userID string, limit int) models.RecommendationResult {
	limit = r.ClampLimit(limit)
	log := r.logger.With().Str("user_id", userID).Logger()

	if userID == "" {
		log.Debug().Err(models.ErrUnauthenticated).Msg("Skipping recommendations")
		metrics.RecommendRuns.WithLabelValues(metrics.OutcomeSkipped).Inc()
		return models.EmptyRecommendation()
	}

	libraryIDs, err := r.library.LibraryShowIDs(ctx, userID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load library for recommendations")
		metrics.RecommendRuns.WithLabelValues(metrics.OutcomeFailure).Inc()
		return models.EmptyRecommendation()
	}

	inLibrary := make(map[int]struct{}, len(libraryIDs))
	distinct := make([]int, 0, len(libraryIDs))
	for _, id := range libraryIDs {
		if _, dup := inLibrary[id]; !dup {
			inLibrary[id] = struct{}{}
			distinct = append(distinct, id)
		}
	}
	if len(distinct) <= r.cfg.MinLibrarySize {
		log.Debug().Int("library_size", len(distinct)).Msg("Library too small for recommendations")
		metrics.RecommendRuns.WithLabelValues(metrics.OutcomeSkipped).Inc()
		return models.EmptyRecommendation()
	}

	seeds := r.pickSeeds(distinct)
	pages, failed := r.fanOut(ctx, log, seeds)

	candidates := mergeCandidates(pages, inLibrary)
	r.shuffle(candidates)
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	outcome := metrics.OutcomeSuccess
	if failed == len(seeds) {
		outcome = metrics.OutcomeDegraded
	}
	metrics.RecommendRuns.WithLabelValues(outcome).Inc()
	metrics.RecommendCandidates.Observe(float64(len(candidates)))

	log.Debug().
		Ints("seeds", seeds).
		Int("failed_seeds", failed).
		Int("candidates", len(candidates)).
		Msg("Recommendations built")

	return models.RecommendationResult{SourceShowIDs: seeds, Candidates: candidates}
}

// pickSeeds takes the first SeedCount entries of a uniform permutation.
func (r *Recommender) pickSeeds(ids []int) []int {
	r.mu.Lock()
	perm := r.rng.Perm(len(ids))
	r.mu.Unlock()

	n := min(r.cfg.SeedCount, len(ids))
	seeds := make([]int, n)
	for i := range n {
		seeds[i] = ids[perm[i]]
	}
	return seeds
}

func (r *Recommender) shuffle(shows []models.ShowRef) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rng.Shuffle(len(shows), func(i, j int) { shows[i], shows[j] = shows[j], shows[i] })
}

// fanOut fetches recommendations for every seed concurrently. pages is in
// seed order; a failed seed leaves a nil page.
func (r *Recommender) fanOut(ctx context.Context, log zerolog.Logger, seeds []int) (pages []*models.ShowPage, failed int) {
	pages = make([]*models.ShowPage, len(seeds))
	errs := make([]error, len(seeds))

	var g errgroup.Group
	for i, seed := range seeds {
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(ctx, r.cfg.CallTimeout)
			defer cancel()
			pages[i], errs[i] = r.meta.GetRecommendations(callCtx, seed)
			return nil
		})
	}
	_ = g.Wait()

	for i, err := range errs {
		if err != nil {
			failed++
			pages[i] = nil
			metrics.RecommendSeedFailures.Inc()
			log.Warn().Err(err).Int("seed_id", seeds[i]).Msg("Seed recommendations failed")
		}
	}
	return pages, failed
}

// mergeCandidates flattens pages in order, dedupes by ID keeping the last
// copy of each show in the slot of its first appearance, and drops
// excluded IDs.
func mergeCandidates(pages []*models.ShowPage, exclude map[int]struct{}) []models.ShowRef {
	out := make([]models.ShowRef, 0)
	index := make(map[int]int)
	for _, page := range pages {
		if page == nil {
			continue
		}
		for _, show := range page.Results {
			if _, skip := exclude[show.ID]; skip {
				continue
			}
			if i, seen := index[show.ID]; seen {
				out[i] = show
				continue
			}
			index[show.ID] = len(out)
			out = append(out, show)
		}
	}
	return out
}
