// PreviouslyOn - Social TV Tracking and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/previouslyon

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/previouslyon/internal/metrics"
	"github.com/tomtom215/previouslyon/internal/models"
)

// UpsertShow writes a show into the metadata cache. Empty fields never
// overwrite values already cached.
func (s *Store) UpsertShow(ctx context.Context, show models.ShowRef) (err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("upsert", "shows", time.Since(start), err) }()

	var vote any
	if show.VoteAverage > 0 {
		vote = show.VoteAverage
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO shows (id, name, poster_path, backdrop_path, first_air_date, overview, vote_average, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, now())
ON CONFLICT (id) DO UPDATE SET
	name = CASE WHEN EXCLUDED.name = '' THEN shows.name ELSE EXCLUDED.name END,
	poster_path = COALESCE(EXCLUDED.poster_path, shows.poster_path),
	backdrop_path = COALESCE(EXCLUDED.backdrop_path, shows.backdrop_path),
	first_air_date = COALESCE(EXCLUDED.first_air_date, shows.first_air_date),
	overview = COALESCE(EXCLUDED.overview, shows.overview),
	vote_average = COALESCE(EXCLUDED.vote_average, shows.vote_average),
	updated_at = now()`,
		show.ID, show.Name,
		nullString(show.PosterPath), nullString(show.BackdropPath),
		nullString(show.FirstAirDate), nullString(show.Overview), vote)
	if err != nil {
		return fmt.Errorf("failed to upsert show %d: %w", show.ID, err)
	}
	return nil
}

// UpsertEpisode writes an episode into the metadata cache. A placeholder
// name never replaces a real one.
func (s *Store) UpsertEpisode(ctx context.Context, ep models.EpisodeRef) (err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("upsert", "episodes", time.Since(start), err) }()

	_, err = s.db.ExecContext(ctx, `
INSERT INTO episodes (id, show_id, season_number, episode_number, name, overview, still_path, air_date, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
ON CONFLICT (id) DO UPDATE SET
	show_id = EXCLUDED.show_id,
	season_number = EXCLUDED.season_number,
	episode_number = EXCLUDED.episode_number,
	name = CASE WHEN EXCLUDED.name = $9 THEN episodes.name ELSE EXCLUDED.name END,
	overview = COALESCE(EXCLUDED.overview, episodes.overview),
	still_path = COALESCE(EXCLUDED.still_path, episodes.still_path),
	air_date = COALESCE(EXCLUDED.air_date, episodes.air_date),
	updated_at = now()`,
		ep.ID, ep.ShowID, ep.SeasonNumber, ep.EpisodeNumber, ep.Name,
		nullString(ep.Overview), nullString(ep.StillPath), nullString(ep.AirDate),
		models.EpisodePlaceholderName(ep.SeasonNumber, ep.EpisodeNumber))
	if err != nil {
		return fmt.Errorf("failed to upsert episode %d: %w", ep.ID, err)
	}
	return nil
}
