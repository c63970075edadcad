// PreviouslyOn - Social TV Tracking and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/previouslyon

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/previouslyon/internal/metrics"
	"github.com/tomtom215/previouslyon/internal/models"
)

// Columns appended to every activity query for the LEFT JOINed cache rows.
const joinedMetadataColumns = `
	s.id, s.name, s.poster_path, s.backdrop_path, s.first_air_date, s.overview, s.vote_average,
	e.id, e.show_id, e.season_number, e.episode_number, e.name, e.overview, e.still_path, e.air_date`

const progressSelect = `
SELECT p.user_id, COALESCE(pr.username, ''), COALESCE(pr.avatar_url, ''),
	p.show_id, p.season_number, p.episode_number, p.episode_id, p.watched_at,` + joinedMetadataColumns + `
FROM user_episode_progress p
LEFT JOIN profiles pr ON pr.id = p.user_id
LEFT JOIN shows s ON s.id = p.show_id
LEFT JOIN episodes e ON e.id = p.episode_id`

const reviewSelect = `
SELECT r.id, r.user_id, COALESCE(pr.username, ''), COALESCE(pr.avatar_url, ''),
	r.show_id, r.season_number, r.episode_number, r.rating, r.body, r.created_at,` + joinedMetadataColumns + `
FROM reviews r
LEFT JOIN profiles pr ON pr.id = r.user_id
LEFT JOIN shows s ON s.id = r.show_id
LEFT JOIN episodes e
	ON e.show_id = r.show_id AND e.season_number = r.season_number AND e.episode_number = r.episode_number`

// joinedMetadata receives the nullable show and episode columns.
type joinedMetadata struct {
	showID                                                sql.NullInt64
	showName, showPoster, showBackdrop, showAir, showOver sql.NullString
	showVoteAvg                                           sql.NullFloat64

	epID, epShowID, epSeason, epNumber sql.NullInt64
	epName, epOverview, epStill, epAir sql.NullString
}

func (j *joinedMetadata) dest() []any {
	return []any{
		&j.showID, &j.showName, &j.showPoster, &j.showBackdrop, &j.showAir, &j.showOver, &j.showVoteAvg,
		&j.epID, &j.epShowID, &j.epSeason, &j.epNumber, &j.epName, &j.epOverview, &j.epStill, &j.epAir,
	}
}

func (j *joinedMetadata) show() *models.ShowRef {
	if !j.showID.Valid {
		return nil
	}
	return &models.ShowRef{
		ID:           int(j.showID.Int64),
		Name:         j.showName.String,
		PosterPath:   j.showPoster.String,
		BackdropPath: j.showBackdrop.String,
		FirstAirDate: j.showAir.String,
		Overview:     j.showOver.String,
		VoteAverage:  j.showVoteAvg.Float64,
	}
}

func (j *joinedMetadata) episode() *models.EpisodeRef {
	if !j.epID.Valid {
		return nil
	}
	return &models.EpisodeRef{
		ID:            int(j.epID.Int64),
		ShowID:        int(j.epShowID.Int64),
		SeasonNumber:  int(j.epSeason.Int64),
		EpisodeNumber: int(j.epNumber.Int64),
		Name:          j.epName.String,
		Overview:      j.epOverview.String,
		StillPath:     j.epStill.String,
		AirDate:       j.epAir.String,
	}
}

func scanProgress(row rowScanner) (models.ActivityRecord, error) {
	var (
		r               models.ActivityRecord
		season, episode int
		meta            joinedMetadata
	)
	dest := append([]any{
		&r.UserID, &r.Username, &r.AvatarURL,
		&r.ShowID, &season, &episode, &r.EpisodeID, &r.OccurredAt,
	}, meta.dest()...)
	if err := row.Scan(dest...); err != nil {
		return r, err
	}
	r.Kind = models.ActivityWatched
	r.SeasonNumber = &season
	r.EpisodeNumber = &episode
	r.Show = meta.show()
	r.Episode = meta.episode()
	return r, nil
}

func scanReview(row rowScanner) (models.ActivityRecord, error) {
	var (
		r               models.ActivityRecord
		season, episode sql.NullInt64
		meta            joinedMetadata
	)
	dest := append([]any{
		&r.ReviewID, &r.UserID, &r.Username, &r.AvatarURL,
		&r.ShowID, &season, &episode, &r.Rating, &r.Body, &r.OccurredAt,
	}, meta.dest()...)
	if err := row.Scan(dest...); err != nil {
		return r, err
	}
	r.Kind = models.ActivityReview
	r.SeasonNumber = intPtrFromNull(season)
	r.EpisodeNumber = intPtrFromNull(episode)
	r.Show = meta.show()
	if r.NeedsEpisode() {
		r.Episode = meta.episode()
	}
	return r, nil
}

func (s *Store) queryActivity(ctx context.Context, op, table, query string,
	scan func(rowScanner) (models.ActivityRecord, error), args ...any,
) (records []models.ActivityRecord, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery(op, table, time.Since(start), err) }()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	records = make([]models.ActivityRecord, 0)
	for rows.Next() {
		r, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", op, err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s rows: %w", op, err)
	}
	return records, nil
}

// RecentProgress returns the user's watched episodes, newest first.
func (s *Store) RecentProgress(ctx context.Context, userID string, limit int) ([]models.ActivityRecord, error) {
	return s.queryActivity(ctx, "recent_progress", "user_episode_progress",
		progressSelect+`
WHERE p.user_id = $1
ORDER BY p.watched_at DESC
LIMIT $2`, scanProgress, userID, limit)
}

// RecentReviews returns the user's reviews, newest first.
func (s *Store) RecentReviews(ctx context.Context, userID string, limit int) ([]models.ActivityRecord, error) {
	return s.queryActivity(ctx, "recent_reviews", "reviews",
		reviewSelect+`
WHERE r.user_id = $1
ORDER BY r.created_at DESC
LIMIT $2`, scanReview, userID, limit)
}

// FriendActivity returns progress of every user that userID follows,
// newest first.
func (s *Store) FriendActivity(ctx context.Context, userID string, limit int) ([]models.ActivityRecord, error) {
	return s.queryActivity(ctx, "friend_activity", "user_episode_progress",
		progressSelect+`
WHERE p.user_id IN (SELECT following_id FROM follows WHERE follower_id = $1)
ORDER BY p.watched_at DESC
LIMIT $2`, scanProgress, userID, limit)
}
