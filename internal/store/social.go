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

// Follow makes followerID follow followingID. Following twice is a no-op.
func (s *Store) Follow(ctx context.Context, followerID, followingID string) (err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("follow", "follows", time.Since(start), err) }()

	_, err = s.db.ExecContext(ctx, `
INSERT INTO follows (follower_id, following_id) VALUES ($1, $2)
ON CONFLICT (follower_id, following_id) DO NOTHING`, followerID, followingID)
	if err != nil {
		return fmt.Errorf("failed to follow: %w", err)
	}
	return nil
}

// Unfollow removes the edge. Unfollowing a user not followed is a no-op.
func (s *Store) Unfollow(ctx context.Context, followerID, followingID string) (err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("unfollow", "follows", time.Since(start), err) }()

	_, err = s.db.ExecContext(ctx,
		`DELETE FROM follows WHERE follower_id = $1 AND following_id = $2`, followerID, followingID)
	if err != nil {
		return fmt.Errorf("failed to unfollow: %w", err)
	}
	return nil
}

// IsFollowing reports whether followerID follows followingID.
func (s *Store) IsFollowing(ctx context.Context, followerID, followingID string) (following bool, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("is_following", "follows", time.Since(start), err) }()

	err = s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM follows WHERE follower_id = $1 AND following_id = $2)`,
		followerID, followingID).Scan(&following)
	if err != nil {
		return false, fmt.Errorf("failed to query follow: %w", err)
	}
	return following, nil
}

// MarkWatched records one watched episode. inserted is false when the
// episode was already marked.
func (s *Store) MarkWatched(ctx context.Context, p models.ProgressRecord) (inserted bool, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("mark_watched", "user_episode_progress", time.Since(start), err) }()

	watchedAt := p.WatchedAt
	if watchedAt.IsZero() {
		watchedAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx, `
INSERT INTO user_episode_progress (user_id, episode_id, show_id, season_number, episode_number, watched_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (user_id, episode_id) DO NOTHING`,
		p.UserID, p.EpisodeID, p.ShowID, p.SeasonNumber, p.EpisodeNumber, watchedAt)
	if err != nil {
		return false, fmt.Errorf("failed to mark episode %d watched: %w", p.EpisodeID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n == 1, nil
}

// UnmarkWatched deletes one progress row. deleted is false when there was
// nothing to delete.
func (s *Store) UnmarkWatched(ctx context.Context, userID string, episodeID int) (deleted bool, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("unmark_watched", "user_episode_progress", time.Since(start), err) }()

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM user_episode_progress WHERE user_id = $1 AND episode_id = $2`, userID, episodeID)
	if err != nil {
		return false, fmt.Errorf("failed to unmark episode %d: %w", episodeID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}
