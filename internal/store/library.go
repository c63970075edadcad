// PreviouslyOn - Social TV Tracking and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/previouslyon

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/previouslyon/internal/metrics"
	"github.com/tomtom215/previouslyon/internal/models"
)

// LibraryShowIDs returns the distinct show IDs across all of the user's
// lists, ascending.
func (s *Store) LibraryShowIDs(ctx context.Context, userID string) (ids []int, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("library_show_ids", "list_items", time.Since(start), err) }()

	rows, err := s.db.QueryContext(ctx, `
SELECT DISTINCT li.show_id
FROM list_items li
JOIN lists l ON l.id = li.list_id
WHERE l.user_id = $1
ORDER BY li.show_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query library: %w", err)
	}
	defer func() { _ = rows.Close() }()

	ids = make([]int, 0)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan library row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate library rows: %w", err)
	}
	return ids, nil
}

// ProfileBio returns the user's bio, or "" when the profile or bio is
// missing.
func (s *Store) ProfileBio(ctx context.Context, userID string) (bio string, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("profile_bio", "profiles", time.Since(start), err) }()

	err = s.db.QueryRowContext(ctx,
		`SELECT COALESCE(bio, '') FROM profiles WHERE id = $1`, userID).Scan(&bio)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query profile: %w", err)
	}
	return bio, nil
}

// RecentListsWithShows returns the user's n most recent lists with the
// cached names of their shows. Shows missing from the cache are omitted
// from ShowNames. One query; rows are grouped by list in order.
func (s *Store) RecentListsWithShows(ctx context.Context, userID string, n int) (lists []models.ListSummary, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("recent_lists", "lists", time.Since(start), err) }()

	rows, err := s.db.QueryContext(ctx, `
WITH recent AS (
	SELECT id, name, created_at FROM lists
	WHERE user_id = $1
	ORDER BY created_at DESC
	LIMIT $2
)
SELECT r.id, r.name, r.created_at, s.name
FROM recent r
LEFT JOIN list_items li ON li.list_id = r.id
LEFT JOIN shows s ON s.id = li.show_id
ORDER BY r.created_at DESC, r.id, li.added_at`, userID, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent lists: %w", err)
	}
	defer func() { _ = rows.Close() }()

	lists = make([]models.ListSummary, 0, n)
	for rows.Next() {
		var (
			id, name  string
			createdAt time.Time
			showName  sql.NullString
		)
		if err := rows.Scan(&id, &name, &createdAt, &showName); err != nil {
			return nil, fmt.Errorf("failed to scan list row: %w", err)
		}
		if len(lists) == 0 || lists[len(lists)-1].ID != id {
			lists = append(lists, models.ListSummary{
				ID:        id,
				Name:      name,
				ShowNames: []string{},
				CreatedAt: createdAt,
			})
		}
		if showName.Valid && showName.String != "" {
			last := &lists[len(lists)-1]
			last.ShowNames = append(last.ShowNames, showName.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate list rows: %w", err)
	}
	return lists, nil
}
