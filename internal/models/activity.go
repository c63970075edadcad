// PreviouslyOn - Social TV Tracking and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/previouslyon

package models

import "time"

// ProgressRecord marks one episode as watched by one user.
// At most one row exists per (UserID, EpisodeID); unwatching deletes it.
type ProgressRecord struct {
	UserID        string    `json:"user_id"`
	ShowID        int       `json:"show_id"`
	SeasonNumber  int       `json:"season_number"`
	EpisodeNumber int       `json:"episode_number"`
	EpisodeID     int       `json:"episode_id"`
	WatchedAt     time.Time `json:"watched_at"`
}

// Entity kinds a review can target.
const (
	EntityShow    = "show"
	EntitySeason  = "season"
	EntityEpisode = "episode"
)

// Review targets a show, a season or an episode. The target is always
// ShowID plus optional season and episode numbers.
type Review struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	ShowID        int       `json:"show_id"`
	SeasonNumber  *int      `json:"season_number,omitempty"`
	EpisodeNumber *int      `json:"episode_number,omitempty"`
	Rating        int       `json:"rating" validate:"min=1,max=10"`
	Body          string    `json:"body"`
	CreatedAt     time.Time `json:"created_at"`
}

// EntityType derives the review target from which numbers are set.
func (r *Review) EntityType() string {
	return EntityTypeOf(r.SeasonNumber, r.EpisodeNumber)
}

// EntityTypeOf returns EntityEpisode when both numbers are set, EntitySeason
// when only the season is set and EntityShow otherwise.
func EntityTypeOf(season, episode *int) string {
	switch {
	case season != nil && episode != nil:
		return EntityEpisode
	case season != nil:
		return EntitySeason
	default:
		return EntityShow
	}
}

// ActivityKind distinguishes progress rows from review rows in a feed.
type ActivityKind string

const (
	ActivityWatched ActivityKind = "watched"
	ActivityReview  ActivityKind = "review"
)

// ActivityRecord is a persisted progress or review row as returned by the
// local join. Show and Episode are nil when the cache tables have no
// matching row.
type ActivityRecord struct {
	Kind          ActivityKind
	UserID        string
	Username      string
	AvatarURL     string
	ShowID        int
	SeasonNumber  *int
	EpisodeNumber *int
	EpisodeID     int
	ReviewID      string
	Rating        int
	Body          string
	OccurredAt    time.Time

	Show    *ShowRef
	Episode *EpisodeRef
}

// NeedsEpisode reports whether the record references a single episode.
func (r *ActivityRecord) NeedsEpisode() bool {
	return r.SeasonNumber != nil && r.EpisodeNumber != nil
}

// Resolved reports whether the local join supplied everything needed to
// display the record.
func (r *ActivityRecord) Resolved() bool {
	if r.Show == nil {
		return false
	}
	return !r.NeedsEpisode() || r.Episode != nil
}

// Hydration sources.
const (
	SourceLocal    = "local"
	SourceFallback = "fallback"
)

// ActivityItem is a fully resolved activity record ready for display.
type ActivityItem struct {
	Kind          ActivityKind `json:"kind"`
	UserID        string       `json:"user_id"`
	Username      string       `json:"username,omitempty"`
	AvatarURL     string       `json:"avatar_url,omitempty"`
	EntityType    string       `json:"entity_type"`
	Show          ShowRef      `json:"show"`
	Episode       *EpisodeRef  `json:"episode,omitempty"`
	SeasonNumber  *int         `json:"season_number,omitempty"`
	EpisodeNumber *int         `json:"episode_number,omitempty"`
	ReviewID      string       `json:"review_id,omitempty"`
	Rating        int          `json:"rating,omitempty"`
	Body          string       `json:"body,omitempty"`
	OccurredAt    time.Time    `json:"occurred_at"`
	Source        string       `json:"source"`
}

// NewActivityItem builds the display record from a resolved ActivityRecord.
// The caller guarantees r.Show is non-nil.
func NewActivityItem(r *ActivityRecord, source string) ActivityItem {
	return ActivityItem{
		Kind:          r.Kind,
		UserID:        r.UserID,
		Username:      r.Username,
		AvatarURL:     r.AvatarURL,
		EntityType:    EntityTypeOf(r.SeasonNumber, r.EpisodeNumber),
		Show:          *r.Show,
		Episode:       r.Episode,
		SeasonNumber:  r.SeasonNumber,
		EpisodeNumber: r.EpisodeNumber,
		ReviewID:      r.ReviewID,
		Rating:        r.Rating,
		Body:          r.Body,
		OccurredAt:    r.OccurredAt,
		Source:        source,
	}
}

// ListSummary is a user list with the names of its member shows.
type ListSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ShowNames []string  `json:"show_names"`
	CreatedAt time.Time `json:"created_at"`
}
