// PreviouslyOn - Social TV Tracking and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/previouslyon

package models

import "strconv"

// RecommendationResult is produced per request by the collaborative
// recommender and discarded after the response is written.
type RecommendationResult struct {
	SourceShowIDs []int     `json:"source_show_ids"`
	Candidates    []ShowRef `json:"candidates"`
}

// EmptyRecommendation returns a result whose slices encode as [] not null.
func EmptyRecommendation() RecommendationResult {
	return RecommendationResult{
		SourceShowIDs: []int{},
		Candidates:    []ShowRef{},
	}
}

// AssistantResponse is the parsed output of one model invocation.
type AssistantResponse struct {
	Response string `json:"response"`
	Codes    []int  `json:"codes"`
}

// AssistantApology is the fixed text returned whenever the assistant
// cannot produce a trustworthy answer.
const AssistantApology = "Sorry, I ran into trouble fetching recommendations. Please try again."

// DegradedAssistantResponse returns the fixed failure payload.
func DegradedAssistantResponse() AssistantResponse {
	return AssistantResponse{
		Response: AssistantApology,
		Codes:    []int{},
	}
}

// IsDegraded reports whether r is the fixed failure payload.
func (r *AssistantResponse) IsDegraded() bool {
	return r.Response == AssistantApology && len(r.Codes) == 0
}

// AssistantReply is the HTTP shape of an assistant answer: the parsed
// model output plus the codes resolved to shows.
type AssistantReply struct {
	AssistantResponse
	Shows []ShowRef `json:"shows"`
}

// Track actions and outcomes.
const (
	TrackWatch   = "watch"
	TrackUnwatch = "unwatch"

	TrackStatusWatched        = "watched"
	TrackStatusAlreadyWatched = "already_watched"
	TrackStatusUnwatched      = "unwatched"
	TrackStatusNotWatched     = "not_watched"
)

// TrackRequest marks or unmarks one episode as watched.
type TrackRequest struct {
	Action        string `json:"action" validate:"required,oneof=watch unwatch"`
	ShowID        int    `json:"show_id" validate:"required,tmdbid"`
	EpisodeID     int    `json:"episode_id" validate:"required,tmdbid"`
	SeasonNumber  int    `json:"season_number" validate:"min=0,max=1000"`
	EpisodeNumber int    `json:"episode_number" validate:"min=0,max=10000"`
	ShowName      string `json:"show_name,omitempty" validate:"omitempty,max=500"`
	PosterPath    string `json:"poster_path,omitempty" validate:"omitempty,max=500"`
}

// TrackResult reports the outcome of a TrackRequest.
type TrackResult struct {
	Status string `json:"status"`
}

// FollowStatus reports whether the caller follows a user.
type FollowStatus struct {
	Following bool `json:"following"`
}

// EpisodePlaceholderName is the name cached for an episode tracked before
// its details were fetched, e.g. "S1 E3".
func EpisodePlaceholderName(season, episode int) string {
	return "S" + strconv.Itoa(season) + " E" + strconv.Itoa(episode)
}
