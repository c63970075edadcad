// PreviouslyOn - Social TV Tracking and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/previouslyon

package models

import "time"

// ShowRef is the display subset of a TV show. Identity is ID.
// Copies read from the local cache are advisory; TMDB is ground truth.
type ShowRef struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	PosterPath   string  `json:"poster_path,omitempty"`
	BackdropPath string  `json:"backdrop_path,omitempty"`
	FirstAirDate string  `json:"first_air_date,omitempty"`
	Overview     string  `json:"overview,omitempty"`
	VoteAverage  float64 `json:"vote_average,omitempty"`
}

// AirDate parses FirstAirDate. The second return is false when the date is
// missing or not in YYYY-MM-DD form.
func (s *ShowRef) AirDate() (time.Time, bool) {
	if s.FirstAirDate == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", s.FirstAirDate)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Genre is a TMDB TV genre.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// SeasonSummary is the per-season entry embedded in ShowDetails.
type SeasonSummary struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	SeasonNumber int    `json:"season_number"`
	EpisodeCount int    `json:"episode_count"`
	AirDate      string `json:"air_date,omitempty"`
	PosterPath   string `json:"poster_path,omitempty"`
}

// ShowDetails is the full /tv/{id} payload.
type ShowDetails struct {
	ShowRef
	Status           string          `json:"status,omitempty"`
	NumberOfSeasons  int             `json:"number_of_seasons,omitempty"`
	NumberOfEpisodes int             `json:"number_of_episodes,omitempty"`
	Genres           []Genre         `json:"genres,omitempty"`
	Seasons          []SeasonSummary `json:"seasons,omitempty"`
}

// EpisodeRef is the display subset of a single episode.
type EpisodeRef struct {
	ID            int    `json:"id"`
	ShowID        int    `json:"show_id"`
	SeasonNumber  int    `json:"season_number"`
	EpisodeNumber int    `json:"episode_number"`
	Name          string `json:"name"`
	Overview      string `json:"overview,omitempty"`
	StillPath     string `json:"still_path,omitempty"`
	AirDate       string `json:"air_date,omitempty"`
}

// SeasonDetails is the /tv/{id}/season/{n} payload.
type SeasonDetails struct {
	ID           int          `json:"id"`
	Name         string       `json:"name"`
	Overview     string       `json:"overview,omitempty"`
	SeasonNumber int          `json:"season_number"`
	PosterPath   string       `json:"poster_path,omitempty"`
	Episodes     []EpisodeRef `json:"episodes"`
}

// ShowPage is a paginated list of shows. Search, trending, discover and
// recommendations all share this shape.
type ShowPage struct {
	Page         int       `json:"page"`
	Results      []ShowRef `json:"results"`
	TotalPages   int       `json:"total_pages"`
	TotalResults int       `json:"total_results"`
}

// Discover sort orders accepted by TMDB.
const (
	SortPopularityDesc   = "popularity.desc"
	SortVoteAverageDesc  = "vote_average.desc"
	SortFirstAirDateDesc = "first_air_date.desc"
)

// DiscoverFilters narrows a /discover/tv query. Zero values mean "unset".
type DiscoverFilters struct {
	GenreIDs         []int   `json:"genre_ids,omitempty" validate:"omitempty,max=10,dive,tmdbid"`
	FirstAirYear     int     `json:"first_air_year,omitempty" validate:"omitempty,min=1900,max=2100"`
	MinVoteAverage   float64 `json:"min_vote_average,omitempty" validate:"omitempty,min=0,max=10"`
	OriginalLanguage string  `json:"original_language,omitempty" validate:"omitempty,lang"`
	SortBy           string  `json:"sort_by,omitempty" validate:"omitempty,oneof=popularity.desc vote_average.desc first_air_date.desc"`
	Page             int     `json:"page,omitempty" validate:"omitempty,min=1,max=500"`
}
