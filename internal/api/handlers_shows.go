// PreviouslyOn - Social TV Tracking and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/previouslyon

package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/previouslyon/internal/models"
	"github.com/tomtom215/previouslyon/internal/tmdb"
	"github.com/tomtom215/previouslyon/internal/validation"
)

const tmdbService = "tmdb"

// catalogError maps a TMDB failure: unknown shows are 404, everything else
// is 502.
func catalogError(rw *ResponseWriter, err error) {
	if tmdb.IsNotFound(err) {
		rw.NotFound("Show not found")
		return
	}
	rw.ExternalServiceError(tmdbService, err)
}

// Trending handles GET /api/v1/shows/trending.
func (h *Handler) Trending(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	page, err := h.deps.Catalog.Trending(r.Context())
	if err != nil {
		catalogError(rw, err)
		return
	}
	rw.Success(page)
}

// Search handles GET /api/v1/shows/search?q=&page=.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	req := SearchRequest{
		Query: strings.TrimSpace(r.URL.Query().Get("q")),
		Page:  getIntParam(r, "page", 1),
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		rw.Validation(verr)
		return
	}

	page, err := h.deps.Catalog.Search(r.Context(), req.Query, req.Page)
	if err != nil {
		catalogError(rw, err)
		return
	}
	rw.Success(page)
}

// Discover handles GET /api/v1/shows/discover?genres=&year=&min_rating=&sort_by=&page=&language=.
func (h *Handler) Discover(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	q := r.URL.Query()

	genres, err := parseIntList(q.Get("genres"))
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	filters := models.DiscoverFilters{
		GenreIDs:         genres,
		FirstAirYear:     getIntParam(r, "year", 0),
		OriginalLanguage: q.Get("language"),
		SortBy:           q.Get("sort_by"),
		Page:             getIntParam(r, "page", 0),
	}
	if raw := q.Get("min_rating"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			rw.BadRequest("invalid min_rating")
			return
		}
		filters.MinVoteAverage = v
	}
	if verr := validation.ValidateStruct(&filters); verr != nil {
		rw.Validation(verr)
		return
	}

	page, err := h.deps.Catalog.Discover(r.Context(), filters)
	if err != nil {
		catalogError(rw, err)
		return
	}
	rw.Success(page)
}

// Genres handles GET /api/v1/shows/genres.
func (h *Handler) Genres(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	genres, err := h.deps.Catalog.Genres(r.Context())
	if err != nil {
		catalogError(rw, err)
		return
	}
	rw.SuccessList(genres, len(genres))
}

// ShowDetails handles GET /api/v1/shows/{showID}.
func (h *Handler) ShowDetails(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	showID, err := pathInt(r, "showID")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	details, err := h.deps.Catalog.GetShowDetails(r.Context(), showID)
	if err != nil {
		catalogError(rw, err)
		return
	}
	rw.Success(details)
}

// SeasonDetails handles GET /api/v1/shows/{showID}/seasons/{season}.
func (h *Handler) SeasonDetails(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	showID, err := pathInt(r, "showID")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	// Season 0 holds specials.
	season, err := strconv.Atoi(chi.URLParam(r, "season"))
	if err != nil || season < 0 {
		rw.BadRequest("invalid season")
		return
	}

	details, err := h.deps.Catalog.GetSeasonDetails(r.Context(), showID, season)
	if err != nil {
		catalogError(rw, err)
		return
	}
	rw.Success(details)
}
