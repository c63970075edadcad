// PreviouslyOn - Social TV Tracking and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/previouslyon

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/previouslyon/internal/logging"
	"github.com/tomtom215/previouslyon/internal/models"
	"github.com/tomtom215/previouslyon/internal/validation"
)

// followTarget resolves the caller and the {userID} they act on. It writes
// the error response itself and returns ok=false on failure.
func followTarget(rw *ResponseWriter, r *http.Request) (caller, target string, ok bool) {
	caller = requireUser(rw, r)
	if caller == "" {
		return "", "", false
	}
	target, err := pathUserID(r)
	if err != nil {
		rw.BadRequest(err.Error())
		return "", "", false
	}
	if target == caller {
		rw.BadRequest("cannot follow yourself")
		return "", "", false
	}
	return caller, target, true
}

// FollowStatus handles GET /api/v1/users/{userID}/follow.
func (h *Handler) FollowStatus(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	caller := requireUser(rw, r)
	if caller == "" {
		return
	}
	target, err := pathUserID(r)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	following := false
	if target != caller {
		following, err = h.deps.Social.IsFollowing(r.Context(), caller, target)
		if err != nil {
			rw.DatabaseError(err)
			return
		}
	}
	rw.Success(models.FollowStatus{Following: following})
}

// Follow handles PUT /api/v1/users/{userID}/follow. It is idempotent.
func (h *Handler) Follow(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	caller, target, ok := followTarget(rw, r)
	if !ok {
		return
	}
	if err := h.deps.Social.Follow(r.Context(), caller, target); err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(models.FollowStatus{Following: true})
}

// Unfollow handles DELETE /api/v1/users/{userID}/follow. It is idempotent.
func (h *Handler) Unfollow(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	caller, target, ok := followTarget(rw, r)
	if !ok {
		return
	}
	if err := h.deps.Social.Unfollow(r.Context(), caller, target); err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(models.FollowStatus{Following: false})
}

// Track handles POST /api/v1/track. A watch first queues the show (when the
// client sent its name) and a placeholder episode into the metadata cache so
// the progress row joins locally, then inserts the progress row.
func (h *Handler) Track(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	userID := requireUser(rw, r)
	if userID == "" {
		return
	}

	var req models.TrackRequest
	if err := decodeJSON(w, r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		rw.Validation(verr)
		return
	}

	log := logging.Ctx(r.Context()).With().
		Str("action", req.Action).
		Int("show_id", req.ShowID).
		Int("episode_id", req.EpisodeID).
		Logger()

	if req.Action == models.TrackUnwatch {
		deleted, err := h.deps.Social.UnmarkWatched(r.Context(), userID, req.EpisodeID)
		if err != nil {
			rw.DatabaseError(err)
			return
		}
		status := models.TrackStatusNotWatched
		if deleted {
			status = models.TrackStatusUnwatched
		}
		log.Debug().Str("status", status).Msg("Tracked episode")
		rw.Success(models.TrackResult{Status: status})
		return
	}

	if h.deps.Cache != nil {
		if req.ShowName != "" {
			h.deps.Cache.EnqueueShow(models.ShowRef{
				ID:         req.ShowID,
				Name:       req.ShowName,
				PosterPath: req.PosterPath,
			})
		}
		h.deps.Cache.EnqueueEpisode(models.EpisodeRef{
			ID:            req.EpisodeID,
			ShowID:        req.ShowID,
			SeasonNumber:  req.SeasonNumber,
			EpisodeNumber: req.EpisodeNumber,
			Name:          models.EpisodePlaceholderName(req.SeasonNumber, req.EpisodeNumber),
		})
	}

	inserted, err := h.deps.Social.MarkWatched(r.Context(), models.ProgressRecord{
		UserID:        userID,
		ShowID:        req.ShowID,
		SeasonNumber:  req.SeasonNumber,
		EpisodeNumber: req.EpisodeNumber,
		EpisodeID:     req.EpisodeID,
		WatchedAt:     time.Now().UTC(),
	})
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	status := models.TrackStatusAlreadyWatched
	if inserted {
		status = models.TrackStatusWatched
	}
	log.Debug().Str("status", status).Msg("Tracked episode")
	rw.Success(models.TrackResult{Status: status})
}
