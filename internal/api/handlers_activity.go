// PreviouslyOn - Social TV Tracking and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/previouslyon

package api

import (
	"context"
	"net/http"

	"github.com/tomtom215/previouslyon/internal/auth"
	"github.com/tomtom215/previouslyon/internal/models"
)

type activityQuery func(ctx context.Context, userID string, limit int) ([]models.ActivityRecord, error)

// writeHydrated runs query, hydrates the rows and writes them. Store errors
// are the only failure; missing metadata only shortens the list.
func (h *Handler) writeHydrated(rw *ResponseWriter, r *http.Request, userID string, query activityQuery) {
	records, err := query(r.Context(), userID, h.activityLimit(r))
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	items := h.deps.Hydrator.Hydrate(r.Context(), records)
	rw.SuccessList(items, len(items))
}

func emptyActivity(rw *ResponseWriter) {
	rw.SuccessList([]models.ActivityItem{}, 0)
}

// Activity handles GET /api/v1/activity: the caller's own watch history.
func (h *Handler) Activity(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		emptyActivity(rw)
		return
	}
	h.writeHydrated(rw, r, userID, h.deps.Activity.RecentProgress)
}

// Feed handles GET /api/v1/feed: what the people the caller follows watched.
func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		emptyActivity(rw)
		return
	}
	h.writeHydrated(rw, r, userID, h.deps.Activity.FriendActivity)
}

// UserActivity handles GET /api/v1/users/{userID}/activity.
func (h *Handler) UserActivity(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	userID, err := pathUserID(r)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	h.writeHydrated(rw, r, userID, h.deps.Activity.RecentProgress)
}

// UserReviews handles GET /api/v1/users/{userID}/reviews.
func (h *Handler) UserReviews(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	userID, err := pathUserID(r)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	h.writeHydrated(rw, r, userID, h.deps.Activity.RecentReviews)
}
