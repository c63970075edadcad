// PreviouslyOn - Social TV Tracking and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/previouslyon

package api

import (
	"net/http"

	"github.com/tomtom215/previouslyon/internal/auth"
	"github.com/tomtom215/previouslyon/internal/logging"
	"github.com/tomtom215/previouslyon/internal/models"
	"github.com/tomtom215/previouslyon/internal/validation"
)

// Recommendations handles GET /api/v1/recommendations?limit=
// Anonymous callers and small libraries get an empty result, never an error.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	userID := auth.UserIDFromContext(r.Context())
	limit := getIntParam(r, "limit", 0)

	result := h.deps.Recommender.Recommend(r.Context(), userID, limit)
	rw.SuccessList(result, len(result.Candidates))
}

// Assistant handles POST /api/v1/assistant {"query": "..."}.
// Every outcome other than a malformed request is a 200; failures return
// the fixed apology with no shows.
func (h *Handler) Assistant(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req AssistantRequest
	if err := decodeJSON(w, r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		rw.Validation(verr)
		return
	}

	userID := auth.UserIDFromContext(r.Context())
	logging.Ctx(r.Context()).Debug().Int("query_len", len(req.Query)).Msg("Assistant query")

	resp := h.deps.Assistant.Reply(r.Context(), userID, req.Query)
	reply := models.AssistantReply{AssistantResponse: resp, Shows: []models.ShowRef{}}
	if len(resp.Codes) > 0 {
		reply.Shows = h.deps.Resolver.ResolveShows(r.Context(), resp.Codes)
	}
	rw.Success(reply)
}
