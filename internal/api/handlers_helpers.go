// PreviouslyOn - Social TV Tracking and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/previouslyon

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/previouslyon/internal/auth"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 64 << 10

// getIntParam returns the query parameter as an int, or def when it is
// missing or malformed.
func getIntParam(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// activityLimit parses ?limit= into [1, MaxActivityLimit].
func (h *Handler) activityLimit(r *http.Request) int {
	limit := getIntParam(r, "limit", h.cfg.ActivityLimit)
	if limit <= 0 {
		return h.cfg.ActivityLimit
	}
	return min(limit, h.cfg.MaxActivityLimit)
}

// pathInt reads a positive integer URL parameter.
func pathInt(r *http.Request, name string) (int, error) {
	v, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return v, nil
}

// pathUserID reads and validates the {userID} URL parameter.
func pathUserID(r *http.Request) (string, error) {
	id := chi.URLParam(r, "userID")
	if _, err := uuid.Parse(id); err != nil {
		return "", fmt.Errorf("invalid user id")
	}
	return strings.ToLower(id), nil
}

// requireUser writes a 401 and returns "" when the request is anonymous.
func requireUser(rw *ResponseWriter, r *http.Request) string {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		rw.Unauthorized("Authentication required")
	}
	return userID
}

// decodeJSON strictly decodes a bounded request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// parseIntList parses a comma separated list of integers, e.g. genres=18,80.
func parseIntList(raw string) ([]int, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", p)
		}
		out = append(out, v)
	}
	return out, nil
}
