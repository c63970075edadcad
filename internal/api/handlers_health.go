// PreviouslyOn - Social TV Tracking and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/previouslyon

package api

import (
	"context"
	"net/http"
	"time"
)

// HealthLive handles GET /health/live. It reports only that the process is
// serving.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady handles GET /health/ready. It returns 503 until the store
// answers a ping.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if h.deps.Health == nil {
		rw.ServiceUnavailable("Database not configured")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.ReadyTimeout)
	defer cancel()

	if err := h.deps.Health.Ping(ctx); err != nil {
		h.logger.Warn().Err(err).Msg("Readiness check failed")
		rw.ServiceUnavailable("Database unavailable")
		return
	}
	rw.Success(map[string]interface{}{
		"ready":    true,
		"database": "connected",
	})
}
