// PreviouslyOn - Social TV Tracking and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/previouslyon

/*
Package api provides the HTTP REST API for PreviouslyOn.

Endpoint groups:

 1. Home (/api/v1/recommendations, /api/v1/assistant, /api/v1/activity,
    /api/v1/feed): personalized, optional auth. These never fail because
    TMDB or the model is down; they return fewer items or the fixed
    assistant apology instead.
 2. Users (/api/v1/users/{userID}/...): public activity and reviews, plus
    follow state for the authenticated caller.
 3. Tracking (/api/v1/track): marks episodes watched; requires a user.
 4. Shows (/api/v1/shows/...): TMDB passthroughs. Upstream failures
    become 502 EXTERNAL_SERVICE_FAILED.
 5. Health and metrics (/health/live, /health/ready, /metrics).

Every JSON response uses the APIResponse envelope:

	{"success": true, "data": {...}, "meta": {"request_id": "...", "timestamp": "..."}}
	{"success": false, "error": {"code": "UNAUTHORIZED", "message": "..."}, "meta": {...}}

Handlers depend on small consumer-side interfaces (Recommender, Assistant,
Hydrator, ...) so tests can substitute fakes.
*/
package api
