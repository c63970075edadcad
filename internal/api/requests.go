// PreviouslyOn - Social TV Tracking and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/previouslyon

package api

// AssistantRequest is the body of POST /api/v1/assistant.
type AssistantRequest struct {
	Query string `json:"query" validate:"required,max=500"`
}

// SearchRequest holds the validated query parameters of /shows/search.
type SearchRequest struct {
	Query string `json:"q" validate:"required,max=200"`
	Page  int    `json:"page" validate:"min=1,max=500"`
}
