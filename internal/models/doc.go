// PreviouslyOn - Social TV Tracking and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/previouslyon

/*
Package models defines the data structures shared across PreviouslyOn.

It is the leaf package of the module: the metadata client, the store, the
recommendation pipeline, the hydration engine and the HTTP layer all speak
in these types, and it imports nothing from the rest of the module.

Key Components:

  - ShowRef, ShowDetails, EpisodeRef, SeasonDetails, ShowPage: show metadata
    as returned by TMDB and as cached in the local shows/episodes tables
  - ProgressRecord, Review: user-initiated records persisted in Postgres
  - ActivityRecord: a partially joined progress or review row awaiting
    hydration; ActivityItem: the fully resolved display record
  - RecommendationResult, AssistantResponse: per-request results of the
    collaborative recommender and the AI assistant, never persisted
  - Error taxonomy: ErrUpstreamUnavailable, ErrMalformedModelOutput,
    ErrUnauthenticated, ErrDataGap

JSON Tags:

Field names use snake_case, matching both the TMDB wire format and the
HTTP API, so the same struct decodes upstream payloads and encodes
responses.

Thread Safety:

All types are plain values. They are safe to share once constructed and
must not be mutated concurrently.
*/
package models
