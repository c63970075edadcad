// PreviouslyOn - Social TV Tracking and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/previouslyon

package models

import "errors"

// Error taxonomy for the personalization pipeline. Typed errors from the
// upstream clients unwrap to one of these so callers can use errors.Is.
var (
	// ErrUpstreamUnavailable covers non-2xx responses, timeouts and transport
	// failures from TMDB or the generative model.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrMalformedModelOutput is returned when the model reply is not JSON or
	// does not match the two-key response schema.
	ErrMalformedModelOutput = errors.New("malformed model output")

	// ErrUnauthenticated is returned when a personalized operation runs
	// without a resolved user.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrDataGap marks a record whose local join came back without the
	// referenced show or episode.
	ErrDataGap = errors.New("data gap")
)
