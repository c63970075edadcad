// PreviouslyOn - Social TV Tracking and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/previouslyon

package logging

import "strings"

// Redact masks a secret for logging, keeping only the last four characters
// of values long enough that this reveals nothing useful.
func Redact(secret string) string {
	switch {
	case secret == "":
		return "<unset>"
	case len(secret) < 16:
		return "****"
	default:
		return strings.Repeat("*", 8) + secret[len(secret)-4:]
	}
}
