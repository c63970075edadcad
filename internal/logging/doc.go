// PreviouslyOn - Social TV Tracking and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/previouslyon

// Package logging is the zerolog layer shared by every PreviouslyOn component.
//
// Call Init once from main with values from config.LoggingConfig. Until then
// the package logs JSON at info level to stderr.
//
//	logging.Init(logging.Config{Level: "debug", Format: "console"})
//	logging.Info().Str("addr", addr).Msg("HTTP server listening")
//
// Request-scoped code should log through Ctx so the correlation id, request
// id and authenticated user id set by the HTTP middleware are attached:
//
//	logging.Ctx(ctx).Warn().Err(err).Int("show_id", id).Msg("TMDB fallback failed")
//
// Components that hold a logger take a zerolog.Logger by value and add their
// own "component" field. NewSlogLogger adapts the global logger for libraries
// that require *slog.Logger, such as the suture event hook.
//
// Secrets must never be logged verbatim; use Redact.
//
// Environment (read by the config package):
//
//	LOG_LEVEL   trace, debug, info, warn, error (default info)
//	LOG_FORMAT  json, console (default json)
//	LOG_CALLER  true, false (default false)
package logging
