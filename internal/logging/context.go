// PreviouslyOn - Social TV Tracking and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/previouslyon

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// requestScope is everything Ctx stamps on a request's log lines. It is
// stored by value so each With* call leaves the parent context untouched.
type requestScope struct {
	correlationID string
	requestID     string
	userID        string
	base          *zerolog.Logger
}

type scopeKey struct{}

func scopeOf(ctx context.Context) requestScope {
	s, _ := ctx.Value(scopeKey{}).(requestScope)
	return s
}

func withScope(ctx context.Context, edit func(*requestScope)) context.Context {
	s := scopeOf(ctx)
	edit(&s)
	return context.WithValue(ctx, scopeKey{}, s)
}

// ContextWithNewCorrelationID stores a fresh 8 character correlation id.
func ContextWithNewCorrelationID(ctx context.Context) context.Context {
	id := uuid.New().String()[:8]
	return withScope(ctx, func(s *requestScope) { s.correlationID = id })
}

// CorrelationIDFromContext returns "" when unset.
func CorrelationIDFromContext(ctx context.Context) string { return scopeOf(ctx).correlationID }

// ContextWithRequestID stores the HTTP request id.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return withScope(ctx, func(s *requestScope) { s.requestID = id })
}

// RequestIDFromContext returns "" when unset.
func RequestIDFromContext(ctx context.Context) string { return scopeOf(ctx).requestID }

// ContextWithUserID tags later Ctx loggers with the authenticated user.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return withScope(ctx, func(s *requestScope) { s.userID = userID })
}

// ContextWithLogger makes Ctx build on l instead of the global logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func ContextWithLogger(ctx context.Context, l zerolog.Logger) context.Context {
	return withScope(ctx, func(s *requestScope) { s.base = &l })
}

// Ctx returns a logger carrying whichever request ids ctx holds.
//
//	logging.Ctx(ctx).Info().Int("show_id", id).Msg("Hydrated show")
func Ctx(ctx context.Context) *zerolog.Logger {
	s := scopeOf(ctx)
	base := Logger()
	if s.base != nil {
		base = *s.base
	}

	lc := base.With()
	for _, f := range [...]struct{ key, val string }{
		{"correlation_id", s.correlationID},
		{"request_id", s.requestID},
		{"user_id", s.userID},
	} {
		if f.val != "" {
			lc = lc.Str(f.key, f.val)
		}
	}
	l := lc.Logger()
	return &l
}
