// PreviouslyOn - Social TV Tracking and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/previouslyon

package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tomtom215/previouslyon/internal/logging"
	"github.com/tomtom215/previouslyon/internal/metrics"
)

type userKey struct{}

// TokenVerifier turns a bearer token into a user ID.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// Middleware identifies the caller without ever rejecting a request. No
// token, or one that fails verification, leaves the request anonymous;
// handlers that need a user answer 401 themselves.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Middleware(verifier TokenVerifier, logger zerolog.Logger) func(http.Handler) http.Handler {
	logger = logger.With().Str("component", "auth").Logger()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := verifier.Verify(token)
			result := verdict(err)
			metrics.AuthTokens.WithLabelValues(result).Inc()
			if err != nil {
				logger.Debug().
					Err(err).
					Str("request_id", logging.RequestIDFromContext(r.Context())).
					Str("result", result).
					Msg("Treating request with unusable token as anonymous")
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithUserID(r.Context(), userID)))
		})
	}
}

func verdict(err error) string {
	switch {
	case err == nil:
		return metrics.TokenValid
	case IsExpired(err):
		return metrics.TokenExpired
	}
	return metrics.TokenInvalid
}

// bearerToken extracts the token from an "Authorization: Bearer x" header.
// The scheme is case-insensitive.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// ContextWithUserID marks ctx as authenticated for handlers and for
// logging.Ctx.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return logging.ContextWithUserID(context.WithValue(ctx, userKey{}, userID), userID)
}

// UserIDFromContext returns "" for anonymous requests.
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userKey{}).(string)
	return id
}
