// PreviouslyOn - Social TV Tracking and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/previouslyon

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/tomtom215/previouslyon/internal/config"
	"github.com/tomtom215/previouslyon/internal/models"
)

// DefaultAudience is the audience Supabase puts on user access tokens.
const DefaultAudience = "authenticated"

// Claims are the Supabase access token claims this service reads.
type Claims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Verifier validates Supabase access tokens.
type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

// NewVerifier creates a verifier from the security configuration. An empty
// secret is an error; callers that allow anonymous-only operation should
// not install the middleware at all.
func NewVerifier(cfg *config.SecurityConfig) (*Verifier, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT secret is required but was empty")
	}

	audience := cfg.JWTAudience
	if audience == "" {
		audience = DefaultAudience
	}

	return &Verifier{
		secret: []byte(cfg.JWTSecret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithAudience(audience),
			jwt.WithExpirationRequired(),
			jwt.WithLeeway(30*time.Second),
		),
	}, nil
}

// Verify parses the token and returns the user ID from its subject.
// Every failure wraps models.ErrUnauthenticated.
func (v *Verifier) Verify(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := v.parser.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", models.ErrUnauthenticated, err)
	}
	if !token.Valid {
		return "", fmt.Errorf("%w: invalid token", models.ErrUnauthenticated)
	}

	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", models.ErrUnauthenticated)
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", fmt.Errorf("%w: subject is not a user id: %w", models.ErrUnauthenticated, err)
	}

	return claims.Subject, nil
}

// IsExpired reports whether err came from an expired token.
func IsExpired(err error) bool {
	return errors.Is(err, jwt.ErrTokenExpired)
}
