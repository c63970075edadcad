// PreviouslyOn - Social TV Tracking and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/previouslyon

package auth

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/previouslyon/internal/logging"
	"github.com/tomtom215/previouslyon/internal/metrics"
)

func TestMiddleware(t *testing.T) {
	t.Parallel()

	v := newTestVerifier(t)
	valid := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims())

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "no header", want: ""},
		{name: "valid bearer", header: "Bearer " + valid, want: testUserID},
		{name: "lowercase scheme", header: "bearer " + valid, want: testUserID},
		{name: "invalid token stays anonymous", header: "Bearer nope", want: ""},
		{name: "basic scheme ignored", header: "Basic dXNlcjpwYXNz", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var got string
			called := false
			handler := Middleware(v, logging.NewTestLogger(io.Discard))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				got = UserIDFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if !called {
				t.Fatal("middleware must never block the request")
			}
			if rec.Code != http.StatusOK {
				t.Errorf("status = %d", rec.Code)
			}
			if got != tt.want {
				t.Errorf("user id = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUserIDFromContext_Anonymous(t *testing.T) {
	t.Parallel()

	if got := UserIDFromContext(context.Background()); got != "" {
		t.Errorf("UserIDFromContext() = %q, want empty", got)
	}
	ctx := ContextWithUserID(context.Background(), testUserID)
	if got := UserIDFromContext(ctx); got != testUserID {
		t.Errorf("UserIDFromContext() = %q", got)
	}
}

func TestBearerToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"BEARER   abc  ", "abc", true},
		{"Bearer", "", false},
		{"Bearer    ", "", false},
		{"Token abc", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := bearerToken(tt.header)
		if got != tt.want || ok != tt.ok {
			t.Errorf("bearerToken(%q) = %q, %v; want %q, %v", tt.header, got, ok, tt.want, tt.ok)
		}
	}
}

func TestVerdict(t *testing.T) {
	t.Parallel()

	v := newTestVerifier(t)
	expiredClaims := validClaims()
	expiredClaims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
	expired := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), expiredClaims)
	valid := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims())

	tests := []struct {
		token string
		want  string
	}{
		{valid, metrics.TokenValid},
		{expired, metrics.TokenExpired},
		{"garbage", metrics.TokenInvalid},
	}
	for _, tt := range tests {
		_, err := v.Verify(tt.token)
		if got := verdict(err); got != tt.want {
			t.Errorf("verdict = %q, want %q (err %v)", got, tt.want, err)
		}
	}
}
