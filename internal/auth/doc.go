// PreviouslyOn - Social TV Tracking and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/previouslyon

/*
Package auth resolves the caller's identity from a Supabase access token.

Tokens are issued elsewhere. This package only verifies them: HS256 signed
with the project JWT secret, audience "authenticated", an expiry, and a
UUID subject which becomes the user ID.

Authentication is optional. Middleware stores the user ID in the request
context when a valid bearer token is present and passes every request
through otherwise; handlers that need a user check UserIDFromContext and
answer 401 themselves.

	verifier, err := auth.NewVerifier(&cfg.Security)
	r.Use(auth.Middleware(verifier, logger))
*/
package auth
