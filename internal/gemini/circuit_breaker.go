// PreviouslyOn - Social TV Tracking and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/previouslyon

package gemini

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/tomtom215/previouslyon/internal/breaker"
)

// BreakerName labels the Gemini breaker in metrics.
const BreakerName = "gemini-api"

// CircuitBreakerClient fails fast while the model API is unhealthy.
type CircuitBreakerClient struct {
	next Generator
	cb   *breaker.Breaker
}

var _ Generator = (*CircuitBreakerClient)(nil)

// NewCircuitBreakerClient wraps next. A missing API key, caller
// cancellation and 4xx other than 429 do not count as failures.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewCircuitBreakerClient(next Generator, logger zerolog.Logger) *CircuitBreakerClient {
	s := breaker.DefaultSettings(BreakerName)
	s.IsSuccessful = func(err error) bool {
		return err == nil ||
			errors.Is(err, ErrNotConfigured) ||
			errors.Is(err, context.Canceled) ||
			IsClientError(err)
	}
	return &CircuitBreakerClient{next: next, cb: breaker.New(s, logger)}
}

// State returns the breaker state.
func (c *CircuitBreakerClient) State() string { return c.cb.State() }

func (c *CircuitBreakerClient) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	return breaker.Do(c.cb, func() (string, error) {
		return c.next.GenerateJSON(ctx, prompt)
	})
}
