// PreviouslyOn - Social TV Tracking and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/previouslyon

package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// errServerStopped reports a listener that returned without being asked
// to. Returning it makes the supervisor restart the server.
var errServerStopped = errors.New("http server stopped unexpectedly")

// HTTPServer is the lifecycle subset of *http.Server.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// HTTPServerService runs the API listener under supervision.
type HTTPServerService struct {
	server HTTPServer
	addr   string
	grace  time.Duration
	logger zerolog.Logger
}

// NewHTTPServerService wraps server. grace bounds how long in-flight
// requests get to finish on shutdown; non-positive means 10s.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHTTPServerService(server HTTPServer, grace time.Duration, logger zerolog.Logger) *HTTPServerService {
	if grace <= 0 {
		grace = 10 * time.Second
	}
	svc := &HTTPServerService{server: server, grace: grace}
	if s, ok := server.(*http.Server); ok {
		svc.addr = s.Addr
	}
	svc.logger = logger.With().Str("service", svc.String()).Str("addr", svc.addr).Logger()
	return svc
}

// Serve implements suture.Service.
func (h *HTTPServerService) Serve(ctx context.Context) error {
	done := make(chan error, 1)
	go func() { done <- h.server.ListenAndServe() }()

	h.logger.Info().Msg("HTTP server listening")
	started := time.Now()

	select {
	case err := <-done:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			err = errServerStopped
		}
		h.logger.Error().Err(err).Dur("uptime", time.Since(started)).Msg("HTTP server exited")
		return fmt.Errorf("listen %s: %w", h.addr, err)

	case <-ctx.Done():
		return h.shutdown(ctx, done)
	}
}

// shutdown drains connections under the grace period. ctx is already
// canceled, so the deadline hangs off an uncancelled copy.
func (h *HTTPServerService) shutdown(ctx context.Context, done <-chan error) error {
	graceCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.grace)
	defer cancel()

	h.logger.Info().Dur("grace", h.grace).Msg("HTTP server draining connections")
	if err := h.server.Shutdown(graceCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	<-done
	h.logger.Info().Msg("HTTP server stopped")
	return ctx.Err()
}

func (h *HTTPServerService) String() string {
	return "http-server"
}
