// PreviouslyOn - Social TV Tracking and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/previouslyon

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/previouslyon/internal/middleware"
)

// Router wires handlers and middleware into a chi mux.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	authenticate  func(http.Handler) http.Handler
}

// NewRouter creates a Router. authenticate may be nil, in which case every
// request is anonymous.
func NewRouter(handler *Handler, chiMW *ChiMiddleware, authenticate func(http.Handler) http.Handler) *Router {
	if chiMW == nil {
		chiMW = NewChiMiddleware(nil)
	}
	if authenticate == nil {
		authenticate = func(next http.Handler) http.Handler { return next }
	}
	return &Router{
		handler:       handler,
		chiMiddleware: chiMW,
		authenticate:  authenticate,
	}
}

// SetupChi builds the HTTP handler.
func (router *Router) SetupChi() http.Handler {
	h := router.handler
	r := chi.NewRouter()

	// Applied to all routes, in order.
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.Use(chimiddleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, ErrCodeNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, ErrCodeMethodNotAllowed, "Method not allowed")
	})

	// Probes and scraping skip CORS, rate limiting and auth.
	r.Get("/health/live", h.HealthLive)
	r.Get("/health/ready", h.HealthReady)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.CORS())
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(router.authenticate)

		// Home
		r.Get("/recommendations", h.Recommendations)
		r.With(router.chiMiddleware.AssistantRateLimit()).Post("/assistant", h.Assistant)
		r.Get("/activity", h.Activity)
		r.Get("/feed", h.Feed)

		r.Post("/track", h.Track)

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/activity", h.UserActivity)
			r.Get("/reviews", h.UserReviews)
			r.Get("/follow", h.FollowStatus)
			r.Put("/follow", h.Follow)
			r.Delete("/follow", h.Unfollow)
		})

		r.Route("/shows", func(r chi.Router) {
			r.Get("/trending", h.Trending)
			r.Get("/search", h.Search)
			r.Get("/discover", h.Discover)
			r.Get("/genres", h.Genres)
			r.Get("/{showID}", h.ShowDetails)
			r.Get("/{showID}/seasons/{season}", h.SeasonDetails)
		})
	})

	return r
}
