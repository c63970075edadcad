// PreviouslyOn - Social TV Tracking and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/previouslyon

/*
Package middleware provides the HTTP middleware shared by every route.

  - RequestID: picks a safe inbound X-Request-ID or chi's request ID, stores
    it in the logging context and echoes it
  - PrometheusMetrics: request counts, latencies and in-flight gauge, labeled
    by chi route pattern

The router installs them in this order:

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
*/
package middleware
