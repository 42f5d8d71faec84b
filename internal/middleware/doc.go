// Cinerec - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerec

/*
Package middleware provides HTTP middleware shared by the API router.

Key Components:

  - Request ID: UUID-based request tracking that also seeds the logging context
  - Prometheus Metrics: request count, latency and in-flight instrumentation
  - Access Log: one structured zerolog line per completed request

All middleware use the chi signature func(http.Handler) http.Handler:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.AccessLog)

Metrics are labelled with the chi route pattern (for example
/recommend/user/{userId}) rather than the raw URL path, so user and item ids
never become label values.
*/
package middleware
