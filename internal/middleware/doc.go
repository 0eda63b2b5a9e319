// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

/*
Package middleware provides HTTP middleware shared by the API router.

Key Components:

  - RequestID: assigns an X-Request-ID and seeds the logging context with
    request and correlation ids
  - PrometheusMetrics: request count, latency and in-flight instrumentation
    labelled by chi route pattern

Both are written as http.HandlerFunc wrappers and adapted to chi's
func(http.Handler) http.Handler form by the api package.

Usage Example:

	handler := middleware.RequestID(middleware.PrometheusMetrics(h.History))

	// Inside a handler:
	requestID := middleware.GetRequestID(r.Context())
	logging.Ctx(r.Context()).Info().Msg("served") // carries request_id

See Also:

  - internal/api: router and handlers wrapped by this middleware
  - internal/metrics: Prometheus metric definitions
*/
package middleware
