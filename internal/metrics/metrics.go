// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// HTTP API
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Steam Web API
	SteamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "steam_requests_total",
			Help: "Total number of Steam Web API requests by status class",
		},
		[]string{"status"}, // "2xx", "4xx", "5xx", "error"
	)

	SteamRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "steam_request_duration_seconds",
			Help:    "Steam Web API request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	SteamFetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "steam_fetch_errors_total",
			Help: "Total number of classified feed failures",
		},
		[]string{"kind"},
	)

	// Collection runs
	SyncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sync_duration_seconds",
			Help:    "Duration of collection runs in seconds",
			Buckets: []float64{0.5, 1, 5, 10, 30, 60, 120, 300},
		},
	)

	SyncRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_runs_total",
			Help: "Total number of collection runs by result",
		},
		[]string{"result"}, // "success", "partial", "failure"
	)

	SyncUsers = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_users_total",
			Help: "Total number of per-user outcomes across collection runs",
		},
		[]string{"outcome"}, // "synced", "skipped", "failed"
	)

	SyncRecordsWritten = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sync_records_written_total",
			Help: "Total number of playtime records written",
		},
	)

	SyncNegativeDeltas = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sync_negative_deltas_total",
			Help: "Total number of records written with a negative daily time",
		},
	)

	SyncGamesRegistered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sync_games_registered_total",
			Help: "Total number of game upserts performed",
		},
	)

	SyncLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sync_last_success_timestamp",
			Help: "Unix timestamp of the last run without user failures",
		},
	)

	// Backup import
	ImportLines = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "import_lines_total",
			Help: "Total number of backup lines processed by result",
		},
		[]string{"result"}, // "imported", "empty", "resumed", "failed"
	)

	ImportDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "import_duration_seconds",
			Help:    "Duration of per-user backup imports in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
		},
	)

	// Error log
	ErrorReports = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "error_reports_total",
			Help: "Total number of error reports by severity",
		},
		[]string{"severity"},
	)

	ErrorReportsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "error_reports_dropped_total",
			Help: "Total number of error reports that could not be persisted",
		},
	)

	// Events
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Total number of user-synced events published by result",
		},
		[]string{"result"},
	)

	// History cache
	HistoryCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "history_cache_lookups_total",
			Help: "Total number of history cache lookups by result",
		},
		[]string{"result"}, // "hit", "miss"
	)

	HistoryCacheInvalidations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "history_cache_invalidations_total",
			Help: "Total number of times the history cache was cleared after new data",
		},
	)

	// Circuit breaker
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordDBQuery observes one query.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordAPIRequest observes one HTTP request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordSteamRequest observes one upstream call. A status of 0 means the
// request failed before a response arrived.
func RecordSteamRequest(status int, duration time.Duration) {
	SteamRequestDuration.Observe(duration.Seconds())
	SteamRequestsTotal.WithLabelValues(statusClass(status)).Inc()
}

func statusClass(status int) string {
	if status <= 0 {
		return "error"
	}
	return strconv.Itoa(status/100) + "xx"
}

// RecordFetchError counts one classified failure.
func RecordFetchError(kind string) {
	SteamFetchErrors.WithLabelValues(kind).Inc()
}

// RecordSyncRun observes a completed collection run.
func RecordSyncRun(duration time.Duration, synced, skipped, failed, records int) {
	SyncDuration.Observe(duration.Seconds())
	SyncUsers.WithLabelValues("synced").Add(float64(synced))
	SyncUsers.WithLabelValues("skipped").Add(float64(skipped))
	SyncUsers.WithLabelValues("failed").Add(float64(failed))
	SyncRecordsWritten.Add(float64(records))

	switch {
	case failed == 0:
		SyncRuns.WithLabelValues("success").Inc()
		SyncLastSuccess.Set(float64(time.Now().Unix()))
	case synced+skipped > 0:
		SyncRuns.WithLabelValues("partial").Inc()
	default:
		SyncRuns.WithLabelValues("failure").Inc()
	}
}

// RecordImportLine counts one processed backup line.
func RecordImportLine(result string) {
	ImportLines.WithLabelValues(result).Inc()
}

// RecordErrorReport counts one report handed to the error log.
func RecordErrorReport(severity string, persisted bool) {
	ErrorReports.WithLabelValues(severity).Inc()
	if !persisted {
		ErrorReportsDropped.Inc()
	}
}

// RecordEventPublish counts one publish attempt.
func RecordEventPublish(err error) {
	if err != nil {
		EventsPublished.WithLabelValues("failure").Inc()
		return
	}
	EventsPublished.WithLabelValues("success").Inc()
}

// RecordHistoryCacheLookup counts one cache lookup.
func RecordHistoryCacheLookup(hit bool) {
	if hit {
		HistoryCacheLookups.WithLabelValues("hit").Inc()
		return
	}
	HistoryCacheLookups.WithLabelValues("miss").Inc()
}
