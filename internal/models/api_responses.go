// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

package models

import "time"

// APIResponse is the envelope returned by every /api/v1 endpoint.
//
//	{
//	  "status": "success",
//	  "data": {...},
//	  "metadata": {"timestamp": "2026-10-19T12:00:00Z", "query_time_ms": 3}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries response timing and the request id for tracing.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	RequestID   string    `json:"request_id,omitempty"`
}

// APIError is the error body of a failed request. Code is machine readable,
// e.g. VALIDATION_ERROR, DATABASE_ERROR, SYNC_IN_PROGRESS.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HealthStatus is returned by /api/v1/health.
type HealthStatus struct {
	Status            string     `json:"status"` // "healthy" or "degraded"
	Version           string     `json:"version"`
	DatabaseConnected bool       `json:"database_connected"`
	SteamReachable    bool       `json:"steam_reachable"`
	CircuitState      string     `json:"circuit_state"`
	LastSyncTime      *time.Time `json:"last_sync_time,omitempty"`
	TrackedUsers      int        `json:"tracked_users"`
	Uptime            float64    `json:"uptime_seconds"`
}

// SyncSummary describes one completed collection run.
type SyncSummary struct {
	RunID    string        `json:"run_id"`
	Date     string        `json:"date"`
	Users    int           `json:"users"`
	Synced   int           `json:"synced"`
	Skipped  int           `json:"skipped"`
	Failed   int           `json:"failed"`
	Records  int           `json:"records"`
	Duration time.Duration `json:"duration_ns"`
}

// ImportSummary describes one backup import of one user.
type ImportSummary struct {
	Username       string  `json:"username"`
	LinesRead      int64   `json:"lines_read"`
	LinesSkipped   int64   `json:"lines_skipped"`
	RecordsWritten int64   `json:"records_written"`
	Resumed        bool    `json:"resumed"`
	DurationSecs   float64 `json:"duration_seconds"`
}

// TableCounts reports row counts for the health and stats endpoints.
type TableCounts struct {
	Records int64 `json:"records"`
	Games   int64 `json:"games"`
	Users   int64 `json:"users"`
	Errors  int64 `json:"errors"`
}
