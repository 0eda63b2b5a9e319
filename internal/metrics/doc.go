// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

/*
Package metrics defines the Prometheus collectors exported on /metrics.

Collectors are registered with the default registry through promauto at
package init, so importing the package is enough to expose them.

Steam API:
  - steam_requests_total{status}: upstream calls by HTTP status class
  - steam_request_duration_seconds: upstream latency
  - steam_fetch_errors_total{kind}: classified feed failures

Collection runs:
  - sync_duration_seconds, sync_runs_total{result}
  - sync_users_total{outcome}: synced, skipped, failed
  - sync_records_written_total, sync_negative_deltas_total
  - sync_games_registered_total
  - sync_last_success_timestamp

Backup import:
  - import_lines_total{result}, import_duration_seconds

Error log and events:
  - error_reports_total{severity}
  - events_published_total{result}

Database, HTTP and circuit breaker collectors follow the usual naming:
duckdb_query_duration_seconds, api_requests_total, circuit_breaker_state.

Example alert:

	- alert: SteamCircuitOpen
	  expr: circuit_breaker_state{name="steam-api"} == 2
	  for: 10m
*/
package metrics
