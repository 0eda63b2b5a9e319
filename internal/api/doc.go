// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

/*
Package api provides the HTTP layer for Steamtime.

The router is built on chi and exposes the collected playtime history, the
catalog of known games, manual collection and import triggers, and the error
log.

Endpoints:

	GET  /api/steamplaytime?username=&game_name=   raw history map
	GET  /api/v1/history?username=&game_name=      history in the response envelope
	GET  /api/v1/games                             known games
	GET  /api/v1/users                             users with stored records
	GET  /api/v1/stats                             table row counts
	POST /api/v1/sync                              run one collection now
	POST /api/v1/import/{username}                 import one backup file
	GET  /api/v1/import/status                     progress of the current import
	GET  /api/v1/errors?limit=                     recent error events
	GET  /api/v1/health                            health summary
	GET  /api/v1/health/live                       liveness probe
	GET  /api/v1/health/ready                      readiness probe
	GET  /metrics                                  Prometheus metrics

History lookups match game names ignoring case and punctuation, so
game_name=half-life%202 and game_name=HalfLife2 return the same series. The
raw endpoint returns the history map directly:

	{
	  "alice": {
	    "Half-Life 2": {
	      "dates": ["2024/05/01", "2024/05/02"],
	      "total_time": [120, 150],
	      "daily_time": [120, 30]
	    }
	  }
	}

Every /api/v1 endpoint wraps its payload in models.APIResponse. Errors carry a
machine readable code such as VALIDATION_ERROR, DATABASE_ERROR,
SYNC_IN_PROGRESS or IMPORT_IN_PROGRESS.

Middleware:

Global: request id with logging context, RealIP, Recoverer and CORS. Each
route group adds an httprate limiter, API security headers and Prometheus
request metrics. History responses are gzip compressed.

Query parameters are validated with go-playground/validator through the
internal/validation package.
*/
package api
