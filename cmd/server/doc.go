// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

/*
Command steamtime records daily Steam playtime for a fixed set of accounts and
serves the per-game history over HTTP.

# Commands

	steamtime [serve]          run the collector and the API until SIGINT/SIGTERM
	steamtime sync             collect one snapshot for every user and exit
	steamtime import [--fresh] import legacy backup files and exit

# Startup Order

 1. Configuration: koanf v2 (defaults, config.yaml, environment)
 2. Logging: zerolog, JSON or console
 3. Database: DuckDB schema and indexes
 4. Error log: DuckDB-backed reporter
 5. Steam client wrapped in a circuit breaker
 6. Event publisher: NATS when built with -tags nats and EVENTS_ENABLED=true
 7. Sync manager and backup importer sharing one run lock
 8. Supervisor tree (serve only)

# Supervision

	RootSupervisor ("steamtime")
	├── collection-layer
	│   ├── sync-manager
	│   └── startup-import (IMPORT_ON_STARTUP=true)
	└── api-layer
	    └── http-server

# Configuration

	STEAM_API_KEY=...                      # required
	STEAM_USERS=76561198000000001:alice    # or steam.users in config.yaml
	DUCKDB_PATH=/data/steamtime.duckdb
	SYNC_INTERVAL=1h
	SYNC_TIMEZONE=Europe/Berlin
	BACKUP_DIR=/data/backups
	IMPORT_PROGRESS_PATH=/data/import-progress
	HTTP_PORT=8080
	LOG_LEVEL=info
	LOG_FORMAT=json

# Build Tags

	go build -tags nats ./cmd/server   # compile the NATS publisher
*/
package main
