// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

/*
database_schema.go - Database Schema Management

Tables:
  - data: daily playtime observations, append-only, keyed by
    (date, username, appid)
  - games: appid lookup with optional display name and normalized name
  - errors: error log written by the errorlog reporter

The schema is additive only: every statement is CREATE ... IF NOT EXISTS and
nothing is ever altered or dropped.
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core database tables
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range getTableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}

	return nil
}

// createIndexes creates secondary indexes for the history and last-total lookups
func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range getIndexQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", query, err)
		}
	}

	return nil
}

func getTableCreationQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS data (
			date TEXT NOT NULL,
			username TEXT NOT NULL,
			appid BIGINT NOT NULL,
			total_time DOUBLE NOT NULL,
			daily_time DOUBLE NOT NULL,
			fortnight_time DOUBLE NOT NULL,
			PRIMARY KEY (date, username, appid)
		)`,

		`CREATE TABLE IF NOT EXISTS games (
			appid BIGINT PRIMARY KEY,
			name TEXT,
			formatted_name TEXT
		)`,

		`CREATE TABLE IF NOT EXISTS errors (
			id TEXT PRIMARY KEY,
			time BIGINT NOT NULL,
			severity TEXT NOT NULL,
			source TEXT NOT NULL,
			error TEXT NOT NULL,
			stack_trace TEXT,
			user_id TEXT,
			additional_data TEXT
		)`,
	}
}

func getIndexQueries() []string {
	return []string{
		`CREATE INDEX IF NOT EXISTS idx_data_user_app_date ON data(username, appid, date)`,
		`CREATE INDEX IF NOT EXISTS idx_errors_time ON errors(time)`,
	}
}
