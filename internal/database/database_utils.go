// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/steamtime/internal/metrics"
	"github.com/tomtom215/steamtime/internal/models"
)

// defaultQueryTimeout bounds queries whose caller supplied no deadline
const defaultQueryTimeout = 30 * time.Second

// ensureContext returns ctx with a deadline, adding the default timeout when
// the caller did not set one.
func (db *DB) ensureContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		return context.WithTimeout(context.Background(), defaultQueryTimeout)
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		return context.WithTimeout(ctx, defaultQueryTimeout)
	}

	return ctx, func() {}
}

// Checkpoint flushes the WAL into the database file
func (db *DB) Checkpoint(ctx context.Context) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	_, err := db.conn.ExecContext(ctx, "CHECKPOINT")
	if err != nil {
		return fmt.Errorf("checkpoint failed: %w", err)
	}
	return nil
}

// GetRecordCounts returns row counts for the health and status endpoints
func (db *DB) GetRecordCounts(ctx context.Context) (*models.TableCounts, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	var counts models.TableCounts
	err := db.conn.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM data),
			(SELECT COUNT(*) FROM games),
			(SELECT COUNT(DISTINCT username) FROM data),
			(SELECT COUNT(*) FROM errors)
	`).Scan(&counts.Records, &counts.Games, &counts.Users, &counts.Errors)
	metrics.RecordDBQuery("count", "all", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to count records: %w", err)
	}
	return &counts, nil
}
