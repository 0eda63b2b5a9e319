// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/steamtime/internal/metrics"
	"github.com/tomtom215/steamtime/internal/models"
)

// InsertErrorEvent writes one error log row. An id collision returns an error
// wrapping ErrDuplicateKey.
func (db *DB) InsertErrorEvent(ctx context.Context, event *models.ErrorEvent) error {
	if event == nil {
		return fmt.Errorf("error event is nil")
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO errors (id, time, severity, source, error, stack_trace, user_id, additional_data)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, event.ID, event.Time.Unix(), event.Severity, event.Source, event.Error,
		event.StackTrace, stringPtrArg(event.UserID), stringPtrArg(event.AdditionalData))
	metrics.RecordDBQuery("insert", "errors", time.Since(start), err)

	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: errors id %s", ErrDuplicateKey, event.ID)
		}
		return fmt.Errorf("failed to insert error event: %w", err)
	}
	return nil
}

// ListErrorEvents returns up to limit error events, newest first.
func (db *DB) ListErrorEvents(ctx context.Context, limit int) ([]models.ErrorEvent, error) {
	if limit <= 0 {
		limit = 50
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, time, severity, source, error, stack_trace, user_id, additional_data
		FROM errors
		ORDER BY time DESC, id
		LIMIT ?
	`, limit)
	metrics.RecordDBQuery("select", "errors", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to list error events: %w", err)
	}
	defer closeWithLog(rows, "rows")

	events := []models.ErrorEvent{}
	for rows.Next() {
		var event models.ErrorEvent
		var unix int64
		var stack, userID, extra sql.NullString
		if err := rows.Scan(&event.ID, &unix, &event.Severity, &event.Source, &event.Error,
			&stack, &userID, &extra); err != nil {
			return nil, fmt.Errorf("failed to scan error event: %w", err)
		}
		event.Time = time.Unix(unix, 0).UTC()
		event.StackTrace = stack.String
		event.UserID = nullStringPtr(userID)
		event.AdditionalData = nullStringPtr(extra)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating error events: %w", err)
	}
	return events, nil
}

func stringPtrArg(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
