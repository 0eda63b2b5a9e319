// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/steamtime/internal/metrics"
	"github.com/tomtom215/steamtime/internal/models"
)

// GetLastTotalTime returns the most recent cumulative total recorded for the
// user and app. The boolean is false when the pair was never recorded.
func (db *DB) GetLastTotalTime(ctx context.Context, username string, appID int64) (float64, bool, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	var total float64
	err := db.conn.QueryRowContext(ctx, `
		SELECT total_time FROM data
		WHERE username = ? AND appid = ?
		ORDER BY date DESC
		LIMIT 1
	`, username, appID).Scan(&total)

	if errors.Is(err, sql.ErrNoRows) {
		metrics.RecordDBQuery("select", "data", time.Since(start), nil)
		return 0, false, nil
	}
	metrics.RecordDBQuery("select", "data", time.Since(start), err)
	if err != nil {
		return 0, false, fmt.Errorf("failed to get last total time for %s/%d: %w", username, appID, err)
	}
	return total, true, nil
}

// DaysCollectedForUser returns the number of distinct dates with any record
// for the user.
func (db *DB) DaysCollectedForUser(ctx context.Context, username string) (int, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	var days int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT date) FROM data WHERE username = ?`, username,
	).Scan(&days)
	metrics.RecordDBQuery("count", "data", time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("failed to count collected days for %s: %w", username, err)
	}
	return days, nil
}

// HasRecordsForDate reports whether any record exists for the user on date.
func (db *DB) HasRecordsForDate(ctx context.Context, username, date string) (bool, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	var exists bool
	err := db.conn.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM data WHERE username = ? AND date = ?)`, username, date,
	).Scan(&exists)
	metrics.RecordDBQuery("select", "data", time.Since(start), err)
	if err != nil {
		return false, fmt.Errorf("failed to check records for %s on %s: %w", username, date, err)
	}
	return exists, nil
}

// RecordedAppIDs returns the app ids already recorded for the user on date.
func (db *DB) RecordedAppIDs(ctx context.Context, username, date string) (map[int64]struct{}, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx,
		`SELECT appid FROM data WHERE username = ? AND date = ?`, username, date)
	metrics.RecordDBQuery("select", "data", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to list recorded games for %s on %s: %w", username, date, err)
	}
	defer func() { _ = rows.Close() }()

	ids := make(map[int64]struct{})
	for rows.Next() {
		var appID int64
		if err := rows.Scan(&appID); err != nil {
			return nil, fmt.Errorf("failed to scan recorded game: %w", err)
		}
		ids[appID] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recorded games: %w", err)
	}
	return ids, nil
}

// InsertRecord appends one playtime record. It returns an error wrapping
// ErrDuplicateKey when the (date, username, appid) key already exists; the
// stored row is never modified.
func (db *DB) InsertRecord(ctx context.Context, record *models.PlaytimeRecord) error {
	if record == nil {
		return fmt.Errorf("record is nil")
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO data (date, username, appid, total_time, daily_time, fortnight_time)
		VALUES (?, ?, ?, ?, ?, ?)
	`, record.Date, record.Username, record.AppID, record.TotalTime, record.DailyTime, record.FortnightTime)
	metrics.RecordDBQuery("insert", "data", time.Since(start), err)

	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: data (%s, %s, %d)", ErrDuplicateKey, record.Date, record.Username, record.AppID)
		}
		return fmt.Errorf("failed to insert record for %s/%d: %w", record.Username, record.AppID, err)
	}
	return nil
}

// ListUsers returns every username with at least one record, sorted.
func (db *DB) ListUsers(ctx context.Context) ([]string, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `SELECT DISTINCT username FROM data ORDER BY username`)
	metrics.RecordDBQuery("select", "data", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer closeWithLog(rows, "rows")

	users := []string{}
	for rows.Next() {
		var username string
		if err := rows.Scan(&username); err != nil {
			return nil, fmt.Errorf("failed to scan username: %w", err)
		}
		users = append(users, username)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}
