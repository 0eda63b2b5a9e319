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

// FetchGame returns the games row for appID, or ErrGameNotFound.
func (db *DB) FetchGame(ctx context.Context, appID int64) (*models.GameInfo, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	var name, formatted sql.NullString
	err := db.conn.QueryRowContext(ctx,
		`SELECT name, formatted_name FROM games WHERE appid = ?`, appID,
	).Scan(&name, &formatted)

	if errors.Is(err, sql.ErrNoRows) {
		metrics.RecordDBQuery("select", "games", time.Since(start), nil)
		return nil, fmt.Errorf("%w: appid %d", ErrGameNotFound, appID)
	}
	metrics.RecordDBQuery("select", "games", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch game %d: %w", appID, err)
	}

	return &models.GameInfo{
		AppID:         appID,
		Name:          nullStringPtr(name),
		FormattedName: nullStringPtr(formatted),
	}, nil
}

// UpsertGame registers appID. A new row takes name (which may be nil). An
// existing row with a null name is patched when name is supplied; any other
// existing row is left unchanged.
func (db *DB) UpsertGame(ctx context.Context, appID int64, name *string) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var nameArg, formattedArg any
	if name != nil {
		nameArg = *name
		formattedArg = models.FormatGameName(*name)
	}

	start := time.Now()
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO games (appid, name, formatted_name)
		VALUES (?, ?, ?)
		ON CONFLICT DO NOTHING
	`, appID, nameArg, formattedArg)
	metrics.RecordDBQuery("insert", "games", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to insert game %d: %w", appID, err)
	}

	if name == nil {
		return nil
	}

	// Fill in a name that arrived after the game was first seen
	start = time.Now()
	_, err = db.conn.ExecContext(ctx, `
		UPDATE games SET name = ?, formatted_name = ?
		WHERE appid = ? AND name IS NULL
	`, nameArg, formattedArg, appID)
	metrics.RecordDBQuery("update", "games", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to patch name for game %d: %w", appID, err)
	}
	return nil
}

// ListGames returns every registered game ordered by appid.
func (db *DB) ListGames(ctx context.Context) ([]models.GameInfo, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `SELECT appid, name, formatted_name FROM games ORDER BY appid`)
	metrics.RecordDBQuery("select", "games", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer closeWithLog(rows, "rows")

	games := []models.GameInfo{}
	for rows.Next() {
		var game models.GameInfo
		var name, formatted sql.NullString
		if err := rows.Scan(&game.AppID, &name, &formatted); err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		game.Name = nullStringPtr(name)
		game.FormattedName = nullStringPtr(formatted)
		games = append(games, game)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating games: %w", err)
	}
	return games, nil
}

func nullStringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
