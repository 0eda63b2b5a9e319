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

// FetchHistory returns the user's playtime series for every game whose
// normalized name matches gameName, keyed by username and then by stored
// display name. Series are ordered by date.
//
// Several appids may share a normalized name. They are not deduplicated:
// distinct display names get their own series and identical display names
// share one.
func (db *DB) FetchHistory(ctx context.Context, username, gameName string) (models.History, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	formatted := models.FormatGameName(gameName)

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT d.username, g.name, d.date, d.total_time, d.daily_time
		FROM data d
		JOIN games g ON d.appid = g.appid
		WHERE d.username = ? AND g.formatted_name = ?
		ORDER BY d.date ASC, g.name ASC, d.appid ASC
	`, username, formatted)
	metrics.RecordDBQuery("select", "data", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch history for %s/%s: %w", username, gameName, err)
	}
	defer closeWithLog(rows, "rows")

	history := models.History{}
	for rows.Next() {
		var user, name, date string
		var total, daily float64
		if err := rows.Scan(&user, &name, &date, &total, &daily); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		history.Add(user, name, date, total, daily)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history: %w", err)
	}
	return history, nil
}
