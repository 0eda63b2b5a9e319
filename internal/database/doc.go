// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

// Package database provides the DuckDB persistence layer for Steamtime.
//
// # Overview
//
// The package owns three tables:
//
//   - data: one row per (date, username, appid) holding the cumulative
//     playtime, the delta since the previous collection and the trailing
//     two-week figure reported by Steam
//   - games: one row per appid holding the optional display name and its
//     normalized form used for case and punctuation insensitive lookups
//   - errors: the error log written by the errorlog package
//
// The schema is additive only. Tables are created if absent on startup and
// never migrated.
//
// # Lifecycle
//
// A *DB is created once by New, shared by reference with every collaborator
// and closed on shutdown. Close checkpoints the WAL before closing the
// connection.
//
// # Writes
//
// Every write is a single statement. InsertRecord never updates an existing
// row; a second write for the same key returns ErrDuplicateKey. UpsertGame
// only fills in a name that was previously unknown.
//
// # Usage
//
//	db, err := database.New(&cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	history, err := db.FetchHistory(ctx, "alice", "Half-Life 2")
package database
