// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

// Package backupimport ingests the legacy line-oriented playtime backups.
//
// Before the service stored snapshots itself, each day's GetRecentlyPlayedGames
// response was appended to a per-user text file. Importing those files replays
// the days through the same reconciliation as a live collection, so imported
// history and collected history are indistinguishable.
//
// # File Format
//
// One file per user at <backup_dir>/<username>.txt. Each line is:
//
//	DD/MM/YYYY{'response': {'total_count': 1, 'games': [{'appid': 10, ...}]}}
//
// The document after the ten character date prefix is a Python repr rather
// than JSON: keys and most strings use single quotes, but a string that itself
// contains an apostrophe is written in double quotes. RepairQuotes converts a
// line to JSON without touching apostrophes inside such names.
//
// # Failure Handling
//
//   - A line that cannot be parsed aborts that user's file with a ParseError
//   - A reconciliation failure (duplicate key, schema mismatch) also aborts the file
//   - One aborted file never blocks the other users in ImportAll
//   - Every failure is handed to the error reporter
//
// # Progress Tracking
//
// The last processed line of each file is saved through a ProgressTracker
// (BadgerDB or in-memory). With import.resume enabled, a later import skips
// the lines already processed, so re-running a completed import is a no-op.
//
// # Locking
//
// Imports share the collection run lock: an import never overlaps a scheduled
// or manual collection.
package backupimport
