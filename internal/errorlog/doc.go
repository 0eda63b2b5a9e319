// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

// Package errorlog records failures from sync and import runs in the errors
// table so they can be inspected after the fact through the API.
//
// # Overview
//
// A Reporter is created once at startup and passed to every collaborator that
// needs to report a failure. Report is fire-and-forget: it never returns an
// error and recovers from panics in the store, so a broken error log never
// interrupts a sync run.
//
// Each report becomes an ErrorEvent with a fresh UUID, the current time, a
// severity, the reporting component, the error kind, the error text, the
// affected user and optional diagnostic data such as the raw Steam response.
//
// # Storage
//
//   - DuckDBStore: writes to the errors table through the database package
//   - MemoryStore: bounded in-memory store for tests and development
//
// # Usage
//
//	reporter := errorlog.NewReporter(errorlog.NewDuckDBStore(db))
//	reporter.Report(ctx, errorlog.Report{
//	    Severity: errorlog.SeverityCritical,
//	    Source:   "sync",
//	    Kind:     "permission-denied",
//	    Err:      err,
//	    UserID:   "alice",
//	})
package errorlog
