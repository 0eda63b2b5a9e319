// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

package backupimport

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// createTestBadgerDB creates a temporary BadgerDB for testing.
func createTestBadgerDB(t *testing.T) *badger.DB {
	t.Helper()

	opts := badger.DefaultOptions(filepath.Join(t.TempDir(), "badger"))
	opts.Logger = nil // Suppress badger logs during tests

	db, err := badger.Open(opts)
	if err != nil {
		t.Fatalf("Failed to open badger: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// testTrackers returns every ProgressTracker implementation.
func testTrackers(t *testing.T) map[string]ProgressTracker {
	return map[string]ProgressTracker{
		"badger":    NewBadgerProgress(createTestBadgerDB(t)),
		"in-memory": NewInMemoryProgress(),
	}
}

func TestProgressTracker_SaveLoadClear(t *testing.T) {
	for name, tracker := range testTrackers(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			got, err := tracker.Load(ctx, "alice")
			if err != nil || got != nil {
				t.Fatalf("Load() on empty tracker = %+v, %v; want nil, nil", got, err)
			}

			start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
			stats := &ImportStats{
				Username:       "alice",
				LinesRead:      12,
				LinesSkipped:   2,
				RecordsWritten: 30,
				LastLine:       12,
				StartTime:      start,
			}
			if err := tracker.Save(ctx, stats); err != nil {
				t.Fatalf("Save() error = %v", err)
			}

			// Mutating the saved stats must not change the stored copy.
			stats.LastLine = 99

			got, err = tracker.Load(ctx, "alice")
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if got == nil || got.LastLine != 12 || got.RecordsWritten != 30 || !got.StartTime.Equal(start) {
				t.Errorf("Load() = %+v", got)
			}

			if other, _ := tracker.Load(ctx, "bob"); other != nil {
				t.Errorf("progress leaked across users: %+v", other)
			}

			if err := tracker.Clear(ctx, "alice"); err != nil {
				t.Fatalf("Clear() error = %v", err)
			}
			if got, _ := tracker.Load(ctx, "alice"); got != nil {
				t.Errorf("Load() after Clear = %+v, want nil", got)
			}
			if err := tracker.Clear(ctx, "alice"); err != nil {
				t.Errorf("Clear() on missing key error = %v", err)
			}
		})
	}
}

func TestOpenBadgerProgress_PersistsAcrossReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "progress")
	ctx := context.Background()

	first, err := OpenBadgerProgress(dir)
	if err != nil {
		t.Fatalf("OpenBadgerProgress() error = %v", err)
	}
	if err := first.Save(ctx, &ImportStats{Username: "alice", LastLine: 5}); err != nil {
		t.Fatal(err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	second, err := OpenBadgerProgress(dir)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer second.Close()

	got, err := second.Load(ctx, "alice")
	if err != nil || got == nil || got.LastLine != 5 {
		t.Errorf("Load() after reopen = %+v, %v", got, err)
	}
}

func TestBadgerProgress_CloseNotOwned(t *testing.T) {
	db := createTestBadgerDB(t)
	tracker := NewBadgerProgress(db)

	if err := tracker.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if db.IsClosed() {
		t.Error("Close() must not close a caller-owned database")
	}
}

func TestImportStats_ToSummary(t *testing.T) {
	idle := (&ImportStats{}).ToSummary(false)
	if idle.Status != "idle" {
		t.Errorf("Status = %q, want idle", idle.Status)
	}

	start := time.Now().Add(-10 * time.Second)
	running := (&ImportStats{Username: "alice", LinesRead: 100, StartTime: start}).ToSummary(true)
	if running.Status != "running" || running.Username != "alice" {
		t.Errorf("unexpected summary %+v", running)
	}
	if running.LinesPerSec < 5 || running.LinesPerSec > 11 {
		t.Errorf("LinesPerSec = %v, want ~10", running.LinesPerSec)
	}

	failed := (&ImportStats{StartTime: start, EndTime: start.Add(time.Second), Errors: 1}).ToSummary(false)
	if failed.Status != "failed" {
		t.Errorf("Status = %q, want failed", failed.Status)
	}

	done := &ImportStats{Username: "bob", StartTime: start, EndTime: start.Add(2 * time.Second), LinesRead: 4, RecordsWritten: 8, Resumed: true}
	if got := done.ToSummary(false).Status; got != "completed" {
		t.Errorf("Status = %q, want completed", got)
	}
	summary := done.Summary()
	if summary.Username != "bob" || summary.LinesRead != 4 || summary.RecordsWritten != 8 || !summary.Resumed || summary.DurationSecs != 2 {
		t.Errorf("Summary() = %+v", summary)
	}
}
