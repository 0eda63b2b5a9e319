// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

package database

import (
	"context"
	"reflect"
	"testing"
)

func TestFetchHistory_MatchesFormattedName(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	// Two appids normalize to halflife2; a third game must not match
	if err := db.UpsertGame(ctx, 220, strPtr("Half-Life 2")); err != nil {
		t.Fatal(err)
	}
	if err := db.UpsertGame(ctx, 221, strPtr("HALF LIFE 2")); err != nil {
		t.Fatal(err)
	}
	if err := db.UpsertGame(ctx, 400, strPtr("Portal")); err != nil {
		t.Fatal(err)
	}

	insertTestRecord(t, db, "2024/01/02", "alice", 220, 130, 30, 30)
	insertTestRecord(t, db, "2024/01/01", "alice", 220, 100, 0, 0)
	insertTestRecord(t, db, "2024/01/01", "alice", 221, 5, 5, 5)
	insertTestRecord(t, db, "2024/01/01", "alice", 400, 50, 0, 0)
	insertTestRecord(t, db, "2024/01/01", "bob", 220, 70, 0, 0)

	history, err := db.FetchHistory(ctx, "alice", "Half-Life 2")
	if err != nil {
		t.Fatalf("FetchHistory() error = %v", err)
	}

	if len(history) != 1 {
		t.Fatalf("users = %d, want only alice", len(history))
	}
	games := history["alice"]
	if len(games) != 2 {
		t.Fatalf("games = %d, want 2 display names", len(games))
	}

	hl2 := games["Half-Life 2"]
	if hl2 == nil {
		t.Fatal("missing series for Half-Life 2")
	}
	if !reflect.DeepEqual(hl2.Dates, []string{"2024/01/01", "2024/01/02"}) {
		t.Errorf("Dates = %v, want date order", hl2.Dates)
	}
	if !reflect.DeepEqual(hl2.TotalTime, []float64{100, 130}) {
		t.Errorf("TotalTime = %v", hl2.TotalTime)
	}
	if !reflect.DeepEqual(hl2.DailyTime, []float64{0, 30}) {
		t.Errorf("DailyTime = %v", hl2.DailyTime)
	}

	upper := games["HALF LIFE 2"]
	if upper == nil || upper.Len() != 1 || upper.TotalTime[0] != 5 {
		t.Errorf("HALF LIFE 2 series = %+v, want one observation of 5", upper)
	}
}

func TestFetchHistory_NoMatch(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	// Games without a name cannot be matched by name
	if err := db.UpsertGame(ctx, 999, nil); err != nil {
		t.Fatal(err)
	}
	insertTestRecord(t, db, "2024/01/01", "alice", 999, 10, 0, 0)

	history, err := db.FetchHistory(ctx, "alice", "Unknown Game")
	if err != nil {
		t.Fatalf("FetchHistory() error = %v", err)
	}
	if len(history) != 0 {
		t.Errorf("history = %v, want empty", history)
	}
}
