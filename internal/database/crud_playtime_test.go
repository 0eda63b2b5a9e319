// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

package database

import (
	"context"
	"errors"
	"testing"

	"github.com/tomtom215/steamtime/internal/models"
)

func TestGetLastTotalTime(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, found, err := db.GetLastTotalTime(ctx, "alice", 220)
	if err != nil {
		t.Fatalf("GetLastTotalTime() error = %v", err)
	}
	if found {
		t.Fatal("expected no last total for a pair never recorded")
	}

	// Inserted out of order; the latest date wins
	insertTestRecord(t, db, "2024/03/02", "alice", 220, 150, 50, 60)
	insertTestRecord(t, db, "2024/03/01", "alice", 220, 100, 0, 10)
	insertTestRecord(t, db, "2024/03/03", "alice", 440, 999, 0, 0)
	insertTestRecord(t, db, "2024/03/04", "bob", 220, 777, 0, 0)

	total, found, err := db.GetLastTotalTime(ctx, "alice", 220)
	if err != nil {
		t.Fatalf("GetLastTotalTime() error = %v", err)
	}
	if !found {
		t.Fatal("expected last total to be found")
	}
	if total != 150 {
		t.Errorf("total = %v, want 150", total)
	}
}

func TestDaysCollectedForUser(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	days, err := db.DaysCollectedForUser(ctx, "alice")
	if err != nil {
		t.Fatalf("DaysCollectedForUser() error = %v", err)
	}
	if days != 0 {
		t.Errorf("days = %d, want 0", days)
	}

	insertTestRecord(t, db, "2024/03/01", "alice", 1, 1, 0, 0)
	insertTestRecord(t, db, "2024/03/01", "alice", 2, 1, 0, 0)
	insertTestRecord(t, db, "2024/03/02", "alice", 1, 2, 1, 0)
	insertTestRecord(t, db, "2024/03/05", "bob", 1, 2, 1, 0)

	days, err = db.DaysCollectedForUser(ctx, "alice")
	if err != nil {
		t.Fatalf("DaysCollectedForUser() error = %v", err)
	}
	if days != 2 {
		t.Errorf("days = %d, want 2", days)
	}
}

func TestHasRecordsForDate(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	insertTestRecord(t, db, "2024/03/01", "alice", 1, 1, 0, 0)

	tests := []struct {
		username string
		date     string
		want     bool
	}{
		{"alice", "2024/03/01", true},
		{"alice", "2024/03/02", false},
		{"bob", "2024/03/01", false},
	}
	for _, tt := range tests {
		got, err := db.HasRecordsForDate(ctx, tt.username, tt.date)
		if err != nil {
			t.Fatalf("HasRecordsForDate(%s, %s) error = %v", tt.username, tt.date, err)
		}
		if got != tt.want {
			t.Errorf("HasRecordsForDate(%s, %s) = %v, want %v", tt.username, tt.date, got, tt.want)
		}
	}
}

func TestRecordedAppIDs(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	insertTestRecord(t, db, "2024/03/01", "alice", 10, 1, 1, 1)
	insertTestRecord(t, db, "2024/03/01", "alice", 20, 1, 1, 1)
	insertTestRecord(t, db, "2024/03/02", "alice", 30, 1, 1, 1)
	insertTestRecord(t, db, "2024/03/01", "bob", 40, 1, 1, 1)

	ids, err := db.RecordedAppIDs(ctx, "alice", "2024/03/01")
	if err != nil {
		t.Fatalf("RecordedAppIDs() error = %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("ids = %v, want 10 and 20", ids)
	}
	for _, appID := range []int64{10, 20} {
		if _, ok := ids[appID]; !ok {
			t.Errorf("appid %d missing from %v", appID, ids)
		}
	}

	empty, err := db.RecordedAppIDs(ctx, "carol", "2024/03/01")
	if err != nil {
		t.Fatalf("RecordedAppIDs() error = %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("ids = %v, want none", empty)
	}
}

func TestInsertRecord_DuplicateKey(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	record := &models.PlaytimeRecord{
		Date:          "2024/03/01",
		Username:      "alice",
		AppID:         220,
		TotalTime:     100,
		DailyTime:     10,
		FortnightTime: 20,
	}
	if err := db.InsertRecord(ctx, record); err != nil {
		t.Fatalf("first InsertRecord() error = %v", err)
	}

	again := *record
	again.TotalTime = 500
	err := db.InsertRecord(ctx, &again)
	if !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("second InsertRecord() error = %v, want ErrDuplicateKey", err)
	}

	// Append-only: the stored row is untouched
	total, _, err := db.GetLastTotalTime(ctx, "alice", 220)
	if err != nil {
		t.Fatalf("GetLastTotalTime() error = %v", err)
	}
	if total != 100 {
		t.Errorf("total = %v, want original 100", total)
	}
}

func TestInsertRecord_NegativeDailyTime(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	insertTestRecord(t, db, "2024/03/01", "alice", 220, 100, 0, 0)
	insertTestRecord(t, db, "2024/03/02", "alice", 220, 90, -10, 0)

	if err := db.UpsertGame(ctx, 220, strPtr("Half-Life 2")); err != nil {
		t.Fatalf("UpsertGame() error = %v", err)
	}
	history, err := db.FetchHistory(ctx, "alice", "half-life 2")
	if err != nil {
		t.Fatalf("FetchHistory() error = %v", err)
	}
	series := history["alice"]["Half-Life 2"]
	if series == nil || series.Len() != 2 {
		t.Fatalf("series = %+v, want 2 observations", series)
	}
	if series.DailyTime[1] != -10 {
		t.Errorf("DailyTime[1] = %v, want -10", series.DailyTime[1])
	}
}

func TestInsertRecord_Nil(t *testing.T) {
	db := setupTestDB(t)
	if err := db.InsertRecord(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil record")
	}
}

func TestListUsers(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	users, err := db.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if len(users) != 0 {
		t.Errorf("users = %v, want empty", users)
	}

	insertTestRecord(t, db, "2024/03/01", "carol", 1, 1, 0, 0)
	insertTestRecord(t, db, "2024/03/01", "alice", 1, 1, 0, 0)
	insertTestRecord(t, db, "2024/03/02", "alice", 1, 1, 0, 0)

	users, err = db.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if len(users) != 2 || users[0] != "alice" || users[1] != "carol" {
		t.Errorf("users = %v, want [alice carol]", users)
	}
}
