// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

package database

import (
	"context"
	"errors"
	"testing"
)

func TestFetchGame_NotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.FetchGame(context.Background(), 12345)
	if !errors.Is(err, ErrGameNotFound) {
		t.Fatalf("FetchGame() error = %v, want ErrGameNotFound", err)
	}
}

func TestUpsertGame(t *testing.T) {
	tests := []struct {
		name          string
		first         *string
		second        *string
		wantName      *string
		wantFormatted *string
	}{
		{
			name:          "insert with name",
			first:         strPtr("Counter-Strike 2"),
			wantName:      strPtr("Counter-Strike 2"),
			wantFormatted: strPtr("counterstrike2"),
		},
		{
			name: "insert without name",
		},
		{
			name:          "late name patches null",
			second:        strPtr("Portal 2"),
			wantName:      strPtr("Portal 2"),
			wantFormatted: strPtr("portal2"),
		},
		{
			name:          "existing name is never replaced",
			first:         strPtr("Dota 2"),
			second:        strPtr("Dota Two"),
			wantName:      strPtr("Dota 2"),
			wantFormatted: strPtr("dota2"),
		},
		{
			name:          "nil name keeps existing name",
			first:         strPtr("Terraria"),
			wantName:      strPtr("Terraria"),
			wantFormatted: strPtr("terraria"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupTestDB(t)
			ctx := context.Background()

			if err := db.UpsertGame(ctx, 570, tt.first); err != nil {
				t.Fatalf("first UpsertGame() error = %v", err)
			}
			if err := db.UpsertGame(ctx, 570, tt.second); err != nil {
				t.Fatalf("second UpsertGame() error = %v", err)
			}

			game, err := db.FetchGame(ctx, 570)
			if err != nil {
				t.Fatalf("FetchGame() error = %v", err)
			}
			checkOptionalString(t, "Name", game.Name, tt.wantName)
			checkOptionalString(t, "FormattedName", game.FormattedName, tt.wantFormatted)
		})
	}
}

func TestUpsertGame_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := db.UpsertGame(ctx, 220, strPtr("Half-Life 2")); err != nil {
			t.Fatalf("UpsertGame() call %d error = %v", i+1, err)
		}
	}

	games, err := db.ListGames(ctx)
	if err != nil {
		t.Fatalf("ListGames() error = %v", err)
	}
	if len(games) != 1 {
		t.Fatalf("len(games) = %d, want 1", len(games))
	}
	checkOptionalString(t, "Name", games[0].Name, strPtr("Half-Life 2"))
	checkOptionalString(t, "FormattedName", games[0].FormattedName, strPtr("halflife2"))
}

func TestListGames(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.UpsertGame(ctx, 730, strPtr("Counter-Strike 2")); err != nil {
		t.Fatalf("UpsertGame() error = %v", err)
	}
	if err := db.UpsertGame(ctx, 220, nil); err != nil {
		t.Fatalf("UpsertGame() error = %v", err)
	}

	games, err := db.ListGames(ctx)
	if err != nil {
		t.Fatalf("ListGames() error = %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("len(games) = %d, want 2", len(games))
	}
	if games[0].AppID != 220 || games[0].Name != nil {
		t.Errorf("games[0] = %+v, want appid 220 with nil name", games[0])
	}
	if games[1].AppID != 730 {
		t.Errorf("games[1].AppID = %d, want 730", games[1].AppID)
	}
}

func checkOptionalString(t *testing.T, field string, got, want *string) {
	t.Helper()
	switch {
	case got == nil && want == nil:
	case got == nil || want == nil:
		t.Errorf("%s = %v, want %v", field, got, want)
	case *got != *want:
		t.Errorf("%s = %q, want %q", field, *got, *want)
	}
}
