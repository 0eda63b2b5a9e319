// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

package errorlog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/steamtime/internal/models"
)

// failingStore returns err from every Save.
type failingStore struct {
	err   error
	saves int
}

func (s *failingStore) Save(ctx context.Context, event *models.ErrorEvent) error {
	s.saves++
	return s.err
}

func (s *failingStore) Recent(ctx context.Context, limit int) ([]models.ErrorEvent, error) {
	return nil, s.err
}

// panickingStore panics on Save.
type panickingStore struct{}

func (panickingStore) Save(ctx context.Context, event *models.ErrorEvent) error {
	panic("store exploded")
}

func (panickingStore) Recent(ctx context.Context, limit int) ([]models.ErrorEvent, error) {
	return nil, nil
}

func fixedIDs(ids ...string) func() string {
	i := 0
	return func() string {
		id := ids[i%len(ids)]
		i++
		return id
	}
}

func TestReporter_Report(t *testing.T) {
	store := NewMemoryStore(10)
	reporter := NewReporter(store)
	reporter.now = func() time.Time { return time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC) }

	snapshot := map[string]any{"total_count": 1}
	reporter.Report(context.Background(), Report{
		Severity:       SeverityCritical,
		Source:         "sync",
		Kind:           "permission-denied",
		Err:            fmt.Errorf("fetch alice: %w", errors.New("403 forbidden")),
		UserID:         "alice",
		AdditionalData: snapshot,
	})

	events, err := reporter.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(events))
	}

	e := events[0]
	if e.ID == "" {
		t.Error("ID should not be empty")
	}
	if e.Severity != "critical" || e.Source != "sync" || e.Error != "permission-denied" {
		t.Errorf("event = %+v", e)
	}
	if e.UserID == nil || *e.UserID != "alice" {
		t.Errorf("UserID = %v, want alice", e.UserID)
	}
	if e.AdditionalData == nil || *e.AdditionalData != `{"total_count":1}` {
		t.Errorf("AdditionalData = %v", e.AdditionalData)
	}
	if !strings.Contains(e.StackTrace, "403 forbidden") || strings.Count(e.StackTrace, "\n") != 1 {
		t.Errorf("StackTrace = %q, want two-layer chain", e.StackTrace)
	}
	if !e.Time.Equal(time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)) {
		t.Errorf("Time = %v", e.Time)
	}
}

func TestReporter_Defaults(t *testing.T) {
	store := NewMemoryStore(10)
	reporter := NewReporter(store)

	reporter.Report(context.Background(), Report{Severity: "bogus"})

	events, _ := store.Recent(context.Background(), 1)
	if len(events) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(events))
	}
	if events[0].Severity != string(SeverityCritical) {
		t.Errorf("Severity = %q, want critical for unknown severity", events[0].Severity)
	}
	if events[0].Source != "unknown" || events[0].Error != "unknown" {
		t.Errorf("event = %+v, want unknown source and kind", events[0])
	}
	if events[0].UserID != nil || events[0].AdditionalData != nil {
		t.Errorf("event = %+v, want nil optional fields", events[0])
	}
}

func TestReporter_RetriesIDCollisionOnce(t *testing.T) {
	store := NewMemoryStore(10)
	reporter := NewReporter(store)
	reporter.newID = fixedIDs("same", "same", "fresh")

	reporter.Report(context.Background(), Report{Severity: SeverityError, Kind: "first"})
	reporter.Report(context.Background(), Report{Severity: SeverityError, Kind: "second"})

	if store.Len() != 2 {
		t.Fatalf("store.Len() = %d, want 2", store.Len())
	}
	events, _ := store.Recent(context.Background(), 2)
	if events[0].ID != "fresh" || events[0].Error != "second" {
		t.Errorf("newest event = %+v, want id fresh", events[0])
	}
}

func TestReporter_DropsAfterSecondCollision(t *testing.T) {
	store := NewMemoryStore(10)
	reporter := NewReporter(store)
	reporter.newID = fixedIDs("same")

	reporter.Report(context.Background(), Report{Severity: SeverityError, Kind: "first"})
	reporter.Report(context.Background(), Report{Severity: SeverityError, Kind: "second"})

	if store.Len() != 1 {
		t.Errorf("store.Len() = %d, want 1", store.Len())
	}
}

func TestReporter_NeverFails(t *testing.T) {
	tests := []struct {
		name  string
		store Store
	}{
		{"nil store", nil},
		{"failing store", &failingStore{err: errors.New("disk full")}},
		{"panicking store", panickingStore{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reporter := NewReporter(tt.store)
			reporter.Report(context.Background(), Report{
				Severity: SeverityWarning,
				Source:   "sync",
				Kind:     "invalid-input",
				Err:      errors.New("bad id"),
			})
		})
	}
}

func TestReporter_FailingStoreNotRetried(t *testing.T) {
	store := &failingStore{err: errors.New("disk full")}
	reporter := NewReporter(store)

	reporter.Report(context.Background(), Report{Severity: SeverityError})

	if store.saves != 1 {
		t.Errorf("saves = %d, want 1", store.saves)
	}
}

func TestReporter_CancelledContextStillSaves(t *testing.T) {
	store := NewMemoryStore(10)
	reporter := NewReporter(store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	reporter.Report(ctx, Report{Severity: SeverityInfo, Kind: "duplicate-key"})

	if store.Len() != 1 {
		t.Errorf("store.Len() = %d, want 1", store.Len())
	}
}

func TestEncodeAdditionalData(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", `{"a":1}`, `{"a":1}`},
		{"bytes", []byte(`{"b":2}`), `{"b":2}`},
		{"struct", struct {
			Count int `json:"count"`
		}{3}, `{"count":3}`},
		{"unencodable", make(chan int), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := encodeAdditionalData(tt.in); got != tt.want {
				t.Errorf("encodeAdditionalData() = %q, want %q", got, tt.want)
			}
		})
	}
}
