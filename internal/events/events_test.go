// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

package events

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestUserSyncedEvent_Marshal(t *testing.T) {
	event := &UserSyncedEvent{
		EventID:        "evt-1",
		RunID:          "run-1",
		Source:         "sync",
		Username:       "alice",
		Date:           "2024/05/01",
		Games:          3,
		Records:        3,
		NegativeDeltas: 1,
		Timestamp:      time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}

	data, err := event.Marshal()
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	for _, want := range []string{`"username":"alice"`, `"date":"2024/05/01"`, `"negative_deltas":1`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("encoded event %s missing %s", data, want)
		}
	}

	decoded, err := UnmarshalUserSynced(data)
	if err != nil {
		t.Fatalf("UnmarshalUserSynced() error = %v", err)
	}
	if !decoded.Timestamp.Equal(event.Timestamp) {
		t.Errorf("Timestamp = %v, want %v", decoded.Timestamp, event.Timestamp)
	}
	decoded.Timestamp = event.Timestamp
	if *decoded != *event {
		t.Errorf("decoded = %+v, want %+v", decoded, event)
	}
}

func TestUnmarshalUserSynced_Invalid(t *testing.T) {
	if _, err := UnmarshalUserSynced([]byte("{not json")); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	if err := p.PublishUserSynced(context.Background(), &UserSyncedEvent{}); err != nil {
		t.Errorf("PublishUserSynced() error = %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
