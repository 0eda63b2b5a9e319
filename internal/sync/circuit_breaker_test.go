// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
)

// tripAfterThree opens the breaker on the third consecutive failure.
func tripAfterThree() gobreaker.Settings {
	return gobreaker.Settings{
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	}
}

func TestCircuitBreaker_InitialStateClosed(t *testing.T) {
	cbc := NewCircuitBreakerClient(newFakeSource())
	if got := cbc.State(); got != "closed" {
		t.Errorf("State() = %q, want closed", got)
	}
}

func TestCircuitBreaker_OpensAfterServerFailures(t *testing.T) {
	source := newFakeSource()
	for i := 0; i < 3; i++ {
		source.failNext("1", &FetchError{Kind: KindUnknown, StatusCode: 503, Err: errors.New("unavailable")})
	}
	cbc := newCircuitBreakerClient(source, "test-server-failures", tripAfterThree())

	for i := 0; i < 3; i++ {
		if _, err := cbc.GetRecentlyPlayedGames(context.Background(), "1"); err == nil {
			t.Fatalf("call %d: expected error", i)
		}
	}

	if got := cbc.State(); got != "open" {
		t.Fatalf("State() = %q, want open", got)
	}

	// While open the source is not called and the rejection classifies as
	// unknown so the run reports it as a Steam outage.
	_, err := cbc.GetRecentlyPlayedGames(context.Background(), "1")
	if Classify(err) != KindUnknown {
		t.Errorf("Classify() = %v, want unknown", Classify(err))
	}
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("error = %v, want ErrOpenState in chain", err)
	}
	if got := source.callCount("1"); got != 3 {
		t.Errorf("source calls = %d, want 3", got)
	}
}

func TestCircuitBreaker_ClientErrorsDoNotTrip(t *testing.T) {
	source := newFakeSource()
	kinds := []ErrorKind{KindInvalidInput, KindPermissionDenied, KindLookupFailure, KindSchemaMismatch, KindInvalidInput}
	for _, k := range kinds {
		source.failNext("1", &FetchError{Kind: k, Err: errors.New("client error")})
	}
	cbc := newCircuitBreakerClient(source, "test-client-errors", tripAfterThree())

	for i := range kinds {
		_, err := cbc.GetRecentlyPlayedGames(context.Background(), "1")
		if Classify(err) != kinds[i] {
			t.Errorf("call %d: Classify() = %v, want %v", i, Classify(err), kinds[i])
		}
	}

	if got := cbc.State(); got != "closed" {
		t.Errorf("State() = %q, want closed after client errors", got)
	}
}

func TestCircuitBreaker_CancellationDoesNotTrip(t *testing.T) {
	source := newFakeSource()
	for i := 0; i < 4; i++ {
		source.failNext("1", context.Canceled)
	}
	cbc := newCircuitBreakerClient(source, "test-cancel", tripAfterThree())

	for i := 0; i < 4; i++ {
		_, _ = cbc.GetRecentlyPlayedGames(context.Background(), "1")
	}
	if got := cbc.State(); got != "closed" {
		t.Errorf("State() = %q, want closed", got)
	}
}

func TestCircuitBreaker_SuccessPassesSnapshot(t *testing.T) {
	source := newFakeSource()
	source.snapshots["1"] = snapshotOf(feedGame(10, "Portal", 100, 20))
	cbc := newCircuitBreakerClient(source, "test-success", tripAfterThree())

	snapshot, err := cbc.GetRecentlyPlayedGames(context.Background(), "1")
	if err != nil {
		t.Fatalf("error = %v", err)
	}
	if len(snapshot.Games) != 1 || *snapshot.Games[0].AppID != 10 {
		t.Errorf("unexpected snapshot %+v", snapshot)
	}
}

func TestCircuitBreaker_Ping(t *testing.T) {
	source := newFakeSource()
	cbc := newCircuitBreakerClient(source, "test-ping", tripAfterThree())

	if err := cbc.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}

	source.pingErr = errors.New("down")
	for i := 0; i < 3; i++ {
		_ = cbc.Ping(context.Background())
	}
	if err := cbc.Ping(context.Background()); !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("Ping() error = %v, want ErrOpenState", err)
	}
}

func TestStateToString(t *testing.T) {
	tests := []struct {
		state gobreaker.State
		str   string
		num   float64
	}{
		{gobreaker.StateClosed, "closed", 0},
		{gobreaker.StateHalfOpen, "half-open", 1},
		{gobreaker.StateOpen, "open", 2},
	}
	for _, tt := range tests {
		if got := stateToString(tt.state); got != tt.str {
			t.Errorf("stateToString(%v) = %q, want %q", tt.state, got, tt.str)
		}
		if got := stateToFloat(tt.state); got != tt.num {
			t.Errorf("stateToFloat(%v) = %v, want %v", tt.state, got, tt.num)
		}
	}
}
