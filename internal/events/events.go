// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

// Package events publishes notifications about completed collections.
//
// A UserSyncedEvent is emitted after a user's snapshot has been reconciled.
// Publishing is best effort: failures are logged and counted, never returned
// to the collection run.
//
// The NATS JetStream publisher is only compiled with the nats build tag:
//
//	go build -tags nats ./cmd/server
//
// Without the tag NewNATSPublisher returns an error and callers fall back to
// NopPublisher.
package events

import (
	"context"
	"time"

	"github.com/goccy/go-json"
)

// DefaultSubject is used when no subject is configured.
const DefaultSubject = "steamtime.user.synced"

// UserSyncedEvent describes one reconciled snapshot.
type UserSyncedEvent struct {
	EventID        string    `json:"event_id"`
	RunID          string    `json:"run_id"`
	Source         string    `json:"source"` // "sync" or "import"
	Username       string    `json:"username"`
	Date           string    `json:"date"`
	Games          int       `json:"games"`
	Records        int       `json:"records"`
	NegativeDeltas int       `json:"negative_deltas"`
	Timestamp      time.Time `json:"timestamp"`
}

// Marshal encodes the event as JSON.
func (e *UserSyncedEvent) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// UnmarshalUserSynced decodes an event produced by Marshal.
func UnmarshalUserSynced(data []byte) (*UserSyncedEvent, error) {
	var e UserSyncedEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// Publisher delivers events to subscribers.
type Publisher interface {
	PublishUserSynced(ctx context.Context, event *UserSyncedEvent) error
	Close() error
}

// NopPublisher discards every event.
type NopPublisher struct{}

// PublishUserSynced does nothing.
func (NopPublisher) PublishUserSynced(context.Context, *UserSyncedEvent) error { return nil }

// Close does nothing.
func (NopPublisher) Close() error { return nil }
