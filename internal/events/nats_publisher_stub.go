// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

//go:build !nats

package events

import (
	"context"
	"errors"

	"github.com/tomtom215/steamtime/internal/config"
)

// ErrNATSUnavailable is returned when the binary was built without NATS.
var ErrNATSUnavailable = errors.New("NATS publisher not available: build with -tags=nats")

// NATSPublisher is a stub when NATS dependencies are not compiled in.
type NATSPublisher struct{}

// NewNATSPublisher returns ErrNATSUnavailable.
func NewNATSPublisher(cfg *config.EventsConfig) (*NATSPublisher, error) {
	return nil, ErrNATSUnavailable
}

// PublishUserSynced returns ErrNATSUnavailable.
func (p *NATSPublisher) PublishUserSynced(ctx context.Context, event *UserSyncedEvent) error {
	return ErrNATSUnavailable
}

// Close is a no-op.
func (p *NATSPublisher) Close() error {
	return nil
}
