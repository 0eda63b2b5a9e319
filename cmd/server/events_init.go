// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

package main

import (
	"github.com/tomtom215/steamtime/internal/config"
	"github.com/tomtom215/steamtime/internal/events"
	"github.com/tomtom215/steamtime/internal/logging"
)

// InitEvents returns the publisher for user-synced notifications. A disabled
// or unreachable NATS server yields a no-op publisher; collection never
// depends on it.
func InitEvents(cfg *config.EventsConfig) events.Publisher {
	if !cfg.Enabled {
		logging.Info().Msg("Event publishing disabled (EVENTS_ENABLED=false)")
		return events.NopPublisher{}
	}

	publisher, err := events.NewNATSPublisher(cfg)
	if err != nil {
		logging.Warn().Err(err).Str("url", cfg.NATSURL).Msg("NATS publisher unavailable, events will not be published")
		return events.NopPublisher{}
	}

	logging.Info().Str("url", cfg.NATSURL).Str("subject", cfg.Subject).Msg("NATS event publisher connected")
	return publisher
}
