// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

// Package logging provides the zerolog-based structured logger used across Steamtime.
//
// A single global logger is configured once from main via Init and accessed
// through the level helpers:
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Str("username", "alice").Int("records", 4).Msg("User synced")
//	logging.Error().Err(err).Msg("Sync failed")
//
// Request-scoped loggers carry request and correlation IDs:
//
//	logging.Ctx(ctx).Warn().Msg("History lookup returned no rows")
//
// The suture supervisor logs through log/slog; NewSlogLogger bridges those
// records into the same zerolog output.
//
// Always terminate an event with Msg or Send, otherwise nothing is written.
package logging
