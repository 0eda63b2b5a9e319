// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

// Package sync collects recently played games from the Steam Web API and
// reconciles each snapshot into daily playtime records.
//
// # Components
//
//   - SteamClient: HTTP client for IPlayerService/GetRecentlyPlayedGames with
//     a client-side token bucket and HTTP 429 backoff
//   - CircuitBreakerClient: wraps SteamClient with sony/gobreaker so a Steam
//     outage fails fast instead of stalling every user
//   - Reconciler: turns one snapshot into one record per game for one date
//   - Manager: runs the collection for every configured user on a schedule
//   - RunLock: ensures at most one collection or import runs at a time
//
// # Reconciliation
//
// For each game in a snapshot the game is registered, the last recorded
// cumulative total is looked up by appid and the daily time is derived:
//
//   - a previous total exists: daily = playtime_forever - previous total,
//     including negative values when Steam reports a lower total
//   - no previous total, playtime_forever == playtime_2weeks and the user has
//     never been collected: daily = playtime_2weeks
//   - otherwise: daily = 0
//
// # Error Handling
//
// A failure for one user never stops the run for the others. Every failure is
// classified into an ErrorKind, which determines the severity it is reported
// with:
//
//	invalid-input      warning   (HTTP 400)
//	permission-denied  critical  (HTTP 403)
//	lookup-failure     critical  (HTTP 404)
//	schema-mismatch    error     (missing response or game field)
//	duplicate-key      info      (record already collected)
//	parse-failure      error     (unreadable backup line)
//	unknown            critical
//
// A duplicate key on insert is retried once and then fails the user's run.
package sync
