// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

/*
Package models defines the data structures shared by the Steamtime packages.

Storage models:
  - PlaytimeRecord: one row of the data table, keyed by (date, username, appid)
  - GameInfo: one row of the games table, keyed by appid
  - History: the nested username -> game name -> series shape returned by the read path

Feed models:
  - RecentlyPlayedEnvelope / RecentlyPlayed / FeedGame: the
    IPlayerService/GetRecentlyPlayedGames response, shared by the live client
    and the backup importer

API models:
  - APIResponse, Metadata, APIError: the JSON envelope used by /api/v1 routes
  - HealthStatus, SyncSummary, ImportSummary

Name normalization lives here as well (FormatGameName, CleanFeedName) so the
database and the reconciler agree on one definition.
*/
package models
