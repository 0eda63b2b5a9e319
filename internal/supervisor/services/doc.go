// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

/*
Package services adapts tracker components to suture.Service.

  - SyncService: Start/Stop of the sync manager mapped onto Serve
  - HTTPServerService: ListenAndServe with a bounded graceful Shutdown
  - ImportService: a one-shot backup import that retires itself with
    suture.ErrDoNotRestart

Every wrapper implements fmt.Stringer so suture's events name the service.
*/
package services
