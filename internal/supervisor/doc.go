// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

/*
Package supervisor runs the tracker's long-running services under a suture v4
supervisor tree.

# Layout

	RootSupervisor ("steamtime")
	├── CollectionSupervisor ("collection-layer")
	│   ├── SyncService          (periodic Steam collection)
	│   └── ImportService        (if import.on_startup)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

The API layer keeps serving stored history while the collection layer is
backing off after repeated failures.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddCollectionService(services.NewSyncService(syncManager))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    logging.Error().Err(err).Msg("Supervisor stopped")
	}

# Restart Semantics

Services follow suture's contract. Returning an error restarts the service
after backoff. Returning suture.ErrDoNotRestart retires it, which the
one-shot ImportService does once its import finishes.

The failure counter decays over FailureDecay seconds; crossing
FailureThreshold delays the next restart by FailureBackoff.

# Not Supervised

DuckDB is an embedded library opened once in main and closed on exit. The
Steam client has no lifecycle of its own; its circuit breaker isolates API
failures inside the sync manager.

# Shutdown

On context cancellation each service gets ShutdownTimeout to return. Services
that miss it are listed by UnstoppedServiceReport, which main logs on exit.
*/
package supervisor
