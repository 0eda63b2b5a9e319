// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/steamtime/internal/config"
	"github.com/tomtom215/steamtime/internal/database"
	"github.com/tomtom215/steamtime/internal/errorlog"
	"github.com/tomtom215/steamtime/internal/events"
	"github.com/tomtom215/steamtime/internal/logging"
	intsync "github.com/tomtom215/steamtime/internal/sync"
)

const steamPingTimeout = 10 * time.Second

// app holds the components shared by every command.
type app struct {
	cfg         *config.Config
	db          *database.DB
	reporter    *errorlog.Reporter
	steam       *intsync.CircuitBreakerClient
	syncManager *intsync.Manager
	imports     *ImportComponents
	publisher   events.Publisher
}

// newApp loads configuration and builds every component in dependency
// order. The caller must Close the result.
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Int("users", len(cfg.Steam.Users)).
		Str("db_path", cfg.Database.Path).
		Dur("sync_interval", cfg.Sync.Interval).
		Str("timezone", cfg.Sync.Location().String()).
		Msg("Configuration loaded")

	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}
	a := &app{cfg: cfg, db: db}

	a.reporter = errorlog.NewReporter(errorlog.NewDuckDBStore(db))
	a.steam = intsync.NewCircuitBreakerClient(intsync.NewSteamClient(&cfg.Steam))
	a.publisher = InitEvents(&cfg.Events)

	lock := intsync.NewRunLock()
	a.syncManager = intsync.NewManager(db, a.steam, a.reporter, cfg, lock)
	a.syncManager.SetEventPublisher(a.publisher)

	a.imports, err = InitImport(cfg, db, a.reporter, lock, a.publisher)
	if err != nil {
		a.Close()
		return nil, err
	}

	return a, nil
}

// checkSteam logs whether the Steam Web API answers. Failure is not fatal;
// the breaker and the sync retries handle an unreachable API.
func (a *app) checkSteam(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, steamPingTimeout)
	defer cancel()

	if err := a.steam.Ping(pingCtx); err != nil {
		logging.Warn().Err(err).Msg("Steam Web API not reachable (will retry on each sync)")
		return
	}
	logging.Info().Msg("Connected to Steam Web API")
}

// Close releases resources in reverse creation order.
func (a *app) Close() {
	if a.imports != nil {
		if err := a.imports.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing import progress store")
		}
	}
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event publisher")
		}
	}
	if err := a.db.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing database")
	}
}
