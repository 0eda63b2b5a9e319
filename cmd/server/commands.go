// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/steamtime/internal/api"
	"github.com/tomtom215/steamtime/internal/cache"
	backupimport "github.com/tomtom215/steamtime/internal/import"
	"github.com/tomtom215/steamtime/internal/logging"
	"github.com/tomtom215/steamtime/internal/models"
	"github.com/tomtom215/steamtime/internal/supervisor"
	"github.com/tomtom215/steamtime/internal/supervisor/services"
)

const (
	httpShutdownTimeout = 10 * time.Second
	httpIdleTimeout     = 60 * time.Second
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "steamtime",
		Short: "Steam playtime tracker",
		Long: `Steamtime records the daily playtime of configured Steam accounts and
serves per-game history over HTTP.

Running without a subcommand starts the server: the periodic collector, the
optional startup backup import and the API, all under one supervisor tree.`,
		Version:       api.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the collector and the HTTP API",
			Args:  cobra.NoArgs,
			RunE:  runServe,
		},
		newImportCommand(),
		&cobra.Command{
			Use:   "sync",
			Short: "Collect one snapshot for every user and exit",
			Args:  cobra.NoArgs,
			RunE:  runSyncOnce,
		},
	)

	return root
}

func newImportCommand() *cobra.Command {
	var fresh bool

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import every user's legacy backup file and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return RunImportOnce(ctx, a.cfg, a.imports.Importer(), fresh)
		},
	}
	cmd.Flags().BoolVar(&fresh, "fresh", false, "discard saved progress and start every file at line one")

	return cmd
}

func runSyncOnce(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := a.syncManager.RunOnce(ctx)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return errors.New("one or more users failed to sync, see the error log")
	}
	return nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	logging.Info().Str("version", api.Version).Msg("Starting steamtime with supervisor tree")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.checkSteam(ctx)

	handler := api.NewHandler(a.cfg, a.db, a.syncManager, a.imports.Importer(), a.reporter, a.steam)
	if ttl := a.cfg.Server.HistoryCacheTTL; ttl > 0 {
		historyCache := cache.New[models.History](ttl, a.cfg.Server.HistoryCacheMaxEntries)
		defer historyCache.Close()
		handler.SetHistoryCache(historyCache)
		a.syncManager.SetOnSyncCompleted(handler.OnSyncCompleted)
		logging.Info().Dur("ttl", ttl).Int("max_entries", a.cfg.Server.HistoryCacheMaxEntries).Msg("History cache enabled")
	}
	router := api.NewRouter(handler, api.NewChiMiddlewareConfig(&a.cfg.Security))

	server := &http.Server{
		Addr:              a.cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: a.cfg.Server.Timeout,
		ReadTimeout:       a.cfg.Server.Timeout,
		WriteTimeout:      a.cfg.Server.Timeout,
		IdleTimeout:       httpIdleTimeout,
	}

	if a.cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		return err
	}

	tree.AddCollectionService(services.NewSyncService(a.syncManager))
	if a.cfg.Import.OnStartup {
		tree.AddCollectionService(services.NewImportService(invalidatingImporter{
			BackupImporter: a.imports.Importer(),
			handler:        handler,
		}))
		logging.Info().Str("backup_dir", a.cfg.Import.BackupDir).Msg("Startup import added to supervisor tree")
	}
	tree.AddAPIService(services.NewHTTPServerService(server, httpShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	logging.Info().Msg("Starting supervisor tree...")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}
	logging.Info().Msg("Shutdown signal received, supervisor tree stopped")

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Server stopped gracefully")
	return nil
}

// invalidatingImporter clears cached history once the startup import has
// written its records.
type invalidatingImporter struct {
	services.BackupImporter
	handler *api.Handler
}

func (i invalidatingImporter) ImportAll(ctx context.Context) ([]*backupimport.ImportStats, error) {
	stats, err := i.BackupImporter.ImportAll(ctx)
	i.handler.InvalidateHistory()
	return stats, err
}
