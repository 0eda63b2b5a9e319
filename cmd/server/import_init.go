// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/tomtom215/steamtime/internal/config"
	"github.com/tomtom215/steamtime/internal/events"
	backupimport "github.com/tomtom215/steamtime/internal/import"
	"github.com/tomtom215/steamtime/internal/logging"
	intsync "github.com/tomtom215/steamtime/internal/sync"
)

// ImportComponents holds the backup importer and its progress store.
type ImportComponents struct {
	importer *backupimport.Importer
	progress backupimport.ProgressTracker
}

// InitImport builds the importer. Progress is kept in BadgerDB when
// import.progress_path is set, in memory otherwise.
func InitImport(cfg *config.Config, store intsync.RecordStore, reporter intsync.Reporter, lock *intsync.RunLock, publisher events.Publisher) (*ImportComponents, error) {
	var progress backupimport.ProgressTracker
	if cfg.Import.ProgressPath != "" {
		badgerProgress, err := backupimport.OpenBadgerProgress(cfg.Import.ProgressPath)
		if err != nil {
			return nil, fmt.Errorf("open import progress store: %w", err)
		}
		progress = badgerProgress
		logging.Info().Str("path", cfg.Import.ProgressPath).Msg("Import progress tracker created (BadgerDB)")
	} else {
		progress = backupimport.NewInMemoryProgress()
		logging.Info().Msg("Import progress tracker created (in-memory)")
	}

	importer := backupimport.NewImporter(cfg, store, progress, reporter, lock)
	importer.SetEventPublisher(publisher)

	logging.Info().
		Str("backup_dir", cfg.Import.BackupDir).
		Bool("resume", cfg.Import.Resume).
		Bool("on_startup", cfg.Import.OnStartup).
		Msg("Importer created")

	return &ImportComponents{importer: importer, progress: progress}, nil
}

// Importer returns the backup importer.
func (c *ImportComponents) Importer() *backupimport.Importer {
	return c.importer
}

// Close releases the progress store.
func (c *ImportComponents) Close() error {
	if closer, ok := c.progress.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// RunImportOnce imports every configured user's backup and returns. With
// fresh set, saved progress is discarded first so every file starts at
// line one.
func RunImportOnce(ctx context.Context, cfg *config.Config, importer *backupimport.Importer, fresh bool) error {
	if fresh {
		for _, username := range cfg.Steam.Usernames() {
			if err := importer.ResetProgress(ctx, username); err != nil {
				return fmt.Errorf("reset progress for %s: %w", username, err)
			}
		}
		logging.Info().Int("users", len(cfg.Steam.Users)).Msg("Import progress reset")
	}

	stats, err := importer.ImportAll(ctx)
	for _, summary := range backupimport.Summaries(stats) {
		logging.Info().
			Str("user", summary.Username).
			Int64("lines_read", summary.LinesRead).
			Int64("lines_skipped", summary.LinesSkipped).
			Int64("records_written", summary.RecordsWritten).
			Bool("resumed", summary.Resumed).
			Float64("duration_seconds", summary.DurationSecs).
			Msg("Backup imported")
	}
	return err
}
