// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

package services

import (
	"context"

	"github.com/thejerf/suture/v4"

	backupimport "github.com/tomtom215/steamtime/internal/import"
	"github.com/tomtom215/steamtime/internal/logging"
)

// BackupImporter imports every configured user's backup file.
type BackupImporter interface {
	ImportAll(ctx context.Context) ([]*backupimport.ImportStats, error)
}

// ImportService runs one backup import when the tree starts.
//
// The import is not repeated: without resume enabled a second pass would hit
// duplicate-key errors on every line already written. Serve therefore returns
// suture.ErrDoNotRestart once the import finishes, whether or not it failed.
// Per-file failures are already in the error log.
type ImportService struct {
	importer BackupImporter
	name     string
}

// NewImportService wraps importer.
func NewImportService(importer BackupImporter) *ImportService {
	return &ImportService{
		importer: importer,
		name:     "startup-import",
	}
}

// Serve implements suture.Service.
func (s *ImportService) Serve(ctx context.Context) error {
	logging.Info().Msg("Starting backup import on startup")

	stats, err := s.importer.ImportAll(ctx)
	if ctxErr := ctx.Err(); ctxErr != nil {
		logging.Info().Int("files", len(stats)).Msg("Startup import interrupted by shutdown")
		return ctxErr
	}

	event := logging.Info()
	if err != nil {
		event = logging.Warn().Err(err)
	}
	event.Interface("imports", backupimport.Summaries(stats)).Msg("Startup import finished")

	return suture.ErrDoNotRestart
}

// String implements fmt.Stringer for suture's log events.
func (s *ImportService) String() string {
	return s.name
}
