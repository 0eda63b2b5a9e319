// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

package backupimport

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/steamtime/internal/config"
	"github.com/tomtom215/steamtime/internal/errorlog"
	"github.com/tomtom215/steamtime/internal/events"
	"github.com/tomtom215/steamtime/internal/logging"
	"github.com/tomtom215/steamtime/internal/metrics"
	"github.com/tomtom215/steamtime/internal/models"
	intsync "github.com/tomtom215/steamtime/internal/sync"
)

var (
	// ErrImportInProgress is returned when an import is requested while a
	// collection or another import holds the run lock.
	ErrImportInProgress = errors.New("an import or collection run is already in progress")

	// ErrBackupNotFound is returned when the user has no backup file.
	ErrBackupNotFound = errors.New("backup file not found")

	// ErrUnknownUser is returned for a username that is not configured.
	ErrUnknownUser = errors.New("user is not configured")
)

// maxLineSize bounds a single backup line.
const maxLineSize = 4 * 1024 * 1024

// Importer replays backup files through the reconciler.
type Importer struct {
	cfg        config.ImportConfig
	users      []string
	reconciler *intsync.Reconciler
	progress   ProgressTracker
	reporter   intsync.Reporter
	publisher  events.Publisher
	lock       *intsync.RunLock

	// State
	mu      sync.RWMutex
	running bool
	stats   *ImportStats
}

// NewImporter creates an importer for the configured users. lock is shared
// with the sync manager; a nil progress tracker keeps progress in memory.
func NewImporter(cfg *config.Config, store intsync.RecordStore, progress ProgressTracker, reporter intsync.Reporter, lock *intsync.RunLock) *Importer {
	if progress == nil {
		progress = NewInMemoryProgress()
	}
	if reporter == nil {
		reporter = errorlog.NewReporter(nil)
	}
	if lock == nil {
		lock = intsync.NewRunLock()
	}

	return &Importer{
		cfg:        cfg.Import,
		users:      cfg.Steam.Usernames(),
		reconciler: intsync.NewReconciler(store),
		progress:   progress,
		reporter:   reporter,
		publisher:  events.NopPublisher{},
		lock:       lock,
	}
}

// SetEventPublisher sets the publisher notified after each imported day.
func (i *Importer) SetEventPublisher(p events.Publisher) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if p == nil {
		p = events.NopPublisher{}
	}
	i.publisher = p
}

// ImportUser imports one user's backup file. It fails fast with
// ErrImportInProgress instead of waiting for a running collection.
func (i *Importer) ImportUser(ctx context.Context, username string) (*ImportStats, error) {
	if !i.isConfigured(username) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownUser, username)
	}
	if !i.lock.TryAcquire() {
		return nil, ErrImportInProgress
	}
	defer i.lock.Release()

	i.setRunning(true)
	defer i.setRunning(false)

	return i.importFile(ctx, username)
}

// ImportAll imports every configured user that has a backup file, waiting
// for the run lock first. A failed file is reported and does not stop the
// remaining users; the returned error joins every failure.
func (i *Importer) ImportAll(ctx context.Context) ([]*ImportStats, error) {
	if err := i.lock.Acquire(ctx); err != nil {
		return nil, err
	}
	defer i.lock.Release()

	i.setRunning(true)
	defer i.setRunning(false)

	logging.Info().Int("users", len(i.users)).Str("backup_dir", i.cfg.BackupDir).Msg("Starting backup import")

	var (
		all  []*ImportStats
		errs []error
	)
	for _, username := range i.users {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		stats, err := i.importFile(ctx, username)
		if errors.Is(err, ErrBackupNotFound) {
			logging.Debug().Str("user", username).Msg("No backup file for user")
			continue
		}
		if stats != nil {
			all = append(all, stats)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}

	logging.Info().Int("files", len(all)).Int("failed", len(errs)).Msg("Backup import completed")
	return all, errors.Join(errs...)
}

// ResetProgress forgets the saved progress for username so the next import
// starts at the first line.
func (i *Importer) ResetProgress(ctx context.Context, username string) error {
	return i.progress.Clear(ctx, username)
}

// GetStats returns a copy of the statistics of the current or last file.
func (i *Importer) GetStats() *ImportStats {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if i.stats == nil {
		return &ImportStats{}
	}
	stats := *i.stats
	return &stats
}

// IsRunning returns whether an import is currently in progress.
func (i *Importer) IsRunning() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.running
}

// BackupPath returns the backup file location for username.
func (i *Importer) BackupPath(username string) string {
	return filepath.Join(i.cfg.BackupDir, username+".txt")
}

func (i *Importer) isConfigured(username string) bool {
	for _, u := range i.users {
		if u == username {
			return true
		}
	}
	return false
}

func (i *Importer) setRunning(running bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.running = running
}

// importFile processes one backup file. The caller holds the run lock.
func (i *Importer) importFile(ctx context.Context, username string) (*ImportStats, error) {
	path := i.BackupPath(username)
	file, err := os.Open(path) //nolint:gosec // path is built from a configured username
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrBackupNotFound, path)
		}
		return nil, fmt.Errorf("open backup %s: %w", path, err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			logging.Warn().Err(closeErr).Str("path", path).Msg("Error closing backup file")
		}
	}()

	runID := uuid.NewString()
	ctx = logging.ContextWithRunID(ctx, runID)
	logger := logging.Ctx(ctx).With().Str("user", username).Logger()

	stats := &ImportStats{Username: username, StartTime: time.Now()}
	resumeAfter, resumed := i.resumePoint(ctx, username)
	if resumeAfter > 0 {
		stats.Resumed = true
		logger.Info().Int64("after_line", resumeAfter).Msg("Resuming backup import")
	}
	i.publishStats(stats)

	err = i.processLines(ctx, runID, file, stats, resumeAfter, resumed)

	stats.EndTime = time.Now()
	metrics.ImportDuration.Observe(stats.Duration().Seconds())
	i.saveProgress(ctx, stats)
	i.publishStats(stats)

	if err != nil {
		logger.Error().Err(err).Int64("line", stats.LastLine+1).Msg("Backup import aborted")
		return stats, fmt.Errorf("import %s: %w", username, err)
	}

	logger.Info().
		Int64("lines_read", stats.LinesRead).
		Int64("lines_skipped", stats.LinesSkipped).
		Int64("records_written", stats.RecordsWritten).
		Dur("duration", stats.Duration()).
		Msg("Backup import completed")

	return stats, nil
}

// processLines reconciles each line in order, stopping at the first failure.
// When resumed, the first line after resumeAfter may have been partly written
// by the interrupted import, so only its missing games are written.
func (i *Importer) processLines(ctx context.Context, runID string, file *os.File, stats *ImportStats, resumeAfter int64, resumed bool) error {
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var lineNo int64
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		lineNo++
		stats.LinesRead++

		if lineNo <= resumeAfter {
			stats.LinesSkipped++
			stats.LastLine = lineNo
			metrics.RecordImportLine("resumed")
			continue
		}

		fillMissing := resumed && lineNo == resumeAfter+1
		if err := i.processLine(ctx, runID, lineNo, scanner.Text(), stats, fillMissing); err != nil {
			stats.Errors++
			metrics.RecordImportLine("failed")
			return err
		}

		stats.LastLine = lineNo
		i.saveProgress(ctx, stats)
		i.publishStats(stats)
	}

	if err := scanner.Err(); err != nil {
		parseErr := &ParseError{Line: lineNo + 1, Err: err}
		stats.Errors++
		i.report(ctx, stats.Username, parseErr, nil)
		return parseErr
	}
	return nil
}

func (i *Importer) processLine(ctx context.Context, runID string, lineNo int64, line string, stats *ImportStats, fillMissing bool) error {
	if strings.TrimSpace(line) == "" {
		stats.LinesSkipped++
		metrics.RecordImportLine("empty")
		return nil
	}

	date, snapshot, err := ParseLine(line)
	if err != nil {
		var parseErr *ParseError
		if errors.As(err, &parseErr) {
			parseErr.Line = lineNo
		} else {
			err = fmt.Errorf("backup line %d: %w", lineNo, err)
		}
		i.report(ctx, stats.Username, err, line)
		return err
	}

	reconcile := i.reconciler.ReconcileSnapshot
	if fillMissing {
		reconcile = i.reconciler.ReconcileMissing
	}
	result, err := reconcile(ctx, date, stats.Username, snapshot)
	stats.RecordsWritten += int64(result.Records)
	metrics.SyncRecordsWritten.Add(float64(result.Records))
	if err != nil {
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			return err
		}
		err = fmt.Errorf("backup line %d (%s): %w", lineNo, date, err)
		i.report(ctx, stats.Username, err, snapshot)
		return err
	}

	if result.Skipped {
		stats.LinesSkipped++
		metrics.RecordImportLine("empty")
		return nil
	}

	metrics.RecordImportLine("imported")
	i.publishImported(ctx, runID, date, stats.Username, result)
	return nil
}

// resumePoint returns the last processed line from earlier progress and
// whether any progress was found. It returns 0, false when resuming is
// disabled or nothing was saved.
func (i *Importer) resumePoint(ctx context.Context, username string) (int64, bool) {
	if !i.cfg.Resume {
		return 0, false
	}
	prev, err := i.progress.Load(ctx, username)
	if err != nil {
		logging.Warn().Err(err).Str("user", username).Msg("Failed to load import progress, starting from the first line")
		return 0, false
	}
	if prev == nil {
		return 0, false
	}
	return prev.LastLine, true
}

func (i *Importer) saveProgress(ctx context.Context, stats *ImportStats) {
	if err := i.progress.Save(context.WithoutCancel(ctx), stats); err != nil {
		logging.Warn().Err(err).Str("user", stats.Username).Msg("Failed to save import progress")
	}
}

func (i *Importer) publishStats(stats *ImportStats) {
	snapshot := *stats
	i.mu.Lock()
	i.stats = &snapshot
	i.mu.Unlock()
}

func (i *Importer) report(ctx context.Context, username string, err error, data any) {
	kind := intsync.Classify(err)
	i.reporter.Report(ctx, errorlog.Report{
		Severity:       kind.Severity(),
		Source:         "import",
		Kind:           kind.String(),
		Err:            err,
		UserID:         username,
		AdditionalData: data,
	})
}

func (i *Importer) publishImported(ctx context.Context, runID, date, username string, result intsync.Result) {
	i.mu.RLock()
	publisher := i.publisher
	i.mu.RUnlock()

	err := publisher.PublishUserSynced(ctx, &events.UserSyncedEvent{
		EventID:        uuid.NewString(),
		RunID:          runID,
		Source:         "import",
		Username:       username,
		Date:           date,
		Games:          result.Games,
		Records:        result.Records,
		NegativeDeltas: result.NegativeDeltas,
		Timestamp:      time.Now().UTC(),
	})
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("user", username).Msg("Failed to publish import event")
	}
}

// Summaries converts a batch of stats for the API.
func Summaries(stats []*ImportStats) []models.ImportSummary {
	out := make([]models.ImportSummary, 0, len(stats))
	for _, s := range stats {
		out = append(out, s.Summary())
	}
	return out
}
