// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

/*
manager.go - Collection Manager Lifecycle and Orchestration

Lifecycle Methods:
  - NewManager(): wire the store, feed source, reporter and configuration
  - Start(): run once on startup (if configured) and then on every interval
  - Stop(): cancel the loop and wait for an in-flight run to finish
  - RunOnce(): one run, waiting for the run lock
  - TriggerSync(): one manual run, failing fast with ErrSyncInProgress
  - LastSyncTime(): completion time of the last run

Run Semantics:
  - Users are processed sequentially in configuration order
  - A user fully collected for today's date is skipped, so hourly ticks
    produce one record set per day
  - A user with a partly recorded date (an earlier run failed midway) is
    fetched again and only the missing games are written
  - A failure for one user is classified, reported and counted; the run
    continues with the next user
*/

//nolint:staticcheck // File documentation, not package doc
package sync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/steamtime/internal/config"
	"github.com/tomtom215/steamtime/internal/errorlog"
	"github.com/tomtom215/steamtime/internal/events"
	"github.com/tomtom215/steamtime/internal/logging"
	"github.com/tomtom215/steamtime/internal/metrics"
	"github.com/tomtom215/steamtime/internal/models"
)

// ManagerStore is the persistence needed by a collection run.
// Implemented by *database.DB.
type ManagerStore interface {
	RecordStore
	HasRecordsForDate(ctx context.Context, username, date string) (bool, error)
}

// Reporter receives classified failures. Implemented by *errorlog.Reporter.
type Reporter interface {
	Report(ctx context.Context, report errorlog.Report)
}

// userOutcome is the result of one user within a run.
type userOutcome int

const (
	outcomeSynced userOutcome = iota
	outcomeSkipped
	outcomeFailed
)

// Manager orchestrates scheduled collection for every configured user.
type Manager struct {
	store      ManagerStore
	source     FeedSource
	reconciler *Reconciler
	reporter   Reporter
	publisher  events.Publisher
	users      []config.UserConfig
	cfg        config.SyncConfig
	location   *time.Location
	lock       *RunLock
	now        func() time.Time

	mu              sync.RWMutex
	lastSync        time.Time
	lastSummary     *models.SyncSummary
	running         bool
	cancel          context.CancelFunc
	wg              sync.WaitGroup
	onSyncCompleted func(summary *models.SyncSummary)

	// completed maps a username to the last date fully collected by this
	// manager; those users are skipped without a fetch.
	completedMu sync.Mutex
	completed   map[string]string
}

// NewManager creates a manager. lock is shared with the backup importer; a
// nil lock gets a private one. A nil reporter only logs failures.
func NewManager(store ManagerStore, source FeedSource, reporter Reporter, cfg *config.Config, lock *RunLock) *Manager {
	if lock == nil {
		lock = NewRunLock()
	}
	if reporter == nil {
		reporter = errorlog.NewReporter(nil)
	}

	m := &Manager{
		store:      store,
		source:     source,
		reconciler: NewReconciler(store),
		reporter:   reporter,
		publisher:  events.NopPublisher{},
		users:      cfg.Steam.Users,
		cfg:        cfg.Sync,
		location:   cfg.Sync.Location(),
		lock:       lock,
		now:        time.Now,
		completed:  make(map[string]string),
	}

	logging.Info().
		Int("users", len(m.users)).
		Dur("interval", m.cfg.Interval).
		Bool("run_on_startup", m.cfg.RunOnStartup).
		Str("timezone", m.location.String()).
		Msg("Sync manager config loaded")

	return m
}

// SetEventPublisher sets the publisher notified after each synced user.
func (m *Manager) SetEventPublisher(p events.Publisher) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p == nil {
		p = events.NopPublisher{}
	}
	m.publisher = p
}

// SetOnSyncCompleted sets a callback invoked after every completed run.
func (m *Manager) SetOnSyncCompleted(callback func(summary *models.SyncSummary)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onSyncCompleted = callback
}

// RunLock returns the lock serializing runs.
func (m *Manager) RunLock() *RunLock {
	return m.lock
}

// Start begins the periodic collection.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return fmt.Errorf("sync manager is already running")
	}

	logging.Info().Msg("Starting sync manager...")

	loopCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.mu.Unlock()

	m.wg.Add(1)
	go m.syncLoop(loopCtx)

	return nil
}

// Stop cancels the loop and waits for an in-flight run to return.
func (m *Manager) Stop() error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return fmt.Errorf("sync manager is not running")
	}
	m.running = false
	cancel := m.cancel
	m.mu.Unlock()

	logging.Info().Msg("Stopping sync manager...")

	cancel()
	m.wg.Wait()
	logging.Info().Msg("Sync manager stopped")

	return nil
}

// Running reports whether the periodic loop is active.
func (m *Manager) Running() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

// LastSyncTime returns the completion time of the last run.
func (m *Manager) LastSyncTime() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastSync
}

// LastSummary returns the summary of the last completed run, or nil.
func (m *Manager) LastSummary() *models.SyncSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastSummary
}

// TriggerSync runs a collection now. It returns ErrSyncInProgress when a run
// or import holds the run lock.
func (m *Manager) TriggerSync(ctx context.Context) (*models.SyncSummary, error) {
	if !m.lock.TryAcquire() {
		return nil, ErrSyncInProgress
	}
	defer m.lock.Release()

	return m.runSync(ctx), nil
}

// RunOnce waits for the run lock and then runs a collection.
func (m *Manager) RunOnce(ctx context.Context) (*models.SyncSummary, error) {
	if err := m.lock.Acquire(ctx); err != nil {
		return nil, err
	}
	defer m.lock.Release()

	return m.runSync(ctx), nil
}

func (m *Manager) syncLoop(ctx context.Context) {
	defer m.wg.Done()

	if m.cfg.RunOnStartup {
		m.runScheduled(ctx)
	}

	interval := m.cfg.Interval
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.runScheduled(ctx)
		}
	}
}

func (m *Manager) runScheduled(ctx context.Context) {
	if _, err := m.RunOnce(ctx); err != nil && ctx.Err() == nil {
		logging.Warn().Err(err).Msg("Scheduled sync did not run")
	}
}

// runSync collects every configured user. The caller holds the run lock.
func (m *Manager) runSync(ctx context.Context) *models.SyncSummary {
	start := time.Now()
	runDate := m.now()
	runID := uuid.NewString()
	ctx = logging.ContextWithRunID(ctx, runID)
	logger := logging.Ctx(ctx)

	summary := &models.SyncSummary{
		RunID: runID,
		Date:  models.FormatDate(runDate.In(m.location)),
		Users: len(m.users),
	}

	logger.Info().Str("date", summary.Date).Int("users", summary.Users).Msg("Starting sync run")

	for _, user := range m.users {
		if ctx.Err() != nil {
			logger.Warn().Msg("Sync run cancelled")
			break
		}

		result, outcome := m.syncUser(ctx, runID, summary.Date, user)
		summary.Records += result.Records
		switch outcome {
		case outcomeSynced:
			summary.Synced++
		case outcomeSkipped:
			summary.Skipped++
		case outcomeFailed:
			summary.Failed++
		}
	}

	summary.Duration = time.Since(start)
	metrics.RecordSyncRun(summary.Duration, summary.Synced, summary.Skipped, summary.Failed, summary.Records)

	m.mu.Lock()
	m.lastSync = m.now()
	m.lastSummary = summary
	callback := m.onSyncCompleted
	m.mu.Unlock()

	logger.Info().
		Int("synced", summary.Synced).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Int("records", summary.Records).
		Dur("duration", summary.Duration).
		Msg("Sync run completed")

	if callback != nil {
		callback(summary)
	}

	return summary
}

// syncUser fetches and reconciles one user. Failures are reported here and
// never returned.
func (m *Manager) syncUser(ctx context.Context, runID, date string, user config.UserConfig) (Result, userOutcome) {
	logger := logging.Ctx(ctx).With().Str("user", user.Username).Logger()

	if m.isCompleted(user.Username, date) {
		logger.Debug().Str("date", date).Msg("User already collected for date")
		return Result{}, outcomeSkipped
	}

	partial, err := m.store.HasRecordsForDate(ctx, user.Username, date)
	if err != nil {
		m.reportFailure(ctx, user, "sync", err, nil)
		return Result{}, outcomeFailed
	}

	snapshot, err := m.fetchWithRetry(ctx, user)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, outcomeSkipped
		}
		metrics.RecordFetchError(Classify(err).String())
		m.reportFailure(ctx, user, "steam", err, snapshot)
		return Result{}, outcomeFailed
	}

	var result Result
	if partial {
		result, err = m.reconciler.ReconcileMissing(ctx, date, user.Username, snapshot)
	} else {
		result, err = m.reconciler.ReconcileSnapshot(ctx, date, user.Username, snapshot)
	}
	if err != nil {
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			return result, outcomeSkipped
		}
		m.reportFailure(ctx, user, "sync", err, snapshot)
		return result, outcomeFailed
	}
	if result.Skipped {
		logger.Debug().Msg("No games played in the last two weeks")
		return result, outcomeSkipped
	}

	m.markCompleted(user.Username, date)
	if result.Complete() {
		logger.Debug().Str("date", date).Msg("User already collected for date")
		return result, outcomeSkipped
	}

	logger.Info().
		Int("records", result.Records).
		Int("already_recorded", result.AlreadyRecorded).
		Int("negative_deltas", result.NegativeDeltas).
		Msg("User synced")
	m.publishSynced(ctx, runID, "sync", date, user.Username, result)
	return result, outcomeSynced
}

func (m *Manager) isCompleted(username, date string) bool {
	m.completedMu.Lock()
	defer m.completedMu.Unlock()
	return m.completed[username] == date
}

func (m *Manager) markCompleted(username, date string) {
	m.completedMu.Lock()
	defer m.completedMu.Unlock()
	m.completed[username] = date
}

// fetchWithRetry retries transient fetch failures with exponential backoff.
// Classified client errors are returned immediately.
func (m *Manager) fetchWithRetry(ctx context.Context, user config.UserConfig) (*models.RecentlyPlayed, error) {
	attempts := m.cfg.RetryAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			delay := backoffDelay(m.cfg.RetryDelay, attempt-1)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		snapshot, err := m.source.GetRecentlyPlayedGames(ctx, user.ID)
		if err == nil {
			return snapshot, nil
		}
		if ctx.Err() != nil || Classify(err) != KindUnknown {
			return snapshot, err
		}

		lastErr = err
		logging.Ctx(ctx).Warn().Err(err).Str("user", user.Username).Int("attempt", attempt+1).Msg("Steam fetch failed, retrying")
	}

	return nil, lastErr
}

// reportFailure classifies err and hands it to the reporter with the snapshot
// attached when one was fetched.
func (m *Manager) reportFailure(ctx context.Context, user config.UserConfig, source string, err error, snapshot *models.RecentlyPlayed) {
	kind := Classify(err)
	report := errorlog.Report{
		Severity: kind.Severity(),
		Source:   source,
		Kind:     kind.String(),
		Err:      err,
		UserID:   user.Username,
	}
	if snapshot != nil {
		report.AdditionalData = snapshot
	}
	m.reporter.Report(ctx, report)
}

func (m *Manager) publishSynced(ctx context.Context, runID, source, date, username string, result Result) {
	m.mu.RLock()
	publisher := m.publisher
	m.mu.RUnlock()

	err := publisher.PublishUserSynced(ctx, &events.UserSyncedEvent{
		EventID:        uuid.NewString(),
		RunID:          runID,
		Source:         source,
		Username:       username,
		Date:           date,
		Games:          result.Games,
		Records:        result.Records,
		NegativeDeltas: result.NegativeDeltas,
		Timestamp:      m.now().UTC(),
	})
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("user", username).Msg("Failed to publish user synced event")
	}
}
