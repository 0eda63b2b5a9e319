// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/steamtime/internal/database"
	"github.com/tomtom215/steamtime/internal/logging"
	"github.com/tomtom215/steamtime/internal/metrics"
	"github.com/tomtom215/steamtime/internal/models"
)

// RecordStore is the persistence needed to reconcile a snapshot.
// Implemented by *database.DB.
type RecordStore interface {
	UpsertGame(ctx context.Context, appID int64, name *string) error
	GetLastTotalTime(ctx context.Context, username string, appID int64) (float64, bool, error)
	DaysCollectedForUser(ctx context.Context, username string) (int, error)
	InsertRecord(ctx context.Context, record *models.PlaytimeRecord) error
	RecordedAppIDs(ctx context.Context, username, date string) (map[int64]struct{}, error)
}

// maxInsertAttempts bounds InsertRecord calls per record: the first attempt
// plus one retry on a duplicate key.
const maxInsertAttempts = 2

// Result summarizes one reconciled snapshot.
type Result struct {
	Games          int
	Records        int
	NegativeDeltas int
	// AlreadyRecorded counts games left untouched by ReconcileMissing
	// because a record for the date existed.
	AlreadyRecorded int
	// Skipped is true when the snapshot reported no games.
	Skipped bool
}

// Complete reports whether every game of a non-empty snapshot was already
// recorded, so nothing was written.
func (r Result) Complete() bool {
	return !r.Skipped && r.Records == 0 && r.AlreadyRecorded > 0
}

// Reconciler converts feed snapshots into playtime records.
type Reconciler struct {
	store RecordStore
}

// NewReconciler creates a reconciler writing to store.
func NewReconciler(store RecordStore) *Reconciler {
	return &Reconciler{store: store}
}

// ReconcileSnapshot writes one record per game in snapshot for username on
// date. An empty snapshot writes nothing and is not an error.
//
// The snapshot is validated before anything is written, so a schema mismatch
// leaves no partial run behind. Records written before a later failure are
// kept; Result reports how many.
func (r *Reconciler) ReconcileSnapshot(ctx context.Context, date, username string, snapshot *models.RecentlyPlayed) (Result, error) {
	return r.reconcile(ctx, date, username, snapshot, false)
}

// ReconcileMissing is ReconcileSnapshot for a date that may already be
// partly recorded: games with a record for date are left alone and only the
// missing ones are written. It completes a run that failed midway.
func (r *Reconciler) ReconcileMissing(ctx context.Context, date, username string, snapshot *models.RecentlyPlayed) (Result, error) {
	return r.reconcile(ctx, date, username, snapshot, true)
}

func (r *Reconciler) reconcile(ctx context.Context, date, username string, snapshot *models.RecentlyPlayed, fillMissing bool) (Result, error) {
	var result Result

	if snapshot.IsEmpty() {
		result.Skipped = true
		return result, nil
	}
	if err := snapshot.Validate(); err != nil {
		return result, fmt.Errorf("invalid snapshot for %s: %w", username, err)
	}

	var recorded map[int64]struct{}
	if fillMissing {
		var err error
		recorded, err = r.store.RecordedAppIDs(ctx, username, date)
		if err != nil {
			return result, err
		}
	}

	// Whether this is the user's first collection is decided once, before
	// this snapshot writes anything. A partly recorded date does not count.
	firstCollection, err := r.isFirstCollection(ctx, username, len(recorded) > 0)
	if err != nil {
		return result, err
	}

	for i := range snapshot.Games {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		game := &snapshot.Games[i]
		if _, ok := recorded[*game.AppID]; ok {
			result.Games++
			result.AlreadyRecorded++
			continue
		}

		record, err := r.reconcileGame(ctx, date, username, game, firstCollection)
		if err != nil {
			return result, err
		}

		result.Games++
		result.Records++
		if record.DailyTime < 0 {
			result.NegativeDeltas++
		}
	}

	return result, nil
}

func (r *Reconciler) isFirstCollection(ctx context.Context, username string, dateRecorded bool) (bool, error) {
	days, err := r.store.DaysCollectedForUser(ctx, username)
	if err != nil {
		return false, fmt.Errorf("failed to count collected days for %s: %w", username, err)
	}
	if dateRecorded {
		days--
	}
	return days <= 0, nil
}

func (r *Reconciler) reconcileGame(ctx context.Context, date, username string, game *models.FeedGame, firstCollection bool) (*models.PlaytimeRecord, error) {
	appID := *game.AppID

	if err := r.store.UpsertGame(ctx, appID, game.StoredName()); err != nil {
		return nil, fmt.Errorf("failed to register game %d: %w", appID, err)
	}
	metrics.SyncGamesRegistered.Inc()

	lastTotal, found, err := r.store.GetLastTotalTime(ctx, username, appID)
	if err != nil {
		return nil, err
	}

	forever := *game.PlaytimeForever
	fortnight := *game.Playtime2Weeks

	record := &models.PlaytimeRecord{
		Date:          date,
		Username:      username,
		AppID:         appID,
		TotalTime:     forever,
		DailyTime:     DailyTime(forever, fortnight, lastTotal, found, firstCollection),
		FortnightTime: fortnight,
	}

	if record.DailyTime < 0 {
		metrics.SyncNegativeDeltas.Inc()
		logging.Warn().
			Str("user", username).
			Int64("appid", appID).
			Float64("previous_total", lastTotal).
			Float64("total", forever).
			Float64("daily", record.DailyTime).
			Msg("Playtime total decreased since last collection")
	}

	if err := r.insertWithRetry(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// insertWithRetry inserts record, retrying once on a duplicate key. The key is
// deterministic, so the retry only succeeds when the first collision was
// transient; a second collision is returned wrapping database.ErrDuplicateKey.
func (r *Reconciler) insertWithRetry(ctx context.Context, record *models.PlaytimeRecord) error {
	var err error
	for attempt := 1; attempt <= maxInsertAttempts; attempt++ {
		err = r.store.InsertRecord(ctx, record)
		if err == nil {
			return nil
		}
		if !errors.Is(err, database.ErrDuplicateKey) {
			return err
		}
		logging.Warn().
			Str("date", record.Date).
			Str("user", record.Username).
			Int64("appid", record.AppID).
			Int("attempt", attempt).
			Msg("Record already exists")
	}
	return fmt.Errorf("record %s/%s/%d already collected after %d attempts: %w",
		record.Date, record.Username, record.AppID, maxInsertAttempts, err)
}

// DailyTime derives the playtime accrued since the previous collection.
//
//   - previous total known: forever - lastTotal, negative values included
//   - first collection and forever == fortnight: all playtime happened within
//     the trailing two weeks, so fortnight is attributed to this day
//   - otherwise the accrued time cannot be determined and is 0
func DailyTime(forever, fortnight, lastTotal float64, found, firstCollection bool) float64 {
	switch {
	case found:
		return forever - lastTotal
	case forever == fortnight && firstCollection:
		return fortnight
	default:
		return 0
	}
}
