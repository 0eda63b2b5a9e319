// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

package sync

import (
	"context"
	"fmt"
	"sync"

	"github.com/tomtom215/steamtime/internal/database"
	"github.com/tomtom215/steamtime/internal/errorlog"
	"github.com/tomtom215/steamtime/internal/models"
)

type recordKey struct {
	date     string
	username string
	appID    int64
}

// memStore is an in-memory ManagerStore.
type memStore struct {
	mu      sync.Mutex
	records map[recordKey]models.PlaytimeRecord
	games   map[int64]*string

	// duplicatesLeft makes the next N InsertRecord calls fail with a
	// duplicate key error.
	duplicatesLeft int
	insertCalls    int
	insertErr      error
	// failOnce makes the first InsertRecord for each listed appid fail.
	failOnce map[int64]error
}

func newMemStore() *memStore {
	return &memStore{
		records:  make(map[recordKey]models.PlaytimeRecord),
		games:    make(map[int64]*string),
		failOnce: make(map[int64]error),
	}
}

func (s *memStore) UpsertGame(_ context.Context, appID int64, name *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.games[appID]
	if !ok || (existing == nil && name != nil) {
		s.games[appID] = name
	}
	return nil
}

func (s *memStore) GetLastTotalTime(_ context.Context, username string, appID int64) (float64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var (
		latest string
		total  float64
		found  bool
	)
	for key, rec := range s.records {
		if key.username == username && key.appID == appID && key.date > latest {
			latest = key.date
			total = rec.TotalTime
			found = true
		}
	}
	return total, found, nil
}

func (s *memStore) DaysCollectedForUser(_ context.Context, username string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	days := make(map[string]struct{})
	for key := range s.records {
		if key.username == username {
			days[key.date] = struct{}{}
		}
	}
	return len(days), nil
}

func (s *memStore) HasRecordsForDate(_ context.Context, username, date string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.records {
		if key.username == username && key.date == date {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) RecordedAppIDs(_ context.Context, username, date string) (map[int64]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make(map[int64]struct{})
	for key := range s.records {
		if key.username == username && key.date == date {
			ids[key.appID] = struct{}{}
		}
	}
	return ids, nil
}

func (s *memStore) InsertRecord(_ context.Context, record *models.PlaytimeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertCalls++
	if s.insertErr != nil {
		return s.insertErr
	}
	if err, ok := s.failOnce[record.AppID]; ok {
		delete(s.failOnce, record.AppID)
		return err
	}
	key := recordKey{record.Date, record.Username, record.AppID}
	if s.duplicatesLeft > 0 {
		s.duplicatesLeft--
		return fmt.Errorf("%w: data (%s, %s, %d)", database.ErrDuplicateKey, key.date, key.username, key.appID)
	}
	if _, exists := s.records[key]; exists {
		return fmt.Errorf("%w: data (%s, %s, %d)", database.ErrDuplicateKey, key.date, key.username, key.appID)
	}
	s.records[key] = *record
	return nil
}

func (s *memStore) record(date, username string, appID int64) (models.PlaytimeRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[recordKey{date, username, appID}]
	return rec, ok
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// fakeSource serves canned snapshots per SteamID.
type fakeSource struct {
	mu        sync.Mutex
	snapshots map[string]*models.RecentlyPlayed
	errs      map[string][]error
	calls     map[string]int
	pingErr   error
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		snapshots: make(map[string]*models.RecentlyPlayed),
		errs:      make(map[string][]error),
		calls:     make(map[string]int),
	}
}

// failNext queues errors returned, in order, before the snapshot is served.
func (f *fakeSource) failNext(steamID string, errs ...error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[steamID] = append(f.errs[steamID], errs...)
}

func (f *fakeSource) GetRecentlyPlayedGames(ctx context.Context, steamID string) (*models.RecentlyPlayed, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[steamID]++
	if queued := f.errs[steamID]; len(queued) > 0 {
		f.errs[steamID] = queued[1:]
		return nil, queued[0]
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snapshot, ok := f.snapshots[steamID]
	if !ok {
		return &models.RecentlyPlayed{}, nil
	}
	return snapshot, nil
}

func (f *fakeSource) Ping(context.Context) error {
	return f.pingErr
}

func (f *fakeSource) callCount(steamID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[steamID]
}

// recordingReporter collects reports instead of persisting them.
type recordingReporter struct {
	mu      sync.Mutex
	reports []errorlog.Report
}

func (r *recordingReporter) Report(_ context.Context, report errorlog.Report) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, report)
}

func (r *recordingReporter) all() []errorlog.Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]errorlog.Report(nil), r.reports...)
}

func intPtr(v int) *int { return &v }
func int64Ptr(v int64) *int64 { return &v }
func floatPtr(v float64) *float64 { return &v }
func stringPtr(v string) *string { return &v }

// feedGame builds a complete feed entry.
func feedGame(appID int64, name string, forever, fortnight float64) models.FeedGame {
	return models.FeedGame{
		AppID:           int64Ptr(appID),
		Name:            stringPtr(name),
		PlaytimeForever: floatPtr(forever),
		Playtime2Weeks:  floatPtr(fortnight),
	}
}

// snapshotOf wraps games in a snapshot with a matching total_count.
func snapshotOf(games ...models.FeedGame) *models.RecentlyPlayed {
	return &models.RecentlyPlayed{
		TotalCount: intPtr(len(games)),
		Games:      games,
	}
}
