// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/steamtime/internal/config"
	backupimport "github.com/tomtom215/steamtime/internal/import"
	"github.com/tomtom215/steamtime/internal/models"
)

type fakeStore struct {
	history models.History
	games   []models.GameInfo
	users   []string
	counts  *models.TableCounts
	err     error
	pingErr error

	mu           sync.Mutex
	lastUser     string
	lastGame     string
	historyCalls int
}

func (f *fakeStore) FetchHistory(_ context.Context, username, gameName string) (models.History, error) {
	f.mu.Lock()
	f.lastUser, f.lastGame = username, gameName
	f.historyCalls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if f.history == nil {
		return models.History{}, nil
	}
	return f.history, nil
}

func (f *fakeStore) ListGames(context.Context) ([]models.GameInfo, error) { return f.games, f.err }
func (f *fakeStore) ListUsers(context.Context) ([]string, error) { return f.users, f.err }
func (f *fakeStore) GetRecordCounts(context.Context) (*models.TableCounts, error) {
	return f.counts, f.err
}
func (f *fakeStore) Ping(context.Context) error { return f.pingErr }

type fakeSync struct {
	summary  *models.SyncSummary
	err      error
	lastSync time.Time
	calls    int
	ctxErr   error
}

func (f *fakeSync) TriggerSync(ctx context.Context) (*models.SyncSummary, error) {
	f.calls++
	f.ctxErr = ctx.Err()
	return f.summary, f.err
}

func (f *fakeSync) LastSyncTime() time.Time { return f.lastSync }

type fakeImporter struct {
	stats   *backupimport.ImportStats
	err     error
	running bool
	last    *backupimport.ImportStats
	users   []string
}

func (f *fakeImporter) ImportUser(_ context.Context, username string) (*backupimport.ImportStats, error) {
	f.users = append(f.users, username)
	return f.stats, f.err
}

func (f *fakeImporter) GetStats() *backupimport.ImportStats {
	if f.last == nil {
		return &backupimport.ImportStats{}
	}
	return f.last
}

func (f *fakeImporter) IsRunning() bool { return f.running }

type fakeErrorLog struct {
	events    []models.ErrorEvent
	err       error
	lastLimit int
}

func (f *fakeErrorLog) Recent(_ context.Context, limit int) ([]models.ErrorEvent, error) {
	f.lastLimit = limit
	return f.events, f.err
}

type fakeSteam struct {
	pingErr error
	state   string
}

func (f *fakeSteam) Ping(context.Context) error { return f.pingErr }
func (f *fakeSteam) State() string { return f.state }

var errBoom = errors.New("boom")

type testDeps struct {
	store    *fakeStore
	sync     *fakeSync
	importer *fakeImporter
	errors   *fakeErrorLog
	steam    *fakeSteam
}

func newTestDeps() *testDeps {
	return &testDeps{
		store:    &fakeStore{},
		sync:     &fakeSync{},
		importer: &fakeImporter{},
		errors:   &fakeErrorLog{},
		steam:    &fakeSteam{state: "closed"},
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Steam: config.SteamConfig{
			Users: []config.UserConfig{
				{ID: "76561198000000001", Username: "alice"},
				{ID: "76561198000000002", Username: "bob"},
			},
		},
	}
}

// handler builds a router over the fakes with rate limiting disabled.
func (d *testDeps) handler() http.Handler {
	h := NewHandler(testConfig(), d.store, d.sync, d.importer, d.errors, d.steam)
	cfg := DefaultChiMiddlewareConfig()
	cfg.RateLimitDisabled = true
	return NewRouter(h, cfg).SetupChi()
}

func doRequest(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// decodeEnvelope decodes an APIResponse, re-decoding Data into data when
// data is non-nil.
func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) models.APIResponse {
	t.Helper()

	var raw struct {
		Status   string           `json:"status"`
		Data     json.RawMessage  `json:"data"`
		Metadata models.Metadata  `json:"metadata"`
		Error    *models.APIError `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	if data != nil && len(raw.Data) > 0 && !strings.EqualFold(string(raw.Data), "null") {
		if err := json.Unmarshal(raw.Data, data); err != nil {
			t.Fatalf("decode data %s: %v", raw.Data, err)
		}
	}
	return models.APIResponse{Status: raw.Status, Metadata: raw.Metadata, Error: raw.Error}
}
