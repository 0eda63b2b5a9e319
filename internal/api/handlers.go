// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

package api

import (
	"context"
	"time"

	"github.com/tomtom215/steamtime/internal/config"
	backupimport "github.com/tomtom215/steamtime/internal/import"
	"github.com/tomtom215/steamtime/internal/metrics"
	"github.com/tomtom215/steamtime/internal/models"
)

// Version is reported by the health endpoint. Overridden at build time with
// -ldflags "-X github.com/tomtom215/steamtime/internal/api.Version=...".
var Version = "dev"

// PlaytimeStore is the read side of the database used by the handlers.
type PlaytimeStore interface {
	FetchHistory(ctx context.Context, username, gameName string) (models.History, error)
	ListGames(ctx context.Context) ([]models.GameInfo, error)
	ListUsers(ctx context.Context) ([]string, error)
	GetRecordCounts(ctx context.Context) (*models.TableCounts, error)
	Ping(ctx context.Context) error
}

// SyncTrigger starts collection runs on demand.
type SyncTrigger interface {
	TriggerSync(ctx context.Context) (*models.SyncSummary, error)
	LastSyncTime() time.Time
}

// BackupImporter imports backup files on demand.
type BackupImporter interface {
	ImportUser(ctx context.Context, username string) (*backupimport.ImportStats, error)
	GetStats() *backupimport.ImportStats
	IsRunning() bool
}

// ErrorLog lists recently reported error events.
type ErrorLog interface {
	Recent(ctx context.Context, limit int) ([]models.ErrorEvent, error)
}

// SteamStatus reports Steam API reachability and circuit breaker state.
type SteamStatus interface {
	Ping(ctx context.Context) error
	State() string
}

// HistoryCache holds history responses between collections.
// *cache.Cache[models.History] satisfies it.
type HistoryCache interface {
	Get(key string) (models.History, bool)
	Set(key string, value models.History)
	Clear()
}

// Handler contains dependencies for API handlers
//
// Handler methods are split across files:
//   - handlers.go: Handler struct and constructor (this file)
//   - handlers_helpers.go: response and parameter helpers
//   - handlers_health.go: health and probe endpoints
//   - handlers_playtime.go: history, games, users and stats
//   - handlers_sync.go: collection, import and error log endpoints
type Handler struct {
	store     PlaytimeStore
	sync      SyncTrigger
	importer  BackupImporter
	errors    ErrorLog
	steam     SteamStatus
	history   HistoryCache
	users     int
	startTime time.Time
}

// NewHandler creates a new API handler.
//
// Dependencies:
//   - store: database read access
//   - syncMgr: manual collection trigger (optional)
//   - importer: backup importer (optional)
//   - errLog: error event log (optional)
//   - steam: Steam client used for health checks (optional)
//
// Endpoints whose dependency is nil respond 503.
func NewHandler(cfg *config.Config, store PlaytimeStore, syncMgr SyncTrigger, importer BackupImporter, errLog ErrorLog, steam SteamStatus) *Handler {
	h := &Handler{
		store:     store,
		sync:      syncMgr,
		importer:  importer,
		errors:    errLog,
		steam:     steam,
		startTime: time.Now(),
	}
	if cfg != nil {
		h.users = len(cfg.Steam.Users)
	}
	return h
}

// SetHistoryCache enables response caching for the history endpoints.
func (h *Handler) SetHistoryCache(c HistoryCache) {
	h.history = c
}

// InvalidateHistory drops every cached history response.
func (h *Handler) InvalidateHistory() {
	if h.history == nil {
		return
	}
	h.history.Clear()
	metrics.HistoryCacheInvalidations.Inc()
}

// OnSyncCompleted is registered with the sync manager; it invalidates the
// history cache once a run has stored data for at least one user.
func (h *Handler) OnSyncCompleted(summary *models.SyncSummary) {
	if summary != nil && summary.Synced > 0 {
		h.InvalidateHistory()
	}
}
