// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/steamtime/internal/cache"
	"github.com/tomtom215/steamtime/internal/logging"
	"github.com/tomtom215/steamtime/internal/metrics"
	"github.com/tomtom215/steamtime/internal/models"
)

// historyRequest reads and validates the history query parameters. It writes
// the error response and returns false when they are invalid.
func (h *Handler) historyRequest(w http.ResponseWriter, r *http.Request) (HistoryRequest, bool) {
	req := HistoryRequest{
		Username: r.URL.Query().Get("username"),
		GameName: r.URL.Query().Get("game_name"),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return req, false
	}
	if h.store == nil {
		respondError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Database not available", nil)
		return req, false
	}
	return req, true
}

func (h *Handler) fetchHistory(w http.ResponseWriter, r *http.Request, req HistoryRequest) (models.History, bool) {
	var key string
	if h.history != nil {
		// Spellings that normalize to the same game share one entry.
		key = cache.GenerateKey("history", HistoryRequest{
			Username: req.Username,
			GameName: models.FormatGameName(req.GameName),
		})
		if history, ok := h.history.Get(key); ok {
			metrics.RecordHistoryCacheLookup(true)
			return history, true
		}
		metrics.RecordHistoryCacheLookup(false)
	}

	history, err := h.store.FetchHistory(r.Context(), req.Username, req.GameName)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch history", err)
		return nil, false
	}
	if h.history != nil {
		h.history.Set(key, history)
	}
	logging.Ctx(r.Context()).Debug().
		Str("user", sanitizeLogValue(req.Username)).
		Str("game", sanitizeLogValue(req.GameName)).
		Int("series", len(history[req.Username])).
		Msg("History fetched")
	return history, true
}

// SteamPlaytime serves GET /api/steamplaytime. The body is the bare history
// map, username -> game name -> {dates, total_time, daily_time}, with no
// envelope. An unknown user or game yields {}.
func (h *Handler) SteamPlaytime(w http.ResponseWriter, r *http.Request) {
	req, ok := h.historyRequest(w, r)
	if !ok {
		return
	}
	history, ok := h.fetchHistory(w, r, req)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, history)
}

// History serves GET /api/v1/history: the same data as SteamPlaytime inside
// the standard envelope.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req, ok := h.historyRequest(w, r)
	if !ok {
		return
	}
	history, ok := h.fetchHistory(w, r, req)
	if !ok {
		return
	}
	respondSuccess(w, r, http.StatusOK, history, start)
}

// Games serves GET /api/v1/games, every app id seen in a feed.
func (h *Handler) Games(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if h.store == nil {
		respondError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Database not available", nil)
		return
	}

	games, err := h.store.ListGames(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to list games", err)
		return
	}
	if games == nil {
		games = []models.GameInfo{}
	}
	respondSuccess(w, r, http.StatusOK, games, start)
}

// Users serves GET /api/v1/users, every username with stored records.
func (h *Handler) Users(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if h.store == nil {
		respondError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Database not available", nil)
		return
	}

	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to list users", err)
		return
	}
	if users == nil {
		users = []string{}
	}
	respondSuccess(w, r, http.StatusOK, users, start)
}

// Stats serves GET /api/v1/stats, the row count of each table.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if h.store == nil {
		respondError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Database not available", nil)
		return
	}

	counts, err := h.store.GetRecordCounts(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to count records", err)
		return
	}
	respondSuccess(w, r, http.StatusOK, counts, start)
}
