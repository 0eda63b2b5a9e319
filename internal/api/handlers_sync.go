// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	backupimport "github.com/tomtom215/steamtime/internal/import"
	"github.com/tomtom215/steamtime/internal/logging"
	"github.com/tomtom215/steamtime/internal/models"
	intsync "github.com/tomtom215/steamtime/internal/sync"
)

// defaultErrorsLimit is the page size of /api/v1/errors without ?limit=.
const defaultErrorsLimit = 50

// TriggerSync serves POST /api/v1/sync. The run executes synchronously and
// outlives a disconnected client; the response carries the run summary.
// Responds 409 while another collection or import holds the run lock.
func (h *Handler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if h.sync == nil {
		respondError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Sync manager not available", nil)
		return
	}

	summary, err := h.sync.TriggerSync(context.WithoutCancel(r.Context()))
	if errors.Is(err, intsync.ErrSyncInProgress) {
		respondError(w, http.StatusConflict, "SYNC_IN_PROGRESS", "A collection or import is already running", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "SYNC_FAILED", "Collection run failed", err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("run_id", summary.RunID).
		Int("synced", summary.Synced).
		Int("failed", summary.Failed).
		Msg("Manual collection completed")
	respondSuccess(w, r, http.StatusOK, summary, start)
}

// ImportUser serves POST /api/v1/import/{username}, importing that user's
// backup file synchronously.
//
// Status codes:
//   - 200: imported; data is the import summary
//   - 400: invalid username
//   - 404: user not configured, or no backup file
//   - 409: a collection or import is running, or a line was already stored
//   - 422: the file contains an unreadable line
func (h *Handler) ImportUser(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req := ImportRequest{Username: chi.URLParam(r, "username")}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}
	if h.importer == nil {
		respondError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Importer not available", nil)
		return
	}

	stats, err := h.importer.ImportUser(context.WithoutCancel(r.Context()), req.Username)
	if stats != nil && stats.RecordsWritten > 0 {
		h.InvalidateHistory()
	}
	if err != nil {
		status, code := importErrorStatus(err)
		var data interface{}
		if stats != nil {
			data = stats.Summary()
		}
		logging.Ctx(r.Context()).Warn().Err(err).Str("user", req.Username).Msg("Backup import request failed")
		respondJSON(w, status, &models.APIResponse{
			Status:   "error",
			Data:     data,
			Metadata: models.Metadata{Timestamp: time.Now()},
			Error:    &models.APIError{Code: code, Message: sanitizeLogValue(err.Error())},
		})
		return
	}

	respondSuccess(w, r, http.StatusOK, stats.Summary(), start)
}

// importErrorStatus maps an import failure to an HTTP status and error code.
func importErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, backupimport.ErrUnknownUser):
		return http.StatusNotFound, "USER_NOT_FOUND"
	case errors.Is(err, backupimport.ErrBackupNotFound):
		return http.StatusNotFound, "BACKUP_NOT_FOUND"
	case errors.Is(err, backupimport.ErrImportInProgress):
		return http.StatusConflict, "IMPORT_IN_PROGRESS"
	}

	switch intsync.Classify(err) {
	case intsync.KindDuplicateKey:
		return http.StatusConflict, "DUPLICATE_RECORD"
	case intsync.KindParseFailure, intsync.KindSchemaMismatch:
		return http.StatusUnprocessableEntity, "IMPORT_FAILED"
	default:
		return http.StatusInternalServerError, "IMPORT_FAILED"
	}
}

// ImportStatus serves GET /api/v1/import/status with the progress of the
// running import, or the result of the last one.
func (h *Handler) ImportStatus(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if h.importer == nil {
		respondError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Importer not available", nil)
		return
	}
	respondSuccess(w, r, http.StatusOK, h.importer.GetStats().ToSummary(h.importer.IsRunning()), start)
}

// Errors serves GET /api/v1/errors?limit=N, newest first.
func (h *Handler) Errors(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req := ErrorsRequest{Limit: getIntParam(r, "limit", defaultErrorsLimit)}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}
	if h.errors == nil {
		respondError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Error log not available", nil)
		return
	}

	events, err := h.errors.Recent(r.Context(), req.Limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to list error events", err)
		return
	}
	if events == nil {
		events = []models.ErrorEvent{}
	}
	respondSuccess(w, r, http.StatusOK, events, start)
}
