// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/steamtime/internal/models"
)

// healthCheckTimeout bounds each dependency check of a health request.
const healthCheckTimeout = 5 * time.Second

// Health handles health check requests.
//
// The status is "healthy" when the database answers and the Steam API is
// reachable, "degraded" otherwise. A degraded service still answers 200 so
// dashboards can read the details.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	dbConnected := h.databaseConnected(ctx)

	steamReachable := false
	circuitState := "unknown"
	if h.steam != nil {
		steamReachable = h.steam.Ping(ctx) == nil
		circuitState = h.steam.State()
	}

	status := "healthy"
	if !dbConnected || !steamReachable {
		status = "degraded"
	}

	var lastSyncPtr *time.Time
	if h.sync != nil {
		lastSync := h.sync.LastSyncTime()
		if !lastSync.IsZero() {
			lastSyncPtr = &lastSync
		}
	}

	respondSuccess(w, r, http.StatusOK, models.HealthStatus{
		Status:            status,
		Version:           Version,
		DatabaseConnected: dbConnected,
		SteamReachable:    steamReachable,
		CircuitState:      circuitState,
		LastSyncTime:      lastSyncPtr,
		TrackedUsers:      h.users,
		Uptime:            time.Since(h.startTime).Seconds(),
	}, start)
}

// HealthLive handles liveness probe requests.
// Returns 200 OK if the process is alive, regardless of dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, http.StatusOK, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	}, time.Now())
}

// HealthReady handles readiness probe requests.
// Returns 200 OK only when the database answers. Steam availability does not
// affect readiness: history can be served while the API is down.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	ready := h.databaseConnected(ctx)

	statusCode := http.StatusOK
	status := "ready"
	if !ready {
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
	}

	respondJSON(w, statusCode, &models.APIResponse{
		Status: status,
		Data: map[string]interface{}{
			"database_connected": ready,
			"ready_to_serve":     ready,
			"uptime":             time.Since(h.startTime).Seconds(),
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

func (h *Handler) databaseConnected(ctx context.Context) bool {
	return h.store != nil && h.store.Ping(ctx) == nil
}
