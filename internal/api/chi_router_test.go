// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tomtom215/steamtime/internal/models"
)

func TestSetupChi_Routes(t *testing.T) {
	d := newTestDeps()
	d.sync.summary = &models.SyncSummary{RunID: "run-1"}
	router := d.handler()

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/api/steamplaytime?username=alice&game_name=portal", http.StatusOK},
		{http.MethodGet, "/api/v1/history?username=alice&game_name=portal", http.StatusOK},
		{http.MethodGet, "/api/v1/games", http.StatusOK},
		{http.MethodGet, "/api/v1/users", http.StatusOK},
		{http.MethodGet, "/api/v1/stats", http.StatusOK},
		{http.MethodGet, "/api/v1/errors", http.StatusOK},
		{http.MethodGet, "/api/v1/import/status", http.StatusOK},
		{http.MethodPost, "/api/v1/sync", http.StatusOK},
		{http.MethodGet, "/api/v1/health", http.StatusOK},
		{http.MethodGet, "/api/v1/health/live", http.StatusOK},
		{http.MethodGet, "/api/v1/health/ready", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/api/v1/nowhere", http.StatusNotFound},
		{http.MethodGet, "/nowhere", http.StatusNotFound},
		{http.MethodDelete, "/api/v1/games", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := doRequest(t, router, tt.method, tt.path)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestSetupChi_GlobalMiddleware(t *testing.T) {
	router := newTestDeps().handler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/games", nil)
	req.Header.Set("X-Request-ID", "req-abc")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "req-abc" {
		t.Errorf("X-Request-ID = %q, want req-abc", got)
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing on API route")
	}
	if !strings.HasPrefix(rec.Header().Get("ETag"), `"`) {
		t.Errorf("ETag = %q, want quoted", rec.Header().Get("ETag"))
	}
}

func TestSetupChi_RecoversPanics(t *testing.T) {
	d := newTestDeps()
	router := NewRouter(NewHandler(testConfig(), panickingStore{d.store}, nil, nil, nil, nil), &ChiMiddlewareConfig{RateLimitDisabled: true}).SetupChi()

	rec := doRequest(t, router, http.MethodGet, "/api/v1/games")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

type panickingStore struct{ *fakeStore }

func (panickingStore) ListGames(context.Context) ([]models.GameInfo, error) {
	panic("list games exploded")
}
