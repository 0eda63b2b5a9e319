// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	io_prometheus_client "github.com/prometheus/client_model/go"
)

func histogramCount(t *testing.T, h prometheus.Histogram) uint64 {
	t.Helper()
	var m io_prometheus_client.Metric
	if err := h.Write(&m); err != nil {
		t.Fatalf("failed to read histogram: %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}

func TestRecordDBQuery(t *testing.T) {
	before := testutil.ToFloat64(DBQueryErrors.WithLabelValues("INSERT", "data"))

	RecordDBQuery("INSERT", "data", 3*time.Millisecond, nil)
	RecordDBQuery("INSERT", "data", 4*time.Millisecond, errors.New("constraint violated"))

	after := testutil.ToFloat64(DBQueryErrors.WithLabelValues("INSERT", "data"))
	if after-before != 1 {
		t.Errorf("expected 1 new error, got %v", after-before)
	}
}

func TestRecordSteamRequest(t *testing.T) {
	tests := []struct {
		status int
		class  string
	}{
		{200, "2xx"},
		{403, "4xx"},
		{503, "5xx"},
		{0, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.class, func(t *testing.T) {
			before := testutil.ToFloat64(SteamRequestsTotal.WithLabelValues(tt.class))
			samplesBefore := histogramCount(t, SteamRequestDuration)

			RecordSteamRequest(tt.status, 120*time.Millisecond)

			if got := testutil.ToFloat64(SteamRequestsTotal.WithLabelValues(tt.class)) - before; got != 1 {
				t.Errorf("expected counter for %s to increase by 1, got %v", tt.class, got)
			}
			if got := histogramCount(t, SteamRequestDuration) - samplesBefore; got != 1 {
				t.Errorf("expected one duration sample, got %d", got)
			}
		})
	}
}

func TestRecordSyncRun(t *testing.T) {
	tests := []struct {
		name    string
		synced  int
		skipped int
		failed  int
		result  string
	}{
		{"all users synced", 3, 0, 0, "success"},
		{"some users failed", 1, 1, 1, "partial"},
		{"every user failed", 0, 0, 2, "failure"},
		{"nothing to do", 0, 2, 0, "success"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(SyncRuns.WithLabelValues(tt.result))
			failedBefore := testutil.ToFloat64(SyncUsers.WithLabelValues("failed"))

			RecordSyncRun(2*time.Second, tt.synced, tt.skipped, tt.failed, tt.synced*4)

			if got := testutil.ToFloat64(SyncRuns.WithLabelValues(tt.result)) - before; got != 1 {
				t.Errorf("expected %s run counter +1, got %v", tt.result, got)
			}
			if got := testutil.ToFloat64(SyncUsers.WithLabelValues("failed")) - failedBefore; got != float64(tt.failed) {
				t.Errorf("expected failed users +%d, got %v", tt.failed, got)
			}
		})
	}
}

func TestRecordSyncRun_LastSuccess(t *testing.T) {
	start := float64(time.Now().Unix())
	RecordSyncRun(time.Second, 1, 0, 0, 1)
	if got := testutil.ToFloat64(SyncLastSuccess); got < start {
		t.Errorf("expected last success >= %v, got %v", start, got)
	}
}

func TestRecordErrorReport(t *testing.T) {
	before := testutil.ToFloat64(ErrorReports.WithLabelValues("critical"))
	droppedBefore := testutil.ToFloat64(ErrorReportsDropped)

	RecordErrorReport("critical", true)
	RecordErrorReport("critical", false)

	if got := testutil.ToFloat64(ErrorReports.WithLabelValues("critical")) - before; got != 2 {
		t.Errorf("expected 2 critical reports, got %v", got)
	}
	if got := testutil.ToFloat64(ErrorReportsDropped) - droppedBefore; got != 1 {
		t.Errorf("expected 1 dropped report, got %v", got)
	}
}

func TestRecordEventPublish(t *testing.T) {
	okBefore := testutil.ToFloat64(EventsPublished.WithLabelValues("success"))
	failBefore := testutil.ToFloat64(EventsPublished.WithLabelValues("failure"))

	RecordEventPublish(nil)
	RecordEventPublish(errors.New("nats: no responders"))

	if testutil.ToFloat64(EventsPublished.WithLabelValues("success"))-okBefore != 1 {
		t.Error("expected one successful publish")
	}
	if testutil.ToFloat64(EventsPublished.WithLabelValues("failure"))-failBefore != 1 {
		t.Error("expected one failed publish")
	}
}

func TestRecordHistoryCacheLookup(t *testing.T) {
	hitBefore := testutil.ToFloat64(HistoryCacheLookups.WithLabelValues("hit"))
	missBefore := testutil.ToFloat64(HistoryCacheLookups.WithLabelValues("miss"))

	RecordHistoryCacheLookup(true)
	RecordHistoryCacheLookup(true)
	RecordHistoryCacheLookup(false)

	if got := testutil.ToFloat64(HistoryCacheLookups.WithLabelValues("hit")) - hitBefore; got != 2 {
		t.Errorf("hits = %v, want 2", got)
	}
	if got := testutil.ToFloat64(HistoryCacheLookups.WithLabelValues("miss")) - missBefore; got != 1 {
		t.Errorf("misses = %v, want 1", got)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	TrackActiveRequest(true)
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests) - before; got != 1 {
		t.Errorf("expected gauge +1, got %v", got)
	}
	TrackActiveRequest(false)
}

func TestConcurrentMetricRecording(t *testing.T) {
	before := testutil.ToFloat64(ImportLines.WithLabelValues("imported"))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			RecordImportLine("imported")
			RecordFetchError("unknown")
			RecordAPIRequest("GET", "/api/v1/history", "200", time.Millisecond)
		}()
	}
	wg.Wait()

	if got := testutil.ToFloat64(ImportLines.WithLabelValues("imported")) - before; got != 50 {
		t.Errorf("expected 50 imported lines, got %v", got)
	}
}
