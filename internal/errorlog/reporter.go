// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

package errorlog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/steamtime/internal/logging"
	"github.com/tomtom215/steamtime/internal/metrics"
	"github.com/tomtom215/steamtime/internal/models"
)

// saveTimeout bounds a single store write.
const saveTimeout = 5 * time.Second

// Reporter turns failure reports into persisted error events.
type Reporter struct {
	store Store
	newID func() string
	now   func() time.Time
}

// NewReporter creates a reporter writing to store. A nil store only logs.
func NewReporter(store Store) *Reporter {
	return &Reporter{
		store: store,
		newID: uuid.NewString,
		now:   time.Now,
	}
}

// Report logs and persists r. It never returns an error and never panics:
// store failures are logged and counted, then dropped. An id collision is
// retried once with a fresh id.
func (r *Reporter) Report(ctx context.Context, report Report) {
	defer func() {
		if rec := recover(); rec != nil {
			logging.Error().Interface("panic", rec).Msg("Error reporter panicked")
			metrics.RecordErrorReport(string(report.Severity), false)
		}
	}()

	if !report.Severity.Valid() {
		report.Severity = SeverityCritical
	}

	event := r.buildEvent(report)

	logger := logging.Logger()
	logEvent := logger.WithLevel(report.Severity.logLevel()).
		Str("severity", event.Severity).
		Str("source", event.Source).
		Str("kind", event.Error)
	if event.UserID != nil {
		logEvent = logEvent.Str("user", *event.UserID)
	}
	if report.Err != nil {
		logEvent = logEvent.Err(report.Err)
	}
	logEvent.Msg("Error reported")

	if r.store == nil {
		metrics.RecordErrorReport(event.Severity, false)
		return
	}

	persisted := r.save(ctx, event)
	metrics.RecordErrorReport(event.Severity, persisted)
}

// Recent returns the newest stored events.
func (r *Reporter) Recent(ctx context.Context, limit int) ([]models.ErrorEvent, error) {
	if r.store == nil {
		return []models.ErrorEvent{}, nil
	}
	return r.store.Recent(ctx, limit)
}

func (r *Reporter) save(ctx context.Context, event *models.ErrorEvent) bool {
	if ctx == nil {
		ctx = context.Background()
	}
	// A cancelled run still gets its failure recorded
	ctx = context.WithoutCancel(ctx)

	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			event.ID = r.newID()
		}

		saveCtx, cancel := context.WithTimeout(ctx, saveTimeout)
		err := r.store.Save(saveCtx, event)
		cancel()

		if err == nil {
			return true
		}
		if !errors.Is(err, ErrDuplicateID) {
			logging.Error().Err(err).Str("kind", event.Error).Msg("Failed to save error event")
			return false
		}
		logging.Warn().Str("id", event.ID).Msg("Error event id collision, retrying with a new id")
	}

	logging.Error().Str("kind", event.Error).Msg("Dropping error event after repeated id collisions")
	return false
}

func (r *Reporter) buildEvent(report Report) *models.ErrorEvent {
	event := &models.ErrorEvent{
		ID:       r.newID(),
		Time:     r.now().UTC(),
		Severity: string(report.Severity),
		Source:   report.Source,
		Error:    report.Kind,
	}
	if event.Source == "" {
		event.Source = "unknown"
	}
	if event.Error == "" {
		event.Error = "unknown"
	}
	if report.Err != nil {
		event.StackTrace = errorChain(report.Err)
	}
	if report.UserID != "" {
		user := report.UserID
		event.UserID = &user
	}
	if data := encodeAdditionalData(report.AdditionalData); data != "" {
		event.AdditionalData = &data
	}
	return event
}

// errorChain renders each layer of a wrapped error on its own line,
// outermost first.
func errorChain(err error) string {
	var b strings.Builder
	for depth := 0; err != nil && depth < 16; depth++ {
		if depth > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%T: %s", err, err.Error())
		err = errors.Unwrap(err)
	}
	return b.String()
}

func encodeAdditionalData(v any) string {
	switch data := v.(type) {
	case nil:
		return ""
	case string:
		return data
	case []byte:
		return string(data)
	case json.RawMessage:
		return string(data)
	}
	encoded, err := json.Marshal(v)
	if err != nil {
		logging.Warn().Err(err).Msg("Failed to encode error report data")
		return ""
	}
	return string(encoded)
}
