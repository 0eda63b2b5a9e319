// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

package backupimport

import (
	"time"

	"github.com/tomtom215/steamtime/internal/models"
)

// ImportStats holds statistics about the import of one backup file.
type ImportStats struct {
	Username string `json:"username"`

	// LinesRead is the number of lines read from the file, including lines
	// skipped on resume.
	LinesRead int64 `json:"lines_read"`

	// LinesSkipped counts blank lines, empty feeds and lines already
	// processed by an earlier import.
	LinesSkipped int64 `json:"lines_skipped"`

	// RecordsWritten is the number of playtime records inserted.
	RecordsWritten int64 `json:"records_written"`

	// Errors is the number of lines that failed (at most one, since a failure
	// aborts the file).
	Errors int64 `json:"errors"`

	// LastLine is the 1-based number of the last fully processed line.
	LastLine int64 `json:"last_line"`

	// Resumed is true when earlier progress was found and honored.
	Resumed bool `json:"resumed"`

	StartTime time.Time `json:"start_time"`

	// EndTime is when the import completed (zero if still running).
	EndTime time.Time `json:"end_time"`
}

// Duration returns the duration of the import operation.
func (s *ImportStats) Duration() time.Duration {
	if s.StartTime.IsZero() {
		return 0
	}
	if s.EndTime.IsZero() {
		return time.Since(s.StartTime)
	}
	return s.EndTime.Sub(s.StartTime)
}

// LinesPerSecond returns the import rate.
func (s *ImportStats) LinesPerSecond() float64 {
	duration := s.Duration().Seconds()
	if duration == 0 {
		return 0
	}
	return float64(s.LinesRead) / duration
}

// Summary converts the stats to the API representation.
func (s *ImportStats) Summary() models.ImportSummary {
	return models.ImportSummary{
		Username:       s.Username,
		LinesRead:      s.LinesRead,
		LinesSkipped:   s.LinesSkipped,
		RecordsWritten: s.RecordsWritten,
		Resumed:        s.Resumed,
		DurationSecs:   s.Duration().Seconds(),
	}
}

// ProgressSummary describes the importer's current state.
type ProgressSummary struct {
	Status         string  `json:"status"`
	Username       string  `json:"username,omitempty"`
	LinesRead      int64   `json:"lines_read"`
	LinesSkipped   int64   `json:"lines_skipped"`
	RecordsWritten int64   `json:"records_written"`
	Errors         int64   `json:"errors"`
	LinesPerSec    float64 `json:"lines_per_second"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
}

// ToSummary converts ImportStats to a ProgressSummary.
func (s *ImportStats) ToSummary(running bool) *ProgressSummary {
	summary := &ProgressSummary{
		Username:       s.Username,
		LinesRead:      s.LinesRead,
		LinesSkipped:   s.LinesSkipped,
		RecordsWritten: s.RecordsWritten,
		Errors:         s.Errors,
		LinesPerSec:    s.LinesPerSecond(),
		ElapsedSeconds: s.Duration().Seconds(),
	}

	switch {
	case running:
		summary.Status = "running"
	case s.StartTime.IsZero():
		summary.Status = "idle"
	case s.Errors > 0:
		summary.Status = "failed"
	default:
		summary.Status = "completed"
	}

	return summary
}
