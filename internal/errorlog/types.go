// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

package errorlog

import (
	"github.com/rs/zerolog"
)

// Severity indicates how serious a reported failure is.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool {
	switch s {
	case SeverityInfo, SeverityWarning, SeverityError, SeverityCritical:
		return true
	}
	return false
}

// logLevel maps the severity onto the zerolog level used to echo the report.
func (s Severity) logLevel() zerolog.Level {
	switch s {
	case SeverityInfo:
		return zerolog.InfoLevel
	case SeverityWarning:
		return zerolog.WarnLevel
	case SeverityError:
		return zerolog.ErrorLevel
	default:
		return zerolog.ErrorLevel
	}
}

// Report describes one failure handed to Reporter.Report.
type Report struct {
	Severity Severity
	// Source names the reporting component, e.g. "sync" or "import".
	Source string
	// Kind is the classified error kind, e.g. "permission-denied".
	Kind string
	Err  error
	// UserID is the affected username, if any.
	UserID string
	// AdditionalData is serialized as JSON and stored for diagnosis.
	// []byte and string values are stored as-is.
	AdditionalData any
}
