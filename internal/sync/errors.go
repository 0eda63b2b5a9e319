// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

package sync

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tomtom215/steamtime/internal/database"
	"github.com/tomtom215/steamtime/internal/errorlog"
	"github.com/tomtom215/steamtime/internal/models"
)

var (
	// ErrSyncInProgress is returned when a run is requested while another
	// collection or import holds the run lock.
	ErrSyncInProgress = errors.New("a collection run is already in progress")

	// ErrParseFailure marks errors caused by unreadable backup input.
	ErrParseFailure = errors.New("parse failure")
)

// ErrorKind classifies a failure for reporting.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindInvalidInput
	KindPermissionDenied
	KindLookupFailure
	KindSchemaMismatch
	KindDuplicateKey
	KindParseFailure
)

// String returns the kind as stored in the error log.
func (k ErrorKind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid-input"
	case KindPermissionDenied:
		return "permission-denied"
	case KindLookupFailure:
		return "lookup-failure"
	case KindSchemaMismatch:
		return "schema-mismatch"
	case KindDuplicateKey:
		return "duplicate-key"
	case KindParseFailure:
		return "parse-failure"
	default:
		return "unknown"
	}
}

// Severity returns the severity a failure of this kind is reported with.
func (k ErrorKind) Severity() errorlog.Severity {
	switch k {
	case KindInvalidInput:
		return errorlog.SeverityWarning
	case KindPermissionDenied, KindLookupFailure:
		return errorlog.SeverityCritical
	case KindSchemaMismatch, KindParseFailure:
		return errorlog.SeverityError
	case KindDuplicateKey:
		return errorlog.SeverityInfo
	default:
		return errorlog.SeverityCritical
	}
}

// IsClientError reports whether the kind is caused by the request rather
// than by Steam being unavailable.
func (k ErrorKind) IsClientError() bool {
	switch k {
	case KindInvalidInput, KindPermissionDenied, KindLookupFailure, KindSchemaMismatch:
		return true
	}
	return false
}

// KindFromStatus maps an HTTP status code from Steam onto a kind.
func KindFromStatus(status int) ErrorKind {
	switch status {
	case http.StatusBadRequest:
		return KindInvalidInput
	case http.StatusForbidden:
		return KindPermissionDenied
	case http.StatusNotFound:
		return KindLookupFailure
	default:
		return KindUnknown
	}
}

// Classify returns the kind of err. Unrecognized errors are KindUnknown.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}

	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr.Kind
	}

	var missing *models.MissingFieldError
	switch {
	case errors.As(err, &missing):
		return KindSchemaMismatch
	case errors.Is(err, database.ErrDuplicateKey):
		return KindDuplicateKey
	case errors.Is(err, ErrParseFailure):
		return KindParseFailure
	}
	return KindUnknown
}

// FetchError is returned by the Steam client for a failed request.
type FetchError struct {
	Kind       ErrorKind
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("steam fetch failed (%s, HTTP %d): %v", e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("steam fetch failed (%s): %v", e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
