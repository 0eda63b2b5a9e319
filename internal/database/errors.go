// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

package database

import (
	"errors"
	"io"
	"strings"

	"github.com/tomtom215/steamtime/internal/logging"
)

var (
	// ErrDuplicateKey is returned when a write collides with an existing
	// primary key. For playtime records this means the (date, username,
	// appid) triple was already collected.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrGameNotFound is returned by FetchGame for an unknown appid
	ErrGameNotFound = errors.New("game not found")
)

// isUniqueConstraintError reports whether err is a primary key or unique
// constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	// DuckDB reports these as "Duplicate key ..." or "... UNIQUE constraint ..."
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "unique constraint") || strings.Contains(errMsg, "duplicate key")
}

// closeWithLog closes a resource and logs any error
func closeWithLog(closer io.Closer, resourceType string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.Warn().Str("type", resourceType).Err(err).Msg("Failed to close resource")
	}
}

// closeQuietly closes a resource and explicitly ignores any error.
// Use this in error paths where Close() errors are not actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}
