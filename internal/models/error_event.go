// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

package models

import "time"

// ErrorEvent is one row of the errors table.
type ErrorEvent struct {
	ID             string    `json:"id"`
	Time           time.Time `json:"time"`
	Severity       string    `json:"severity"`
	Source         string    `json:"source"`
	Error          string    `json:"error"`
	StackTrace     string    `json:"stack_trace,omitempty"`
	UserID         *string   `json:"user_id,omitempty"`
	AdditionalData *string   `json:"additional_data,omitempty"`
}
