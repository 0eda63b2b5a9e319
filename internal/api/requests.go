// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

package api

// Request structs validated with go-playground/validator before a handler
// touches the database. Custom tags (username) are registered in
// internal/validation.
//
// Example usage:
//
//	req := HistoryRequest{
//	    Username: r.URL.Query().Get("username"),
//	    GameName: r.URL.Query().Get("game_name"),
//	}
//	if apiErr := validateRequest(&req); apiErr != nil {
//	    respondValidationError(w, apiErr)
//	    return
//	}

// HistoryRequest represents the query parameters of the history endpoints.
//
// Fields:
//   - Username: tracked username
//   - GameName: game name in any case or punctuation, e.g. "half-life 2"
type HistoryRequest struct {
	Username string `validate:"required,username"`
	GameName string `validate:"required,min=1,max=256"`
}

// ImportRequest represents the path parameter of the import endpoint.
type ImportRequest struct {
	Username string `validate:"required,username"`
}

// ErrorsRequest represents the query parameters of the error log endpoint.
type ErrorsRequest struct {
	Limit int `validate:"min=1,max=1000"`
}
