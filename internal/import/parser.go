// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

package backupimport

import (
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/steamtime/internal/models"
	intsync "github.com/tomtom215/steamtime/internal/sync"
)

const (
	// datePrefixLen is the length of the DD/MM/YYYY prefix of a backup line.
	datePrefixLen = 10

	backupDateLayout = "02/01/2006"
)

// ParseError reports a backup line that could not be parsed. It matches
// intsync.ErrParseFailure with errors.Is.
type ParseError struct {
	Line int64 // 1-based; 0 when unknown
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("backup line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("backup line: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is makes every ParseError match intsync.ErrParseFailure.
func (e *ParseError) Is(target error) bool {
	return target == intsync.ErrParseFailure
}

// RepairQuotes turns a Python repr document into JSON. Every single quote is
// replaced by a double quote, except inside double-quoted strings, which are
// how the repr writes names containing an apostrophe.
//
//	RepairQuotes(`{'name': "Assassin's Creed"}`) == `{"name": "Assassin's Creed"}`
func RepairQuotes(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	insideName := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			insideName = !insideName
		case c == '\'' && !insideName:
			c = '"'
		}
		b.WriteByte(c)
	}
	return b.String()
}

// ParseLine splits one backup line into its record date (YYYY/MM/DD) and
// snapshot. A document without a "response" object is a schema mismatch and
// is returned as *models.MissingFieldError; every other failure is a
// *ParseError.
func ParseLine(line string) (string, *models.RecentlyPlayed, error) {
	line = strings.TrimRight(line, "\r\n")
	if len(line) < datePrefixLen {
		return "", nil, &ParseError{Err: fmt.Errorf("line too short for date prefix (%d bytes)", len(line))}
	}

	parsed, err := time.Parse(backupDateLayout, line[:datePrefixLen])
	if err != nil {
		return "", nil, &ParseError{Err: fmt.Errorf("invalid date prefix %q: %w", line[:datePrefixLen], err)}
	}
	date := models.FormatDate(parsed)

	var envelope models.RecentlyPlayedEnvelope
	if err := json.Unmarshal([]byte(RepairQuotes(line[datePrefixLen:])), &envelope); err != nil {
		return date, nil, &ParseError{Err: fmt.Errorf("invalid document: %w", err)}
	}

	snapshot, err := envelope.Unwrap()
	if err != nil {
		return date, nil, err
	}
	return date, snapshot, nil
}
