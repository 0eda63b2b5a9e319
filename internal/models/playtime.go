// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

package models

import (
	"strings"
	"time"
	"unicode"
)

// DateLayout is the record date format. It sorts lexically in date order.
const DateLayout = "2006/01/02"

// FormatDate renders t in the record date format.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// PlaytimeRecord is one row of the data table. Times are minutes as reported
// by Steam. DailyTime may be negative when the upstream total regresses.
type PlaytimeRecord struct {
	Date          string  `json:"date"`
	Username      string  `json:"username"`
	AppID         int64   `json:"appid"`
	TotalTime     float64 `json:"total_time"`
	DailyTime     float64 `json:"daily_time"`
	FortnightTime float64 `json:"fortnight_time"`
}

// GameInfo is one row of the games table. Name and FormattedName are nil
// together until Steam reports a name for the app.
type GameInfo struct {
	AppID         int64   `json:"appid"`
	Name          *string `json:"name"`
	FormattedName *string `json:"formatted_name"`
}

// GameSeries holds parallel, date-ordered sequences for one user and game.
type GameSeries struct {
	Dates     []string  `json:"dates"`
	TotalTime []float64 `json:"total_time"`
	DailyTime []float64 `json:"daily_time"`
}

// Append adds one observation to the series.
func (s *GameSeries) Append(date string, total, daily float64) {
	s.Dates = append(s.Dates, date)
	s.TotalTime = append(s.TotalTime, total)
	s.DailyTime = append(s.DailyTime, daily)
}

// Len returns the number of observations.
func (s *GameSeries) Len() int {
	return len(s.Dates)
}

// History maps username -> game display name -> series.
type History map[string]map[string]*GameSeries

// Add appends one observation, creating the nested entries as needed.
func (h History) Add(username, gameName, date string, total, daily float64) {
	games, ok := h[username]
	if !ok {
		games = make(map[string]*GameSeries)
		h[username] = games
	}
	series, ok := games[gameName]
	if !ok {
		series = &GameSeries{}
		games[gameName] = series
	}
	series.Append(date, total, daily)
}

// FormatGameName returns the lowercase, letters-and-digits-only projection of
// name used to match game names regardless of case and punctuation.
//
//	FormatGameName("Counter-Strike 2") == "counterstrike2"
func FormatGameName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteString(strings.ToLower(string(r)))
		}
	}
	return b.String()
}

// CleanFeedName strips literal apostrophes from a feed game name before it is
// stored, so names read from repaired backups and from the live API agree.
func CleanFeedName(name string) string {
	return strings.ReplaceAll(name, "'", "")
}
