// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

package models

import "fmt"

// MissingFieldError reports a feed document that lacks a field every
// snapshot must carry.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("feed is missing required field %q", e.Field)
}

// RecentlyPlayedEnvelope is the top-level GetRecentlyPlayedGames document.
// Response is nil when the "response" key is absent.
type RecentlyPlayedEnvelope struct {
	Response *RecentlyPlayed `json:"response"`
}

// Unwrap returns the inner snapshot or a MissingFieldError.
func (e *RecentlyPlayedEnvelope) Unwrap() (*RecentlyPlayed, error) {
	if e.Response == nil {
		return nil, &MissingFieldError{Field: "response"}
	}
	return e.Response, nil
}

// RecentlyPlayed is one feed snapshot for one user. Steam returns an empty
// object when the user played nothing in the last two weeks, so TotalCount
// is nil in that case.
type RecentlyPlayed struct {
	TotalCount *int       `json:"total_count,omitempty"`
	Games      []FeedGame `json:"games,omitempty"`
}

// IsEmpty reports whether the snapshot carries nothing to record.
func (r *RecentlyPlayed) IsEmpty() bool {
	if r == nil || r.TotalCount == nil {
		return true
	}
	return *r.TotalCount == 0
}

// Validate checks that every game carries the fields reconciliation needs.
func (r *RecentlyPlayed) Validate() error {
	if r.IsEmpty() {
		return nil
	}
	if r.Games == nil {
		return &MissingFieldError{Field: "games"}
	}
	for i := range r.Games {
		if err := r.Games[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// FeedGame is one entry of the games array. Name is optional upstream.
type FeedGame struct {
	AppID           *int64   `json:"appid"`
	Name            *string  `json:"name,omitempty"`
	PlaytimeForever *float64 `json:"playtime_forever"`
	Playtime2Weeks  *float64 `json:"playtime_2weeks"`
	ImgIconURL      string   `json:"img_icon_url,omitempty"`
}

// Validate reports the first missing required field.
func (g *FeedGame) Validate() error {
	switch {
	case g.AppID == nil:
		return &MissingFieldError{Field: "appid"}
	case g.PlaytimeForever == nil:
		return &MissingFieldError{Field: "playtime_forever"}
	case g.Playtime2Weeks == nil:
		return &MissingFieldError{Field: "playtime_2weeks"}
	}
	return nil
}

// StoredName returns the name to persist for this game, or nil when the feed
// omitted it.
func (g *FeedGame) StoredName() *string {
	if g.Name == nil {
		return nil
	}
	name := CleanFeedName(*g.Name)
	return &name
}
