// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

package errorlog

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/tomtom215/steamtime/internal/database"
	"github.com/tomtom215/steamtime/internal/models"
)

// ErrDuplicateID is returned by a Store when the event id already exists.
var ErrDuplicateID = errors.New("duplicate error event id")

// Store persists error events.
type Store interface {
	Save(ctx context.Context, event *models.ErrorEvent) error
	Recent(ctx context.Context, limit int) ([]models.ErrorEvent, error)
}

// DuckDBStore implements Store on the errors table.
type DuckDBStore struct {
	db *database.DB
}

// NewDuckDBStore creates a store backed by db.
func NewDuckDBStore(db *database.DB) *DuckDBStore {
	return &DuckDBStore{db: db}
}

// Save inserts the event.
func (s *DuckDBStore) Save(ctx context.Context, event *models.ErrorEvent) error {
	err := s.db.InsertErrorEvent(ctx, event)
	if errors.Is(err, database.ErrDuplicateKey) {
		return fmt.Errorf("%w: %s", ErrDuplicateID, event.ID)
	}
	return err
}

// Recent returns up to limit events, newest first.
func (s *DuckDBStore) Recent(ctx context.Context, limit int) ([]models.ErrorEvent, error) {
	return s.db.ListErrorEvents(ctx, limit)
}

// MemoryStore implements Store in memory.
// Suitable for development and testing. Data is lost on restart.
type MemoryStore struct {
	events []models.ErrorEvent
	ids    map[string]struct{}
	mu     sync.RWMutex
	maxLen int
}

// NewMemoryStore creates an in-memory store holding at most maxLen events.
func NewMemoryStore(maxLen int) *MemoryStore {
	if maxLen <= 0 {
		maxLen = 10000
	}
	return &MemoryStore{
		events: make([]models.ErrorEvent, 0, 16),
		ids:    make(map[string]struct{}),
		maxLen: maxLen,
	}
}

// Save stores the event, evicting the oldest 10% when full.
func (s *MemoryStore) Save(ctx context.Context, event *models.ErrorEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.ids[event.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateID, event.ID)
	}

	if len(s.events) >= s.maxLen {
		removeCount := s.maxLen / 10
		if removeCount == 0 {
			removeCount = 1
		}
		for _, old := range s.events[:removeCount] {
			delete(s.ids, old.ID)
		}
		s.events = s.events[removeCount:]
	}

	s.events = append(s.events, *event)
	s.ids[event.ID] = struct{}{}
	return nil
}

// Recent returns up to limit events, newest first.
func (s *MemoryStore) Recent(ctx context.Context, limit int) ([]models.ErrorEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.events) {
		limit = len(s.events)
	}
	out := make([]models.ErrorEvent, 0, limit)
	for i := len(s.events) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.events[i])
	}
	return out, nil
}

// Len returns the number of stored events.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}
