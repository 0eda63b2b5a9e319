// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

package backupimport

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// progressKeyPrefix prefixes the per-user BadgerDB progress keys.
const progressKeyPrefix = "import:backup:"

func progressKey(username string) []byte {
	return []byte(progressKeyPrefix + username)
}

// ProgressTracker persists per-user import progress.
type ProgressTracker interface {
	// Save persists the progress of stats.Username.
	Save(ctx context.Context, stats *ImportStats) error

	// Load returns the last saved progress, or nil, nil when none exists.
	Load(ctx context.Context, username string) (*ImportStats, error)

	// Clear removes saved progress so the next import starts at line 1.
	Clear(ctx context.Context, username string) error
}

// BadgerProgress implements ProgressTracker using BadgerDB for persistence.
// This enables resumable imports across application restarts.
type BadgerProgress struct {
	db    *badger.DB
	owned bool
}

// NewBadgerProgress creates a progress tracker using the provided BadgerDB
// instance. The caller keeps ownership of db.
func NewBadgerProgress(db *badger.DB) *BadgerProgress {
	return &BadgerProgress{db: db}
}

// OpenBadgerProgress opens (or creates) a BadgerDB at dir for progress
// tracking. Close releases it.
func OpenBadgerProgress(dir string) (*BadgerProgress, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create progress directory: %w", err)
	}

	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open progress store: %w", err)
	}
	return &BadgerProgress{db: db, owned: true}, nil
}

// Save persists the current import progress to BadgerDB.
func (p *BadgerProgress) Save(_ context.Context, stats *ImportStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}

	return p.db.Update(func(txn *badger.Txn) error {
		return txn.Set(progressKey(stats.Username), data)
	})
}

// Load retrieves the last saved import progress from BadgerDB.
// Returns nil if no progress has been saved.
func (p *BadgerProgress) Load(_ context.Context, username string) (*ImportStats, error) {
	var (
		stats ImportStats
		found bool
	)

	err := p.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(progressKey(username))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &stats)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &stats, nil
}

// Clear removes saved progress from BadgerDB.
func (p *BadgerProgress) Clear(_ context.Context, username string) error {
	return p.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete(progressKey(username))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

// Close closes the underlying BadgerDB when it was opened by
// OpenBadgerProgress.
func (p *BadgerProgress) Close() error {
	if !p.owned {
		return nil
	}
	return p.db.Close()
}

// InMemoryProgress implements ProgressTracker using in-memory storage.
// This is useful for testing or when persistence is not required.
type InMemoryProgress struct {
	mu    sync.Mutex
	stats map[string]ImportStats
}

// NewInMemoryProgress creates a new in-memory progress tracker.
func NewInMemoryProgress() *InMemoryProgress {
	return &InMemoryProgress{stats: make(map[string]ImportStats)}
}

// Save stores a copy of the progress in memory.
func (p *InMemoryProgress) Save(_ context.Context, stats *ImportStats) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stats[stats.Username] = *stats
	return nil
}

// Load retrieves a copy of the progress from memory.
func (p *InMemoryProgress) Load(_ context.Context, username string) (*ImportStats, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	stats, ok := p.stats[username]
	if !ok {
		return nil, nil
	}
	return &stats, nil
}

// Clear removes the stored progress.
func (p *InMemoryProgress) Clear(_ context.Context, username string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.stats, username)
	return nil
}
