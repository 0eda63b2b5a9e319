// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

package cache

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

const cleanupInterval = 5 * time.Minute

// Entry is a cached value with its expiry.
type Entry[V any] struct {
	Value     V
	ExpiresAt time.Time
}

// Stats tracks cache effectiveness.
type Stats struct {
	Hits        int64
	Misses      int64
	Evictions   int64
	Rejected    int64 // Set calls dropped because the cache was full
	TotalKeys   int64
	LastCleanup time.Time
}

// Cache is a thread-safe TTL cache holding at most maxEntries values.
type Cache[V any] struct {
	mu         sync.RWMutex
	entries    map[string]Entry[V]
	ttl        time.Duration
	maxEntries int
	stats      Stats
	now        func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// New creates a cache and starts its background cleanup. Close stops the
// cleanup goroutine. maxEntries <= 0 means unbounded.
//
//	c := cache.New[models.History](5*time.Minute, 10000)
//	defer c.Close()
//	c.Set(key, history)
func New[V any](ttl time.Duration, maxEntries int) *Cache[V] {
	c := &Cache[V]{
		entries:    make(map[string]Entry[V]),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
		stop:       make(chan struct{}),
	}
	c.stats.LastCleanup = c.now()

	go c.cleanupLoop()
	return c
}

// Get returns the value for key if it exists and has not expired. An expired
// entry is removed and counted as a miss.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if ok && c.now().Before(entry.ExpiresAt) {
		c.mu.Lock()
		c.stats.Hits++
		c.mu.Unlock()
		return entry.Value, true
	}

	c.mu.Lock()
	c.stats.Misses++
	if ok {
		// Re-check under the write lock; a concurrent Set may have refreshed it.
		if current, still := c.entries[key]; still && !c.now().Before(current.ExpiresAt) {
			delete(c.entries, key)
			c.stats.Evictions++
		}
	}
	c.mu.Unlock()

	var zero V
	return zero, false
}

// Set stores value under key with the default TTL.
func (c *Cache[V]) Set(key string, value V) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores value under key for ttl. When the cache is full, expired
// entries are purged first; if it is still full the value is not stored.
func (c *Cache[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		c.purgeExpiredLocked()
		if len(c.entries) >= c.maxEntries {
			c.stats.Rejected++
			return
		}
	}

	c.entries[key] = Entry[V]{Value: value, ExpiresAt: c.now().Add(ttl)}
	c.stats.TotalKeys = int64(len(c.entries))
}

// Delete removes key.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		delete(c.entries, key)
		c.stats.Evictions++
		c.stats.TotalKeys = int64(len(c.entries))
	}
}

// Clear removes every entry.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.Evictions += int64(len(c.entries))
	c.entries = make(map[string]Entry[V])
	c.stats.TotalKeys = 0
}

// Len returns the number of stored entries, expired or not.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// GetStats returns a snapshot of the statistics.
func (c *Cache[V]) GetStats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

// HitRate returns hits as a percentage of lookups.
func (c *Cache[V]) HitRate() float64 {
	stats := c.GetStats()
	total := stats.Hits + stats.Misses
	if total == 0 {
		return 0.0
	}
	return float64(stats.Hits) / float64(total) * 100.0
}

// Close stops the cleanup goroutine. It is safe to call more than once.
func (c *Cache[V]) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *Cache[V]) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

func (c *Cache[V]) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.purgeExpiredLocked()
}

func (c *Cache[V]) purgeExpiredLocked() {
	now := c.now()
	for key, entry := range c.entries {
		if !now.Before(entry.ExpiresAt) {
			delete(c.entries, key)
			c.stats.Evictions++
		}
	}
	c.stats.TotalKeys = int64(len(c.entries))
	c.stats.LastCleanup = now
}

// GenerateKey builds a compact key from a method name and its parameters.
func GenerateKey(method string, params interface{}) string {
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Sprintf("%s:%v", method, params)
	}
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%x", method, hash[:16])
}
