// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

/*
Package cache provides a bounded, thread-safe TTL cache.

The API uses it to hold history responses between collections: every
successful sync or import clears it, and the TTL bounds staleness for writes
the API does not observe.

	c := cache.New[models.History](5*time.Minute, 10000)
	defer c.Close()

	key := cache.GenerateKey("history", req)
	if h, ok := c.Get(key); ok {
	    return h
	}

Expired entries are dropped lazily on Get and by a cleanup pass every five
minutes. When the cache is full, Set purges expired entries and otherwise
drops the new value rather than evicting a live one.
*/
package cache
