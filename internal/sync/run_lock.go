// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

package sync

import "context"

// RunLock serializes collection and import runs within the process. A second
// insert for the same (date, username, appid) is a hard failure, so two runs
// must never overlap.
type RunLock struct {
	ch chan struct{}
}

// NewRunLock creates an unlocked RunLock.
func NewRunLock() *RunLock {
	return &RunLock{ch: make(chan struct{}, 1)}
}

// TryAcquire takes the lock if it is free.
func (l *RunLock) TryAcquire() bool {
	select {
	case l.ch <- struct{}{}:
		return true
	default:
		return false
	}
}

// Acquire blocks until the lock is taken or ctx is done.
func (l *RunLock) Acquire(ctx context.Context) error {
	select {
	case l.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees the lock. It must only be called by the holder.
func (l *RunLock) Release() {
	<-l.ch
}

// Held reports whether a run currently holds the lock.
func (l *RunLock) Held() bool {
	return len(l.ch) == 1
}
