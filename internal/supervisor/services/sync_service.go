// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

package services

import (
	"context"
	"fmt"
)

// StartStopManager is the lifecycle of *sync.Manager.
type StartStopManager interface {
	Start(ctx context.Context) error
	Stop() error
}

// SyncService runs the periodic collection loop under supervision.
//
// Serve starts the manager, blocks until ctx is canceled, then stops it.
// Stop waits for an in-flight run to return, so a shutdown never leaves a
// half-written user snapshot.
type SyncService struct {
	manager StartStopManager
	name    string
}

// NewSyncService wraps manager.
//
//	mgr := intsync.NewManager(db, breakerClient, reporter, cfg, lock)
//	tree.AddCollectionService(services.NewSyncService(mgr))
func NewSyncService(manager StartStopManager) *SyncService {
	return &SyncService{
		manager: manager,
		name:    "sync-manager",
	}
}

// Serve implements suture.Service. A Start failure is returned so the
// supervisor retries with backoff.
func (s *SyncService) Serve(ctx context.Context) error {
	if err := s.manager.Start(ctx); err != nil {
		return fmt.Errorf("sync manager start failed: %w", err)
	}

	<-ctx.Done()

	if err := s.manager.Stop(); err != nil {
		return fmt.Errorf("sync manager stop failed: %w", err)
	}
	return ctx.Err()
}

// String implements fmt.Stringer for suture's log events.
func (s *SyncService) String() string {
	return s.name
}
