// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/tomtom215/steamtime/internal/config"
	"github.com/tomtom215/steamtime/internal/events"
	backupimport "github.com/tomtom215/steamtime/internal/import"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Steam: config.SteamConfig{
			Users: []config.UserConfig{
				{ID: "76561198000000001", Username: "alice"},
				{ID: "76561198000000002", Username: "bob"},
			},
		},
		Import: config.ImportConfig{BackupDir: t.TempDir()},
	}
}

func TestRootCommand(t *testing.T) {
	root := newRootCommand()

	want := map[string]bool{"serve": false, "import": false, "sync": false}
	for _, sub := range root.Commands() {
		if _, ok := want[sub.Name()]; ok {
			want[sub.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}

	importCmd, _, err := root.Find([]string{"import"})
	if err != nil {
		t.Fatalf("Find(import) error = %v", err)
	}
	if importCmd.Flags().Lookup("fresh") == nil {
		t.Error("import command has no --fresh flag")
	}
}

func TestInitEvents_Disabled(t *testing.T) {
	pub := InitEvents(&config.EventsConfig{Enabled: false})
	if _, ok := pub.(events.NopPublisher); !ok {
		t.Errorf("publisher = %T, want NopPublisher", pub)
	}
}

func TestInitImport_InMemoryProgress(t *testing.T) {
	components, err := InitImport(testConfig(t), nil, nil, nil, events.NopPublisher{})
	if err != nil {
		t.Fatalf("InitImport() error = %v", err)
	}
	defer components.Close()

	if _, ok := components.progress.(*backupimport.InMemoryProgress); !ok {
		t.Errorf("progress = %T, want in-memory", components.progress)
	}
	if components.Importer() == nil {
		t.Error("importer should not be nil")
	}
}

func TestInitImport_BadgerProgress(t *testing.T) {
	cfg := testConfig(t)
	cfg.Import.ProgressPath = filepath.Join(t.TempDir(), "progress")

	components, err := InitImport(cfg, nil, nil, nil, nil)
	if err != nil {
		t.Fatalf("InitImport() error = %v", err)
	}
	if _, ok := components.progress.(*backupimport.BadgerProgress); !ok {
		t.Errorf("progress = %T, want badger", components.progress)
	}
	if err := components.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestRunImportOnce_NoBackups(t *testing.T) {
	cfg := testConfig(t)
	components, err := InitImport(cfg, nil, nil, nil, nil)
	if err != nil {
		t.Fatalf("InitImport() error = %v", err)
	}
	defer components.Close()

	for _, fresh := range []bool{false, true} {
		if err := RunImportOnce(context.Background(), cfg, components.Importer(), fresh); err != nil {
			t.Errorf("RunImportOnce(fresh=%v) error = %v", fresh, err)
		}
	}
}
