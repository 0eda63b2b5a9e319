// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestSlogHandler_WritesThroughZerolog(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	slogger := slog.New(NewSlogHandlerWithLogger(zerolog.New(&buf)))

	slogger.Warn("service restarted",
		"service", "sync",
		"attempt", 3,
		"backoff", 15*time.Second,
		"healthy", false,
	)

	output := buf.String()
	for _, want := range []string{
		`"level":"warn"`,
		`"message":"service restarted"`,
		`"service":"sync"`,
		`"attempt":3`,
		`"healthy":false`,
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %s in output: %s", want, output)
		}
	}
}

func TestSlogHandler_GroupsAndAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	handler := NewSlogHandlerWithLogger(zerolog.New(&buf)).
		WithAttrs([]slog.Attr{slog.String("tree", "root")}).
		WithGroup("supervisor")

	slog.New(handler).Info("event", "name", "api")

	output := buf.String()
	if !strings.Contains(output, `"supervisor.tree":"root"`) {
		t.Errorf("expected grouped pre-set attr, got: %s", output)
	}
	if !strings.Contains(output, `"supervisor.name":"api"`) {
		t.Errorf("expected grouped record attr, got: %s", output)
	}
}

func TestSlogHandler_Enabled(t *testing.T) {
	t.Parallel()

	handler := NewSlogHandlerWithLogger(zerolog.New(&bytes.Buffer{}).Level(zerolog.WarnLevel))
	ctx := context.Background()

	if handler.Enabled(ctx, slog.LevelInfo) {
		t.Error("info should be disabled for a warn-level logger")
	}
	if !handler.Enabled(ctx, slog.LevelError) {
		t.Error("error should be enabled for a warn-level logger")
	}
}

func TestSlogToZerologLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   slog.Level
		want zerolog.Level
	}{
		{slog.LevelDebug - 4, zerolog.TraceLevel},
		{slog.LevelDebug, zerolog.DebugLevel},
		{slog.LevelInfo, zerolog.InfoLevel},
		{slog.LevelWarn, zerolog.WarnLevel},
		{slog.LevelError, zerolog.ErrorLevel},
	}
	for _, tt := range tests {
		if got := slogToZerologLevel(tt.in); got != tt.want {
			t.Errorf("slogToZerologLevel(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
