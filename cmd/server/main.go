// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

package main

import (
	"os"

	"github.com/tomtom215/steamtime/internal/logging"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		logging.Error().Err(err).Msg("steamtime exited with error")
		os.Exit(1)
	}
}
