// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

/*
Package config loads and validates Steamtime configuration.

Configuration is read once at startup in three layers, each overriding the
previous one:

 1. Built-in defaults (defaultConfig)
 2. An optional YAML file: $CONFIG_PATH, ./config.yaml or /etc/steamtime/config.yaml
 3. Environment variables listed in envMappings

Example config.yaml:

	steam:
	  api_key: "XXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXX"
	  users:
	    - id: "76561197960287930"
	      username: alice
	    - id: "76561197960287931"
	      username: bob
	database:
	  path: /data/steamtime.duckdb
	sync:
	  interval: 1h
	import:
	  backup_dir: /data/backups

The tracked users can also be supplied through the environment as
STEAM_USERS="76561197960287930:alice,76561197960287931:bob".

Load returns an error when any section fails validation; main treats that as
fatal.
*/
package config
