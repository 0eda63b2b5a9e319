// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order; the first existing file wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/steamtime/config.yaml",
	"/etc/steamtime/config.yml",
}

// ConfigPathEnvVar overrides the config file search.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultSteamBaseURL is the public Steam Web API host.
const DefaultSteamBaseURL = "https://api.steampowered.com"

func defaultConfig() *Config {
	return &Config{
		Steam: SteamConfig{
			BaseURL:        DefaultSteamBaseURL,
			RequestTimeout: 30 * time.Second,
			RateLimit:      1,
			RateBurst:      5,
			MaxRetries:     5,
			RetryBaseDelay: time.Second,
			MaxRetryAfter:  time.Minute,
		},
		Database: DatabaseConfig{
			Path:      "/data/steamtime.duckdb",
			MaxMemory: "512MB",
		},
		Sync: SyncConfig{
			Interval:      time.Hour,
			RunOnStartup:  true,
			Timezone:      "Local",
			RetryAttempts: 3,
			RetryDelay:    2 * time.Second,
		},
		Import: ImportConfig{
			BackupDir:    "backups",
			ProgressPath: "/data/import-progress",
			Resume:       true,
		},
		Events: EventsConfig{
			NATSURL: "nats://127.0.0.1:4222",
			Subject: "steamtime.user.synced",
		},
		Server: ServerConfig{
			Port:    8080,
			Host:    "0.0.0.0",
			Timeout: 30 * time.Second,

			HistoryCacheTTL:        5 * time.Minute,
			HistoryCacheMaxEntries: 10000,
		},
		Security: SecurityConfig{
			CORSOrigins:     []string{},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadWithKoanf layers defaults, the config file and environment variables,
// then validates the result.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}
	if err := processUsersField(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths accept comma separated strings from the environment.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		if err := k.Set(path, splitList(strVal)); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// processUsersField expands STEAM_USERS ("id:username,id:username") into the
// list-of-maps shape the YAML file produces.
func processUsersField(k *koanf.Koanf) error {
	strVal, ok := k.Get("steam.users").(string)
	if !ok {
		return nil
	}

	entries := splitList(strVal)
	users := make([]map[string]interface{}, 0, len(entries))
	for _, entry := range entries {
		id, username, found := strings.Cut(entry, ":")
		if !found {
			return fmt.Errorf("STEAM_USERS entry %q must be formatted as id:username", entry)
		}
		users = append(users, map[string]interface{}{
			"id":       strings.TrimSpace(id),
			"username": strings.TrimSpace(username),
		})
	}

	if err := k.Set("steam.users", users); err != nil {
		return fmt.Errorf("failed to set steam.users: %w", err)
	}
	return nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// envMappings maps lowercased environment variable names to koanf paths.
// Variables not listed here are ignored.
var envMappings = map[string]string{
	"steam_api_key":          "steam.api_key",
	"steam_base_url":         "steam.base_url",
	"steam_users":            "steam.users",
	"steam_request_timeout":  "steam.request_timeout",
	"steam_rate_limit":       "steam.rate_limit",
	"steam_rate_burst":       "steam.rate_burst",
	"steam_max_retries":      "steam.max_retries",
	"steam_retry_base_delay": "steam.retry_base_delay",
	"steam_max_retry_after":  "steam.max_retry_after",

	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",

	"sync_interval":       "sync.interval",
	"sync_on_startup":     "sync.run_on_startup",
	"sync_timezone":       "sync.timezone",
	"sync_retry_attempts": "sync.retry_attempts",
	"sync_retry_delay":    "sync.retry_delay",

	"backup_dir":           "import.backup_dir",
	"import_progress_path": "import.progress_path",
	"import_on_startup":    "import.on_startup",
	"import_resume":        "import.resume",

	"events_enabled": "events.enabled",
	"nats_url":       "events.nats_url",
	"events_subject": "events.subject",

	"http_port":    "server.port",
	"http_host":    "server.host",
	"http_timeout": "server.timeout",

	"history_cache_ttl":         "server.history_cache_ttl",
	"history_cache_max_entries": "server.history_cache_max_entries",

	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
