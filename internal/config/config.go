// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

package config

import (
	"fmt"
	"time"
)

// Config holds every setting the service reads at startup.
type Config struct {
	Steam    SteamConfig    `koanf:"steam"`
	Database DatabaseConfig `koanf:"database"`
	Sync     SyncConfig     `koanf:"sync"`
	Import   ImportConfig   `koanf:"import"`
	Events   EventsConfig   `koanf:"events"`
	Server   ServerConfig   `koanf:"server"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// SteamConfig configures the Steam Web API client and the tracked users.
type SteamConfig struct {
	APIKey         string        `koanf:"api_key"`
	BaseURL        string        `koanf:"base_url"`
	Users          []UserConfig  `koanf:"users"`
	RequestTimeout time.Duration `koanf:"request_timeout"`
	RateLimit      float64       `koanf:"rate_limit"` // requests per second
	RateBurst      int           `koanf:"rate_burst"`
	MaxRetries     int           `koanf:"max_retries"` // retries on HTTP 429
	RetryBaseDelay time.Duration `koanf:"retry_base_delay"`
	MaxRetryAfter  time.Duration `koanf:"max_retry_after"` // cap on a 429 wait, Retry-After included
}

// UserConfig is one tracked Steam account.
type UserConfig struct {
	ID       string `koanf:"id" validate:"required,steamid"`
	Username string `koanf:"username" validate:"required,username"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = runtime.NumCPU()
}

// SyncConfig holds the scheduled collection settings.
type SyncConfig struct {
	Interval      time.Duration `koanf:"interval"`
	RunOnStartup  bool          `koanf:"run_on_startup"`
	Timezone      string        `koanf:"timezone"` // IANA name used to pick the record date
	RetryAttempts int           `koanf:"retry_attempts"`
	RetryDelay    time.Duration `koanf:"retry_delay"`
}

// ImportConfig holds the legacy backup ingestion settings.
type ImportConfig struct {
	BackupDir    string `koanf:"backup_dir"`
	ProgressPath string `koanf:"progress_path"` // badger directory, empty = in-memory
	OnStartup    bool   `koanf:"on_startup"`
	Resume       bool   `koanf:"resume"`
}

// EventsConfig configures optional NATS notifications.
type EventsConfig struct {
	Enabled bool   `koanf:"enabled"`
	NATSURL string `koanf:"nats_url"`
	Subject string `koanf:"subject"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port    int           `koanf:"port"`
	Host    string        `koanf:"host"`
	Timeout time.Duration `koanf:"timeout"`

	// HistoryCacheTTL bounds how long a history response is reused; 0 disables the cache.
	HistoryCacheTTL        time.Duration `koanf:"history_cache_ttl"`
	HistoryCacheMaxEntries int           `koanf:"history_cache_max_entries"`
}

// SecurityConfig holds CORS and rate limiting settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Load reads defaults, the optional config file and the environment.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// Location returns the time zone used to stamp record dates.
func (s *SyncConfig) Location() *time.Location {
	if s.Timezone == "" || s.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Addr returns host:port for the HTTP listener.
func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Usernames returns the configured usernames in declaration order.
func (s *SteamConfig) Usernames() []string {
	names := make([]string, len(s.Users))
	for i, u := range s.Users {
		names[i] = u.Username
	}
	return names
}
