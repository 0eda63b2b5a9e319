// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/tomtom215/steamtime/internal/validation"
)

var validLogLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "error": true,
}

var validLogFormats = map[string]bool{
	"json": true, "console": true,
}

// Validate checks that required configuration is present and consistent.
func (c *Config) Validate() error {
	if err := c.validateSteam(); err != nil {
		return err
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateSync(); err != nil {
		return err
	}
	if err := c.validateImport(); err != nil {
		return err
	}
	if err := c.validateEvents(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateSteam() error {
	if c.Steam.APIKey == "" {
		return fmt.Errorf("STEAM_API_KEY is required")
	}
	if err := validateHTTPURL(c.Steam.BaseURL, "STEAM_BASE_URL"); err != nil {
		return err
	}
	if len(c.Steam.Users) == 0 {
		return fmt.Errorf("at least one tracked user is required (steam.users or STEAM_USERS)")
	}
	if c.Steam.RateLimit <= 0 {
		return fmt.Errorf("STEAM_RATE_LIMIT must be positive")
	}
	if c.Steam.MaxRetries < 0 {
		return fmt.Errorf("STEAM_MAX_RETRIES must not be negative")
	}
	if c.Steam.MaxRetryAfter < 0 {
		return fmt.Errorf("STEAM_MAX_RETRY_AFTER must not be negative")
	}
	return c.validateUsers()
}

func (c *Config) validateUsers() error {
	seenIDs := make(map[string]bool, len(c.Steam.Users))
	seenNames := make(map[string]bool, len(c.Steam.Users))

	for i := range c.Steam.Users {
		user := &c.Steam.Users[i]
		if err := validation.ValidateStruct(user); err != nil {
			return fmt.Errorf("steam.users[%d]: %w", i, err)
		}
		if seenIDs[user.ID] {
			return fmt.Errorf("steam.users[%d]: duplicate id %s", i, user.ID)
		}
		if seenNames[user.Username] {
			return fmt.Errorf("steam.users[%d]: duplicate username %s", i, user.Username)
		}
		seenIDs[user.ID] = true
		seenNames[user.Username] = true
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must not be negative")
	}
	return nil
}

func (c *Config) validateSync() error {
	if c.Sync.Interval < time.Minute {
		return fmt.Errorf("SYNC_INTERVAL must be at least 1m, got %s", c.Sync.Interval)
	}
	if c.Sync.RetryAttempts < 0 {
		return fmt.Errorf("SYNC_RETRY_ATTEMPTS must not be negative")
	}
	if c.Sync.Timezone != "" && c.Sync.Timezone != "Local" {
		if _, err := time.LoadLocation(c.Sync.Timezone); err != nil {
			return fmt.Errorf("SYNC_TIMEZONE is invalid: %w", err)
		}
	}
	return nil
}

func (c *Config) validateImport() error {
	if c.Import.OnStartup && c.Import.BackupDir == "" {
		return fmt.Errorf("BACKUP_DIR is required when IMPORT_ON_STARTUP=true")
	}
	return nil
}

func (c *Config) validateEvents() error {
	if !c.Events.Enabled {
		return nil
	}
	if c.Events.NATSURL == "" {
		return fmt.Errorf("NATS_URL is required when EVENTS_ENABLED=true")
	}
	if !strings.HasPrefix(c.Events.NATSURL, "nats://") && !strings.HasPrefix(c.Events.NATSURL, "tls://") {
		return fmt.Errorf("NATS_URL must use the nats:// or tls:// scheme")
	}
	if c.Events.Subject == "" {
		return fmt.Errorf("EVENTS_SUBJECT is required when EVENTS_ENABLED=true")
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.HistoryCacheTTL < 0 {
		return fmt.Errorf("HISTORY_CACHE_TTL must not be negative")
	}
	if c.Server.HistoryCacheMaxEntries < 0 {
		return fmt.Errorf("HISTORY_CACHE_MAX_ENTRIES must not be negative")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1")
	}
	if c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

func validateHTTPURL(rawURL, fieldName string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %s", fieldName, parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("%s host is required", fieldName)
	}
	if parsedURL.Path != "" && parsedURL.Path != "/" {
		return fmt.Errorf("%s should be base URL only, remove path: %s", fieldName, parsedURL.Path)
	}
	return nil
}
