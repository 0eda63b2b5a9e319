// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

/*
steam_client.go - Steam Web API Client

Client Features:
  - HTTP client with configurable timeout
  - API key authentication (never included in returned errors)
  - Client-side token bucket (golang.org/x/time/rate)
  - Automatic HTTP 429 handling with exponential backoff and Retry-After
  - Context support for cancellation and timeouts

Status Mapping:
  - 400: invalid-input (malformed SteamID)
  - 403: permission-denied (bad API key)
  - 404: lookup-failure (wrong endpoint)
  - 200 without a "response" object: schema-mismatch
  - anything else: unknown
*/

//nolint:staticcheck // File documentation, not package doc
package sync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/steamtime/internal/config"
	"github.com/tomtom215/steamtime/internal/metrics"
	"github.com/tomtom215/steamtime/internal/models"
)

// defaultMaxRetryAfter caps a single 429 wait when the configuration does not.
const defaultMaxRetryAfter = time.Minute

// maxErrorBodySize limits how much of an error response is read
const maxErrorBodySize = 64 * 1024

// readBodyForError reads at most maxErrorBodySize bytes for diagnostics
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}

// FeedSource returns the recently played snapshot for one Steam account.
type FeedSource interface {
	GetRecentlyPlayedGames(ctx context.Context, steamID string) (*models.RecentlyPlayed, error)
	Ping(ctx context.Context) error
}

// SteamClient handles communication with the Steam Web API.
//
// Thread Safety: Safe for concurrent use. The limiter is shared so concurrent
// callers together stay under the configured rate.
type SteamClient struct {
	baseURL        string
	apiKey         string
	client         *http.Client
	limiter        *rate.Limiter
	maxRetries     int
	retryBaseDelay time.Duration
	maxRetryAfter  time.Duration
}

// NewSteamClient creates a client from the Steam configuration.
func NewSteamClient(cfg *config.SteamConfig) *SteamClient {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 1
	}

	maxRetryAfter := cfg.MaxRetryAfter
	if maxRetryAfter <= 0 {
		maxRetryAfter = defaultMaxRetryAfter
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = config.DefaultSteamBaseURL
	}

	return &SteamClient{
		baseURL:        baseURL,
		apiKey:         cfg.APIKey,
		client:         &http.Client{Timeout: timeout},
		limiter:        rate.NewLimiter(limit, burst),
		maxRetries:     cfg.MaxRetries,
		retryBaseDelay: cfg.RetryBaseDelay,
		maxRetryAfter:  maxRetryAfter,
	}
}

// GetRecentlyPlayedGames fetches the games steamID played in the last two
// weeks. The returned snapshot has been validated; an empty snapshot (no
// games played) is returned without error.
func (c *SteamClient) GetRecentlyPlayedGames(ctx context.Context, steamID string) (*models.RecentlyPlayed, error) {
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("steamid", steamID)
	params.Set("format", "json")

	reqURL := fmt.Sprintf("%s/IPlayerService/GetRecentlyPlayedGames/v0001/?%s", c.baseURL, params.Encode())

	resp, err := c.doRequestWithRateLimit(ctx, reqURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body := readBodyForError(resp.Body)
		return nil, &FetchError{
			Kind:       KindFromStatus(resp.StatusCode),
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("GetRecentlyPlayedGames for %s: %s", steamID, strings.TrimSpace(string(body))),
		}
	}

	var envelope models.RecentlyPlayedEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, &FetchError{
			Kind:       KindSchemaMismatch,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("failed to decode GetRecentlyPlayedGames response: %w", err),
		}
	}

	snapshot, err := envelope.Unwrap()
	if err != nil {
		return nil, &FetchError{Kind: KindSchemaMismatch, StatusCode: resp.StatusCode, Err: err}
	}
	if err := snapshot.Validate(); err != nil {
		return snapshot, &FetchError{Kind: KindSchemaMismatch, StatusCode: resp.StatusCode, Err: err}
	}
	return snapshot, nil
}

// Ping checks that the Steam Web API answers. It does not use the API key.
func (c *SteamClient) Ping(ctx context.Context) error {
	resp, err := c.doRequestWithRateLimit(ctx, c.baseURL+"/ISteamWebAPIUtil/GetServerInfo/v0001/")
	if err != nil {
		return fmt.Errorf("failed to ping Steam: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &FetchError{
			Kind:       KindFromStatus(resp.StatusCode),
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("ping returned status %d", resp.StatusCode),
		}
	}
	return nil
}

// doRequestWithRateLimit performs a GET, waiting on the token bucket before
// each attempt and backing off exponentially on HTTP 429.
func (c *SteamClient) doRequestWithRateLimit(ctx context.Context, reqURL string) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		start := time.Now()
		resp, err := c.client.Do(req)
		if err != nil {
			metrics.RecordSteamRequest(0, time.Since(start))
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, &FetchError{Kind: KindUnknown, Err: redactURLError(err)}
		}
		metrics.RecordSteamRequest(resp.StatusCode, time.Since(start))

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		_ = resp.Body.Close()

		if attempt >= c.maxRetries {
			return nil, &FetchError{
				Kind:       KindUnknown,
				StatusCode: http.StatusTooManyRequests,
				Err:        fmt.Errorf("rate limit exceeded after %d retries", c.maxRetries),
			}
		}

		select {
		case <-time.After(c.retryDelay(attempt, resp.Header.Get("Retry-After"))):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// retryDelay is the wait before retrying a 429: the server's Retry-After when
// present, exponential backoff otherwise, never more than maxRetryAfter. The
// run lock is held while waiting.
func (c *SteamClient) retryDelay(attempt int, retryAfterHeader string) time.Duration {
	delay := backoffDelay(c.retryBaseDelay, attempt)
	if retryAfter := parseRetryAfter(retryAfterHeader); retryAfter > 0 {
		delay = retryAfter
	}
	if delay > c.maxRetryAfter {
		delay = c.maxRetryAfter
	}
	return delay
}

// backoffDelay returns base * 2^attempt.
func backoffDelay(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		base = time.Second
	}
	if attempt > 10 {
		attempt = 10
	}
	return base * time.Duration(1<<uint(attempt))
}

// parseRetryAfter accepts the delay-seconds form of Retry-After.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

// redactURLError drops the request URL, which carries the API key, from
// transport errors.
func redactURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s request failed: %w", urlErr.Op, urlErr.Err)
	}
	return err
}
