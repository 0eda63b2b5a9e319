// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/steamtime/internal/logging"
	"github.com/tomtom215/steamtime/internal/metrics"
	"github.com/tomtom215/steamtime/internal/models"
)

// CircuitBreakerClient wraps a FeedSource with the circuit breaker pattern so
// a Steam outage fails every remaining user fast instead of waiting out the
// HTTP timeout for each one.
//
// Client errors (bad SteamID, bad key, missing fields) are returned to the
// caller but do not count as breaker failures: they say nothing about Steam's
// availability.
type CircuitBreakerClient struct {
	client FeedSource
	cb     *gobreaker.CircuitBreaker[interface{}]
	name   string
}

// NewCircuitBreakerClient wraps client.
// Circuit breaker configuration:
//   - Max 3 concurrent requests in half-open state
//   - 1 minute measurement window
//   - 2 minute timeout before attempting recovery
//   - Opens after 60% failure rate with minimum 10 requests
func NewCircuitBreakerClient(client FeedSource) *CircuitBreakerClient {
	return newCircuitBreakerClient(client, "steam-api", gobreaker.Settings{
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}

			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6

			if shouldTrip {
				logging.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_rate", failureRatio*100).Msg("[CIRCUIT BREAKER] Opening circuit")
			}

			return shouldTrip
		},
	})
}

func newCircuitBreakerClient(client FeedSource, name string, settings gobreaker.Settings) *CircuitBreakerClient {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)

	settings.Name = name
	settings.IsSuccessful = countsAsSuccess
	settings.OnStateChange = func(name string, from, to gobreaker.State) {
		fromStr := stateToString(from)
		toStr := stateToString(to)

		logging.Info().Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

		metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()

		if to == gobreaker.StateClosed {
			metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
		}
	}

	return &CircuitBreakerClient{
		client: client,
		cb:     gobreaker.NewCircuitBreaker[interface{}](settings),
		name:   name,
	}
}

// countsAsSuccess keeps client errors and caller cancellation out of the
// breaker's failure count.
func countsAsSuccess(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return true
	}
	return Classify(err).IsClientError()
}

// execute runs fn under the breaker and records the outcome.
func (cbc *CircuitBreakerClient) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := cbc.cb.Execute(fn)

	switch {
	case err == nil:
		metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "success").Inc()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(cbc.name).Set(0)
	case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "rejected").Inc()
		logging.Warn().Err(err).Msg("[CIRCUIT BREAKER] Request rejected")
	case countsAsSuccess(err):
		metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "client_error").Inc()
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "failure").Inc()
		counts := cbc.cb.Counts()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(cbc.name).Set(float64(counts.ConsecutiveFailures))
	}

	return result, err
}

// GetRecentlyPlayedGames fetches a snapshot with circuit breaker protection.
// A snapshot that failed validation is still returned alongside its error.
func (cbc *CircuitBreakerClient) GetRecentlyPlayedGames(ctx context.Context, steamID string) (*models.RecentlyPlayed, error) {
	result, err := cbc.execute(func() (interface{}, error) {
		return cbc.client.GetRecentlyPlayedGames(ctx, steamID)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, &FetchError{Kind: KindUnknown, Err: fmt.Errorf("steam api unavailable: %w", err)}
	}
	snapshot, ok := result.(*models.RecentlyPlayed)
	if !ok && result != nil {
		return nil, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return snapshot, err
}

// Ping checks Steam with circuit breaker protection. It fails immediately
// while the circuit is open.
func (cbc *CircuitBreakerClient) Ping(ctx context.Context) error {
	_, err := cbc.execute(func() (interface{}, error) {
		return nil, cbc.client.Ping(ctx)
	})
	return err
}

// State returns the breaker state as "closed", "half-open" or "open".
func (cbc *CircuitBreakerClient) State() string {
	return stateToString(cbc.cb.State())
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to string for logging
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
