// Steamtime - Steam Playtime Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/steamtime

//go:build nats

package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	natsgo "github.com/nats-io/nats.go"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/steamtime/internal/config"
	"github.com/tomtom215/steamtime/internal/logging"
	"github.com/tomtom215/steamtime/internal/metrics"
)

// NATSPublisher publishes events to NATS JetStream through Watermill.
type NATSPublisher struct {
	publisher      message.Publisher
	circuitBreaker *gobreaker.CircuitBreaker[interface{}]
	subject        string
	mu             sync.RWMutex
	closed         bool
}

// NewNATSPublisher connects to cfg.NATSURL and returns a publisher for
// cfg.Subject. The JetStream stream is provisioned on first publish.
func NewNATSPublisher(cfg *config.EventsConfig) (*NATSPublisher, error) {
	logger := NewWatermillLogger()

	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.DisconnectErrHandler(func(nc *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{
				"url": nc.ConnectedUrl(),
			})
		}),
	}

	wmConfig := wmNats.PublisherConfig{
		URL:         cfg.NATSURL,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:      false,
			AutoProvision: true,
			TrackMsgId:    true,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}

	pub, err := wmNats.NewPublisher(wmConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill publisher: %w", err)
	}

	subject := cfg.Subject
	if subject == "" {
		subject = DefaultSubject
	}

	return &NATSPublisher{
		publisher:      pub,
		circuitBreaker: newPublishBreaker(),
		subject:        subject,
	}, nil
}

// newPublishBreaker opens after 5 consecutive publish failures and probes
// again after 30 seconds.
func newPublishBreaker() *gobreaker.CircuitBreaker[interface{}] {
	return gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        "nats-publisher",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("[CIRCUIT BREAKER] State transition")
		},
	})
}

// PublishUserSynced publishes event with its EventID as the Nats-Msg-Id so
// JetStream drops redeliveries.
func (p *NATSPublisher) PublishUserSynced(ctx context.Context, event *UserSyncedEvent) error {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return fmt.Errorf("publisher is closed")
	}
	p.mu.RUnlock()

	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}

	data, err := event.Marshal()
	if err != nil {
		return fmt.Errorf("serialize event: %w", err)
	}

	msg := message.NewMessage(event.EventID, data)
	msg.SetContext(ctx)
	msg.Metadata.Set(natsgo.MsgIdHdr, event.EventID)
	msg.Metadata.Set("username", event.Username)
	msg.Metadata.Set("date", event.Date)

	_, err = p.circuitBreaker.Execute(func() (interface{}, error) {
		return nil, p.publisher.Publish(p.subject, msg)
	})
	metrics.RecordEventPublish(err)
	return err
}

// Close shuts down the underlying publisher.
func (p *NATSPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	return p.publisher.Close()
}
