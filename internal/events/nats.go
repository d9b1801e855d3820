package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// conn is the subset of *nats.Conn the publisher uses.
type conn interface {
	Publish(subj string, data []byte) error
	Drain() error
}

// NATSPublisher publishes events as JSON on core NATS subjects.
type NATSPublisher struct {
	nc     conn
	prefix string
	logger zerolog.Logger
}

var _ Publisher = (*NATSPublisher)(nil)

// ConnectNATS dials url and returns a publisher for subjects under prefix.
func ConnectNATS(url, prefix string, logger zerolog.Logger) (*NATSPublisher, error) {
	logger = logger.With().Str("component", "events").Logger()
	nc, err := nats.Connect(url,
		nats.Name("harvansh-cart"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn().Err(err).Msg("nats disconnected")
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info().Str("url", c.ConnectedUrl()).Msg("nats reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	return newNATSPublisher(nc, prefix, logger), nil
}

func newNATSPublisher(nc conn, prefix string, logger zerolog.Logger) *NATSPublisher {
	if prefix == "" {
		prefix = "harvansh.cart"
	}
	return &NATSPublisher{nc: nc, prefix: prefix, logger: logger}
}

// Subject returns the subject an event of type t is published on.
func (p *NATSPublisher) Subject(t string) string {
	return p.prefix + "." + t
}

func (p *NATSPublisher) Publish(ctx context.Context, e Event) error {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", e.Type, err)
	}
	if err := p.nc.Publish(p.Subject(e.Type), data); err != nil {
		return fmt.Errorf("publish %s event: %w", e.Type, err)
	}
	return nil
}

// Close flushes buffered messages and closes the connection.
func (p *NATSPublisher) Close() error {
	return p.nc.Drain()
}
