package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
)

// NATSPublisher publishes events as JSON on "{prefix}.{type}".
type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
	source string
}

var _ Publisher = (*NATSPublisher)(nil)

// NewNATSPublisher creates a publisher. source identifies this process so
// its own events can be skipped by its subscriber.
func NewNATSPublisher(conn *nats.Conn, prefix, source string) *NATSPublisher {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &NATSPublisher{conn: conn, prefix: prefix, source: source}
}

// Publish sends event. The context is checked before publishing only;
// core NATS publishes are fire-and-forget.
func (p *NATSPublisher) Publish(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	event.Source = p.source
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	if err := p.conn.Publish(Subject(p.prefix, event.Type), data); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
	}
	return nil
}

// Subscribe listens for SKU events on "{prefix}.>" and invalidates the
// product of every event not published by source.
func Subscribe(conn *nats.Conn, prefix, source string, invalidator Invalidator, logger *slog.Logger) (*nats.Subscription, error) {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}

	sub, err := conn.Subscribe(prefix+".>", Handler(source, invalidator, logger))
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s events: %w", prefix, err)
	}
	return sub, nil
}

// Handler returns the message handler used by Subscribe.
func Handler(source string, invalidator Invalidator, logger *slog.Logger) nats.MsgHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return func(msg *nats.Msg) {
		var event Event
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			logger.Warn("Discarding malformed SKU event",
				slog.String("subject", msg.Subject),
				slog.String("error", err.Error()),
			)
			return
		}

		if source != "" && event.Source == source {
			return
		}

		invalidator.InvalidateProduct(event.ProductID)
		logger.Debug("Invalidated SKU cache from event",
			slog.String("type", event.Type),
			slog.Int64("product_id", event.ProductID),
			slog.String("source", event.Source),
		)
	}
}
