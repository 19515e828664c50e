// Package events delivers domain events to the message broker. Delivery
// guarantees live here and in the outbox relay; the transfer core only
// constructs events and hands them over.
package events

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Exchange is the durable topic exchange domain events are published to.
// Event kinds double as routing keys, e.g. "transfer.status_changed".
const Exchange = "transfer_events"

// Publisher is the event sink contract. Publish is fire-and-forget from the
// caller's perspective; redelivery of failed publishes is the relay's job.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload []byte) error
	Close()
}

// NoopPublisher is used when the broker is unavailable at startup. Events
// stay in the outbox until a real publisher drains them.
type NoopPublisher struct {
	logger *zap.Logger
}

func NewNoopPublisher(logger *zap.Logger) *NoopPublisher {
	return &NoopPublisher{logger: logger}
}

func (p *NoopPublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	p.logger.Warn("event publish skipped, broker unavailable", zap.String("routing_key", routingKey))
	return fmt.Errorf("event sink unavailable")
}

func (p *NoopPublisher) Close() {}
