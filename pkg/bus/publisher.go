package bus

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/streadway/amqp"

	"github.com/marmos91/photovault/internal/logger"
	"github.com/marmos91/photovault/internal/telemetry"
)

// Publisher publishes pipeline messages on a confirmed channel. Publisher
// confirms give at-least-once delivery into the broker; consumers own
// idempotence from there.
type Publisher struct {
	bus *Bus

	mu       sync.Mutex
	ch       *amqp.Channel
	confirms chan amqp.Confirmation
}

// NewPublisher opens a confirmed channel for publishing.
func NewPublisher(bus *Bus) (*Publisher, error) {
	p := &Publisher{bus: bus}
	if err := p.reopen(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Publisher) reopen() error {
	ch, err := p.bus.Channel()
	if err != nil {
		return err
	}
	if err := ch.Confirm(false); err != nil {
		ch.Close()
		return fmt.Errorf("failed to enable confirms: %w", err)
	}
	p.ch = ch
	p.confirms = ch.NotifyPublish(make(chan amqp.Confirmation, 1))
	return nil
}

// Close releases the publishing channel.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		return p.ch.Close()
	}
	return nil
}

// PublishFileDiscovered fans the event out to both processing queues.
func (p *Publisher) PublishFileDiscovered(ctx context.Context, msg *FileDiscovered) error {
	return p.publish(ctx, ExchangeFiles, "", msg.CorrelationID, msg)
}

// PublishMetadataExtracted reports a metadata outcome to the ingestion
// service's completion queue.
func (p *Publisher) PublishMetadataExtracted(ctx context.Context, msg *MetadataExtracted) error {
	return p.publish(ctx, "", QueueMetadataExtracted, msg.CorrelationID, msg)
}

// PublishThumbnailGenerated reports a thumbnail outcome to the ingestion
// service's completion queue.
func (p *Publisher) PublishThumbnailGenerated(ctx context.Context, msg *ThumbnailGenerated) error {
	return p.publish(ctx, "", QueueThumbnailGenerated, msg.CorrelationID, msg)
}

// publish sends one persistent message and waits for the broker confirm.
// A channel-level failure closes the channel; the next publish reopens it
// on the bus's current connection.
func (p *Publisher) publish(ctx context.Context, exchange, routingKey, correlationID string, v any) error {
	target := routingKey
	if target == "" {
		target = exchange
	}

	start := time.Now()
	err := p.publishTo(ctx, target, exchange, routingKey, correlationID, v)
	if p.bus.metrics != nil {
		p.bus.metrics.ObservePublish(target, time.Since(start), err)
	}
	return err
}

func (p *Publisher) publishTo(ctx context.Context, target, exchange, routingKey, correlationID string, v any) error {
	ctx, span := telemetry.StartBusSpan(ctx, "publish", target,
		telemetry.CorrelationID(correlationID))
	defer span.End()

	body, err := Encode(v)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch == nil {
		if err := p.reopen(); err != nil {
			return fmt.Errorf("failed to reopen publish channel: %w", err)
		}
	}

	err = p.ch.Publish(
		exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:   "application/json",
			DeliveryMode:  amqp.Persistent,
			CorrelationId: correlationID,
			Timestamp:     time.Now().UTC(),
			Body:          body,
		},
	)
	if err != nil {
		p.ch.Close()
		p.ch = nil
		telemetry.RecordError(ctx, err)
		return fmt.Errorf("failed to publish to %s: %w", target, err)
	}

	select {
	case confirm, ok := <-p.confirms:
		if !ok || !confirm.Ack {
			p.ch.Close()
			p.ch = nil
			return fmt.Errorf("broker rejected publish to %s", target)
		}
	case <-ctx.Done():
		return ctx.Err()
	}

	logger.DebugCtx(ctx, "message published",
		logger.Queue(target), logger.CorrelationID(correlationID))
	return nil
}
