package bus

import (
	"context"
	"time"

	"github.com/streadway/amqp"

	"github.com/marmos91/photovault/internal/logger"
	"github.com/marmos91/photovault/internal/telemetry"
)

// Handler processes one delivery. Returning nil acks the message. Returning
// an error nacks it: first failures requeue, redelivered failures go to the
// dead-letter exchange so a poison message cannot spin the queue.
type Handler func(ctx context.Context, d amqp.Delivery) error

// Consume runs a prefetch-bounded consumer loop on the named queue until
// the context is cancelled. Broker-side channel drops end the inner loop
// and the consumer re-enters with a fresh channel after a short pause,
// riding the bus's connection redial.
func (b *Bus) Consume(ctx context.Context, queue string, handler Handler) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := b.consumeOnce(ctx, queue, handler); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Warn("consumer loop ended, restarting",
				logger.Queue(queue), logger.Err(err))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(b.config.ReconnectDelay):
		}
	}
}

func (b *Bus) consumeOnce(ctx context.Context, queue string, handler Handler) error {
	ch, err := b.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if err := ch.Qos(b.config.Prefetch, 0, false); err != nil {
		return err
	}

	deliveries, err := ch.Consume(
		queue,
		"",    // consumer tag (auto-generated)
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return err
	}

	logger.Info("consumer started", logger.Queue(queue))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return amqp.ErrClosed
			}
			b.handleDelivery(ctx, queue, d, handler)
		}
	}
}

func (b *Bus) handleDelivery(ctx context.Context, queue string, d amqp.Delivery, handler Handler) {
	msgCtx, span := telemetry.StartBusSpan(ctx, "consume", queue,
		telemetry.CorrelationID(d.CorrelationId),
		telemetry.Redelivered(d.Redelivered))
	defer span.End()

	start := time.Now()
	err := handler(msgCtx, d)
	if b.metrics != nil {
		b.metrics.ObserveDelivery(queue, time.Since(start), err, d.Redelivered)
	}
	if err == nil {
		if ackErr := d.Ack(false); ackErr != nil {
			logger.Warn("ack failed", logger.Queue(queue), logger.Err(ackErr))
		}
		return
	}

	telemetry.RecordError(msgCtx, err)

	// First failure gets one broker-side retry; a redelivered failure is
	// dead-lettered.
	requeue := !d.Redelivered
	logger.WarnCtx(msgCtx, "message handling failed",
		logger.Queue(queue),
		logger.CorrelationID(d.CorrelationId),
		logger.Redelivered(d.Redelivered),
		"requeue", requeue,
		logger.Err(err))

	if nackErr := d.Nack(false, requeue); nackErr != nil {
		logger.Warn("nack failed", logger.Queue(queue), logger.Err(nackErr))
	}
}
