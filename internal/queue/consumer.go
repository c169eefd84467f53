package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rentalhub-backend/internal/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Handler processes one decoded rental event.
type Handler interface {
	HandleRentalEvent(ctx context.Context, ev RentalEvent) error
}

// Consumer reads rental events and hands them to a Handler. Run keeps
// reconnecting until ctx is cancelled.
type Consumer struct {
	url      string
	queue    string
	prefetch int
	handler  Handler
}

func NewConsumer(url string, prefetch int, handler Handler) *Consumer {
	if prefetch <= 0 {
		prefetch = 20
	}
	return &Consumer{url: url, queue: RentalEventsQueue, prefetch: prefetch, handler: handler}
}

func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			logger.Warn("rental-events consumer failed to dial broker", "error", err, "retryIn", backoff)
			if !sleepCtx(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Warn("rental-events consume loop ended, reconnecting", "error", err)
		if !sleepCtx(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		logger.Warn("rental-events consumer failed to set QoS", "error", err)
	}
	if err := declareQueue(ch, c.queue); err != nil {
		return err
	}
	msgs, err := ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}
	logger.Info("rental-events consumer started", "queue", c.queue)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			c.handle(ctx, d)
		}
	}
}

// handle acks processed deliveries. Undecodable ones are dropped and failed
// handler calls are requeued once.
func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	ev, err := DecodeRentalEvent(d.Body)
	if err != nil {
		logger.Error("Dropping malformed rental event", "error", err)
		_ = d.Nack(false, false)
		return
	}
	if err := c.handler.HandleRentalEvent(ctx, ev); err != nil {
		logger.Error("Failed to handle rental event", "rentalID", ev.RentalID, "kind", ev.Kind, "error", err)
		_ = d.Nack(false, !d.Redelivered)
		return
	}
	_ = d.Ack(false)
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
