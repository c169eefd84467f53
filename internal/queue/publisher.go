package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"rentalhub-backend/internal/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher sends rental events to RabbitMQ. The connection is opened lazily
// and re-dialled after a failed publish.
type Publisher struct {
	url   string
	queue string

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewPublisher(url string) *Publisher {
	return &Publisher{url: url, queue: RentalEventsQueue}
}

func (p *Publisher) Publish(ctx context.Context, ev RentalEvent) error {
	body, err := ev.Encode()
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	logger.ExternalServiceCall("rabbitmq", "publish", "queue", p.queue, "rentalID", ev.RentalID, "kind", ev.Kind)
	err = p.publishLocked(ctx, body)
	if err != nil {
		// One reconnect attempt; a broker restart drops every open channel.
		p.resetLocked()
		err = p.publishLocked(ctx, body)
	}
	logger.ExternalServiceResult("rabbitmq", "publish", err, "rentalID", ev.RentalID)
	return err
}

func (p *Publisher) publishLocked(ctx context.Context, body []byte) error {
	if err := p.connectLocked(); err != nil {
		return err
	}
	return p.ch.PublishWithContext(ctx,
		"",      // default exchange
		p.queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		})
}

func (p *Publisher) connectLocked() error {
	if p.ch != nil && !p.ch.IsClosed() {
		return nil
	}
	p.resetLocked()

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	if err := declareQueue(ch, p.queue); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return err
	}
	p.conn, p.ch = conn, ch
	return nil
}

func (p *Publisher) resetLocked() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetLocked()
	return nil
}

func declareQueue(ch *amqp.Channel, name string) error {
	if _, err := ch.QueueDeclare(
		name,  // name
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,   // args
	); err != nil {
		return fmt.Errorf("rabbitmq queue declare %s: %w", name, err)
	}
	return nil
}
