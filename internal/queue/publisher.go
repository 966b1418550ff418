package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

type RabbitMQPublisher struct {
	client *RabbitMQ
}

func NewRabbitMQPublisher(client *RabbitMQ) *RabbitMQPublisher {
	return &RabbitMQPublisher{client: client}
}

func (p *RabbitMQPublisher) Publish(ctx context.Context, msg EmailMessage) error {
	if p == nil || p.client == nil {
		return fmt.Errorf("publisher is not initialized")
	}
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("invalid email message: %w", err)
	}

	ch, err := p.client.channel(ctx)
	if err != nil {
		return err
	}
	defer ch.Close() //nolint:errcheck // best-effort channel close

	return publishOne(ctx, ch, p.client.QueueName(), msg)
}

func (p *RabbitMQPublisher) PublishBatch(ctx context.Context, msgs []EmailMessage) error {
	if p == nil || p.client == nil {
		return fmt.Errorf("publisher is not initialized")
	}
	if len(msgs) == 0 {
		return nil
	}

	for i := range msgs {
		if err := msgs[i].Validate(); err != nil {
			return fmt.Errorf("invalid email message at index %d: %w", i, err)
		}
	}

	ch, err := p.client.channel(ctx)
	if err != nil {
		return err
	}
	defer ch.Close() //nolint:errcheck // best-effort channel close

	queueName := p.client.QueueName()
	for i := range msgs {
		if err := publishOne(ctx, ch, queueName, msgs[i]); err != nil {
			// No atomicity: messages before index i are already enqueued.
			return fmt.Errorf("batch publish stopped after %d of %d messages: %w", i, len(msgs), err)
		}
	}

	return nil
}

func publishOne(ctx context.Context, ch *amqp.Channel, queueName string, msg EmailMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal email message: %w", err)
	}

	publishing := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         msg.NotificationType,
		Body:         payload,
	}

	if err := ch.PublishWithContext(ctx, "", queueName, false, false, publishing); err != nil {
		return fmt.Errorf("failed to publish message to queue %q: %w", queueName, err)
	}

	return nil
}

func (p *RabbitMQPublisher) Close() error {
	if p == nil || p.client == nil {
		return nil
	}
	return p.client.Close()
}
