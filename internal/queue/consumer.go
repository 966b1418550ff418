package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/eventstack/notification-engine/internal/domain"
)

// consumerPrefetch bounds in-flight deliveries to one unacknowledged
// message per consumer, preserving backpressure against the broker.
const consumerPrefetch = 1

type RabbitMQConsumer struct {
	client *RabbitMQ
	logger *zap.Logger

	// onPoison is invoked when a malformed message is rejected; used for
	// metrics, may be nil.
	onPoison func()
}

func NewRabbitMQConsumer(client *RabbitMQ, logger *zap.Logger) *RabbitMQConsumer {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &RabbitMQConsumer{
		client: client,
		logger: logger,
	}
}

// SetPoisonHook registers a callback fired on every rejected poison message.
func (c *RabbitMQConsumer) SetPoisonHook(hook func()) {
	if c == nil {
		return
	}
	c.onPoison = hook
}

// Consume pulls messages until context cancellation, re-establishing the
// channel with backoff between failed consume sessions. The in-flight
// delivery always finishes before the loop observes cancellation.
func (c *RabbitMQConsumer) Consume(ctx context.Context, handler MessageHandler) error {
	if c == nil || c.client == nil {
		return fmt.Errorf("consumer is not initialized")
	}
	if handler == nil {
		return fmt.Errorf("message handler is required")
	}

	backoff := reconnectBackoff
	for {
		err := c.consumeOnce(ctx, handler)
		if ctx.Err() != nil {
			return nil
		}
		if err == nil {
			backoff = reconnectBackoff
			continue
		}

		c.logger.Warn("consume session ended, reconnecting",
			zap.String("queue", c.client.QueueName()),
			zap.Duration("backoff", backoff),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

func (c *RabbitMQConsumer) consumeOnce(ctx context.Context, handler MessageHandler) error {
	ch, err := c.client.channel(ctx)
	if err != nil {
		return err
	}
	defer ch.Close() //nolint:errcheck // best-effort channel close

	if err := ch.Qos(consumerPrefetch, 0, false); err != nil {
		return fmt.Errorf("failed to set qos: %w", err)
	}

	deliveries, err := ch.Consume(
		c.client.QueueName(),
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to consume queue %q: %w", c.client.QueueName(), err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}

			if err := c.handleDelivery(ctx, d, handler); err != nil {
				return err
			}
		}
	}
}

func (c *RabbitMQConsumer) handleDelivery(ctx context.Context, d amqp.Delivery, handler MessageHandler) error {
	var msg EmailMessage
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		c.logger.Warn("rejecting poison message: invalid JSON",
			zap.Error(err),
			zap.String("routingKey", d.RoutingKey),
		)
		if c.onPoison != nil {
			c.onPoison()
		}
		if rejectErr := d.Reject(false); rejectErr != nil {
			return fmt.Errorf("failed to reject invalid message: %w", rejectErr)
		}
		return nil
	}

	if err := msg.Validate(); err != nil {
		c.logger.Warn("rejecting poison message: validation failed",
			zap.Error(err),
			zap.String("recipientEmail", msg.RecipientEmail),
		)
		if c.onPoison != nil {
			c.onPoison()
		}
		if rejectErr := d.Reject(false); rejectErr != nil {
			return fmt.Errorf("failed to reject invalid payload: %w", rejectErr)
		}
		return nil
	}

	// The in-flight delivery finishes even if the worker is shutting
	// down; the handler's own timeouts bound it. Cancellation is only
	// observed between deliveries.
	if err := handler(context.WithoutCancel(ctx), msg); err != nil {
		// Content the orchestrator can never process is poison, same as
		// malformed JSON: requeueing it would redeliver forever.
		if errors.Is(err, domain.ErrValidation) {
			c.logger.Warn("rejecting poison message: unprocessable content",
				zap.String("recipientEmail", msg.RecipientEmail),
				zap.Error(err),
			)
			if c.onPoison != nil {
				c.onPoison()
			}
			if rejectErr := d.Reject(false); rejectErr != nil {
				return fmt.Errorf("failed to reject unprocessable message: %w", rejectErr)
			}
			return nil
		}

		// Any other handler error means no delivery outcome was recorded;
		// requeue so the broker redelivers. A recorded failed delivery
		// returns nil and is acknowledged: the retry sweeper owns
		// retries, not redelivery.
		c.logger.Error("delivery processing failed, requeueing",
			zap.String("recipientEmail", msg.RecipientEmail),
			zap.Error(err),
		)
		if nackErr := d.Nack(false, true); nackErr != nil {
			return fmt.Errorf("handler failed and nack failed: %w", nackErr)
		}
		return nil
	}

	if err := d.Ack(false); err != nil {
		return fmt.Errorf("failed to ack delivery: %w", err)
	}

	return nil
}

func (c *RabbitMQConsumer) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
