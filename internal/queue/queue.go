package queue

import (
	"context"
	"fmt"
)

// Publisher enqueues notification messages to the durable work queue.
type Publisher interface {
	Publish(ctx context.Context, msg EmailMessage) error
	// PublishBatch enqueues messages in input order without atomicity; a
	// partial enqueue is surfaced as an error, never hidden.
	PublishBatch(ctx context.Context, msgs []EmailMessage) error
	Close() error
}

// MessageHandler processes one consumed queue message. A nil return
// acknowledges the message. An error wrapping domain.ErrValidation marks
// the message as unprocessable and it is rejected without requeue; any
// other error negatively acknowledges it with redelivery. A recorded
// delivery failure is a handled outcome and must return nil — only
// infrastructure faults return errors.
type MessageHandler func(ctx context.Context, msg EmailMessage) error

// Consumer consumes notification messages from the durable work queue.
type Consumer interface {
	Consume(ctx context.Context, handler MessageHandler) error
	Close() error
}

// DLQName returns the dead-letter queue name for a work queue,
// e.g. dlq.email.notifications.
func DLQName(queue string) string {
	return fmt.Sprintf("dlq.%s", queue)
}
