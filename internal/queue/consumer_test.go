package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/eventstack/notification-engine/internal/domain"
)

func TestConsumerHandleDeliveryAcksHandledMessage(t *testing.T) {
	t.Parallel()

	consumer := NewRabbitMQConsumer(&RabbitMQ{}, zap.NewNop())
	ack := &fakeAcknowledger{}

	handled := false
	err := consumer.handleDelivery(context.Background(), testDelivery(t, ack, validEmailMessage()), func(ctx context.Context, msg EmailMessage) error {
		handled = true
		return nil
	})
	if err != nil {
		t.Fatalf("handleDelivery() error = %v", err)
	}
	if !handled {
		t.Fatal("handler should be called for a valid message")
	}
	if ack.acks != 1 || ack.nacks != 0 || ack.rejects != 0 {
		t.Fatalf("acks/nacks/rejects = %d/%d/%d, want 1/0/0", ack.acks, ack.nacks, ack.rejects)
	}
}

func TestConsumerHandleDeliveryRejectsMalformedJSON(t *testing.T) {
	t.Parallel()

	consumer := NewRabbitMQConsumer(&RabbitMQ{}, zap.NewNop())
	poisoned := 0
	consumer.SetPoisonHook(func() { poisoned++ })
	ack := &fakeAcknowledger{}

	d := amqp.Delivery{Acknowledger: ack, DeliveryTag: 7, Body: []byte("{not json")}
	err := consumer.handleDelivery(context.Background(), d, func(ctx context.Context, msg EmailMessage) error {
		t.Fatal("handler should not run for malformed JSON")
		return nil
	})
	if err != nil {
		t.Fatalf("handleDelivery() error = %v", err)
	}
	if poisoned != 1 {
		t.Fatalf("poison hook fired %d times, want 1", poisoned)
	}
	if ack.rejects != 1 || ack.acks != 0 || ack.nacks != 0 {
		t.Fatalf("acks/nacks/rejects = %d/%d/%d, want 0/0/1", ack.acks, ack.nacks, ack.rejects)
	}
	if ack.lastRequeue {
		t.Fatal("poison messages must not be requeued")
	}
}

func TestConsumerHandleDeliveryRejectsInvalidPayload(t *testing.T) {
	t.Parallel()

	consumer := NewRabbitMQConsumer(&RabbitMQ{}, zap.NewNop())
	poisoned := 0
	consumer.SetPoisonHook(func() { poisoned++ })
	ack := &fakeAcknowledger{}

	msg := validEmailMessage()
	msg.Subject = ""
	err := consumer.handleDelivery(context.Background(), testDelivery(t, ack, msg), func(ctx context.Context, m EmailMessage) error {
		t.Fatal("handler should not run for an invalid payload")
		return nil
	})
	if err != nil {
		t.Fatalf("handleDelivery() error = %v", err)
	}
	if poisoned != 1 {
		t.Fatalf("poison hook fired %d times, want 1", poisoned)
	}
	if ack.rejects != 1 || ack.lastRequeue {
		t.Fatalf("rejects = %d (requeue=%v), want 1 without requeue", ack.rejects, ack.lastRequeue)
	}
}

func TestConsumerHandleDeliveryRejectsUnprocessableContent(t *testing.T) {
	t.Parallel()

	consumer := NewRabbitMQConsumer(&RabbitMQ{}, zap.NewNop())
	poisoned := 0
	consumer.SetPoisonHook(func() { poisoned++ })
	ack := &fakeAcknowledger{}

	// Passes the wire-level check (all fields present, type parses) but
	// the orchestrator can never accept the address, so the handler
	// reports a validation error.
	msg := validEmailMessage()
	msg.RecipientEmail = "not-an-email"
	if err := msg.Validate(); err != nil {
		t.Fatalf("message should pass wire-level validation, got %v", err)
	}

	err := consumer.handleDelivery(context.Background(), testDelivery(t, ack, msg), func(ctx context.Context, m EmailMessage) error {
		return fmt.Errorf("delivery failed: %w: invalid recipient email %q", domain.ErrValidation, m.RecipientEmail)
	})
	if err != nil {
		t.Fatalf("handleDelivery() error = %v", err)
	}
	if poisoned != 1 {
		t.Fatalf("poison hook fired %d times, want 1", poisoned)
	}
	if ack.rejects != 1 || ack.nacks != 0 {
		t.Fatalf("nacks/rejects = %d/%d, want 0/1: unprocessable content must never be requeued", ack.nacks, ack.rejects)
	}
	if ack.lastRequeue {
		t.Fatal("unprocessable content must be dead-lettered, not requeued")
	}
}

func TestConsumerHandleDeliveryNacksInfraError(t *testing.T) {
	t.Parallel()

	consumer := NewRabbitMQConsumer(&RabbitMQ{}, zap.NewNop())
	ack := &fakeAcknowledger{}

	err := consumer.handleDelivery(context.Background(), testDelivery(t, ack, validEmailMessage()), func(ctx context.Context, m EmailMessage) error {
		return errors.New("connection refused")
	})
	if err != nil {
		t.Fatalf("handleDelivery() error = %v", err)
	}
	if ack.nacks != 1 || ack.acks != 0 || ack.rejects != 0 {
		t.Fatalf("acks/nacks/rejects = %d/%d/%d, want 0/1/0", ack.acks, ack.nacks, ack.rejects)
	}
	if !ack.lastRequeue {
		t.Fatal("infrastructure faults must be requeued for redelivery")
	}
}

func TestConsumerHandleDeliveryShieldsHandlerFromCancellation(t *testing.T) {
	t.Parallel()

	consumer := NewRabbitMQConsumer(&RabbitMQ{}, zap.NewNop())
	ack := &fakeAcknowledger{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := consumer.handleDelivery(ctx, testDelivery(t, ack, validEmailMessage()), func(handlerCtx context.Context, m EmailMessage) error {
		if handlerCtx.Err() != nil {
			t.Fatal("in-flight delivery must not observe worker cancellation")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("handleDelivery() error = %v", err)
	}
	if ack.acks != 1 {
		t.Fatalf("acks = %d, want 1", ack.acks)
	}
}

func validEmailMessage() EmailMessage {
	return EmailMessage{
		RecipientEmail:   "ana@example.com",
		RecipientName:    "Ana",
		Subject:          "Registration confirmed - GopherCon",
		HTMLBody:         "<p>Hi Ana</p>",
		NotificationType: "REGISTRATION_CONFIRMATION",
		EventID:          "evt-1",
		ParticipantID:    "par-1",
	}
}

func testDelivery(t *testing.T, ack amqp.Acknowledger, msg EmailMessage) amqp.Delivery {
	t.Helper()

	body, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	return amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: body}
}

type fakeAcknowledger struct {
	acks        int
	nacks       int
	rejects     int
	lastRequeue bool
}

func (f *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	f.acks++
	return nil
}

func (f *fakeAcknowledger) Nack(tag uint64, multiple bool, requeue bool) error {
	f.nacks++
	f.lastRequeue = requeue
	return nil
}

func (f *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	f.rejects++
	f.lastRequeue = requeue
	return nil
}
