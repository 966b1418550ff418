package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/eventstack/notification-engine/internal/domain"
	"github.com/eventstack/notification-engine/internal/provider"
	"github.com/eventstack/notification-engine/internal/queue"
)

func TestConsumerWorkerAcksRecordedFailure(t *testing.T) {
	t.Parallel()

	repo := &fakeNotificationRepo{}
	sender := &fakeSender{
		sendFn: func(ctx context.Context, email provider.Email) (*provider.SendResult, error) {
			return nil, &provider.ProviderError{StatusCode: 400, Message: "invalid request"}
		},
	}

	svc := newTestDeliveryService(t, repo, &fakeAttemptRepo{}, sender, &fakeRateLimiter{}, 3)
	worker, err := NewConsumerWorker(&fakeConsumer{}, svc, zap.NewNop())
	if err != nil {
		t.Fatalf("NewConsumerWorker() error = %v", err)
	}

	if err := worker.processMessage(context.Background(), validMessage()); err != nil {
		t.Fatalf("processMessage() error = %v, recorded failure must be acked", err)
	}
}

func TestConsumerWorkerNacksInfraError(t *testing.T) {
	t.Parallel()

	repo := &fakeNotificationRepo{
		createFn: func(ctx context.Context, n *domain.Notification) error {
			return errors.New("connection refused")
		},
	}

	svc := newTestDeliveryService(t, repo, &fakeAttemptRepo{}, &fakeSender{}, &fakeRateLimiter{}, 3)
	worker, err := NewConsumerWorker(&fakeConsumer{}, svc, zap.NewNop())
	if err != nil {
		t.Fatalf("NewConsumerWorker() error = %v", err)
	}

	if err := worker.processMessage(context.Background(), validMessage()); err == nil {
		t.Fatal("processMessage() expected error for infrastructure failure")
	}
}

func TestConsumerWorkerValidationErrorIsPoisonNotRequeue(t *testing.T) {
	t.Parallel()

	createCalled := false
	repo := &fakeNotificationRepo{
		createFn: func(ctx context.Context, n *domain.Notification) error {
			createCalled = true
			return nil
		},
	}

	svc := newTestDeliveryService(t, repo, &fakeAttemptRepo{}, &fakeSender{}, &fakeRateLimiter{}, 3)
	worker, err := NewConsumerWorker(&fakeConsumer{}, svc, zap.NewNop())
	if err != nil {
		t.Fatalf("NewConsumerWorker() error = %v", err)
	}

	// Passes the wire-level queue check but can never be delivered; the
	// returned error must carry ErrValidation so the consumer rejects it
	// without requeue instead of redelivering forever.
	msg := validMessage()
	msg.RecipientEmail = "not-an-email"
	if msgErr := msg.Validate(); msgErr != nil {
		t.Fatalf("message should pass wire-level validation, got %v", msgErr)
	}

	err = worker.processMessage(context.Background(), msg)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("processMessage() error = %v, want ErrValidation for dead-lettering", err)
	}
	if createCalled {
		t.Fatal("no record should exist for an unprocessable message")
	}
}

func TestConsumerWorkerStartPropagatesConsumerError(t *testing.T) {
	t.Parallel()

	consumeErr := errors.New("consume failed")
	consumer := &fakeConsumer{
		consumeFn: func(ctx context.Context, handler queue.MessageHandler) error {
			return consumeErr
		},
	}

	svc := newTestDeliveryService(t, &fakeNotificationRepo{}, &fakeAttemptRepo{}, &fakeSender{}, &fakeRateLimiter{}, 3)
	worker, err := NewConsumerWorker(consumer, svc, zap.NewNop())
	if err != nil {
		t.Fatalf("NewConsumerWorker() error = %v", err)
	}

	if err := worker.Start(context.Background()); !errors.Is(err, consumeErr) {
		t.Fatalf("Start() error = %v, want %v", err, consumeErr)
	}
}

func TestConsumerWorkerStartDeliversConsumedMessage(t *testing.T) {
	t.Parallel()

	consumer := &fakeConsumer{
		consumeFn: func(ctx context.Context, handler queue.MessageHandler) error {
			return handler(ctx, validMessage())
		},
	}

	var sent bool
	sender := &fakeSender{
		sendFn: func(ctx context.Context, email provider.Email) (*provider.SendResult, error) {
			sent = true
			return &provider.SendResult{StatusCode: 202}, nil
		},
	}

	svc := newTestDeliveryService(t, &fakeNotificationRepo{}, &fakeAttemptRepo{}, sender, &fakeRateLimiter{}, 3)
	worker, err := NewConsumerWorker(consumer, svc, zap.NewNop())
	if err != nil {
		t.Fatalf("NewConsumerWorker() error = %v", err)
	}

	if err := worker.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !sent {
		t.Fatal("expected consumed message to reach the provider")
	}
}

type fakeConsumer struct {
	consumeFn func(ctx context.Context, handler queue.MessageHandler) error
	closeFn   func() error
}

func (f *fakeConsumer) Consume(ctx context.Context, handler queue.MessageHandler) error {
	if f.consumeFn != nil {
		return f.consumeFn(ctx, handler)
	}
	return nil
}

func (f *fakeConsumer) Close() error {
	if f.closeFn != nil {
		return f.closeFn()
	}
	return nil
}
