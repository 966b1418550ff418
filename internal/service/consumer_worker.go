package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/eventstack/notification-engine/internal/observability"
	"github.com/eventstack/notification-engine/internal/queue"
)

// ConsumerWorker binds the queue consumer to the delivery service. The
// queue runs with a prefetch of one, so at most one message is in
// flight per instance and ordering follows the queue.
type ConsumerWorker struct {
	consumer queue.Consumer
	delivery *DeliveryService
	logger   *zap.Logger
	metrics  *observability.Metrics
}

func NewConsumerWorker(
	consumer queue.Consumer,
	delivery *DeliveryService,
	logger *zap.Logger,
) (*ConsumerWorker, error) {
	if consumer == nil {
		return nil, fmt.Errorf("consumer is required")
	}
	if delivery == nil {
		return nil, fmt.Errorf("delivery service is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ConsumerWorker{
		consumer: consumer,
		delivery: delivery,
		logger:   logger,
	}, nil
}

func (w *ConsumerWorker) SetMetrics(metrics *observability.Metrics) {
	if w == nil {
		return
	}
	w.metrics = metrics
}

// Start consumes the work queue until context cancellation.
func (w *ConsumerWorker) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	w.logger.Info("consumer worker started")
	err := w.consumer.Consume(ctx, w.processMessage)
	if err != nil {
		w.logger.Error("consumer worker stopped with error", zap.Error(err))
		return err
	}

	w.logger.Info("consumer worker stopped")
	return nil
}

// processMessage runs one delivery. A recorded FAILED outcome still
// returns nil so the message is acknowledged; the retry sweeper owns
// re-attempts. An error here triggers a redelivery.
func (w *ConsumerWorker) processMessage(ctx context.Context, msg queue.EmailMessage) error {
	if w.metrics != nil {
		w.metrics.IncConsumerInFlight()
		defer w.metrics.DecConsumerInFlight()
	}

	notification, err := w.delivery.Deliver(ctx, msg)
	if err != nil {
		return fmt.Errorf("delivery failed: %w", err)
	}

	// Deliver settles every attempt as SENT or FAILED before returning
	// nil; anything else would ack a message whose outcome is undecided.
	if !notification.Status.IsTerminal() {
		w.logger.Warn("notification acknowledged in non-terminal state",
			zap.String("notificationId", notification.ID),
			zap.String("status", notification.Status.String()),
		)
	}

	w.logger.Info("notification processed",
		zap.String("notificationId", notification.ID),
		zap.String("notificationType", notification.NotificationType.String()),
		zap.String("status", notification.Status.String()),
	)

	return nil
}
