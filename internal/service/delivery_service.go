package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eventstack/notification-engine/internal/domain"
	"github.com/eventstack/notification-engine/internal/observability"
	"github.com/eventstack/notification-engine/internal/provider"
	"github.com/eventstack/notification-engine/internal/queue"
	"github.com/eventstack/notification-engine/internal/ratelimit"
	"github.com/eventstack/notification-engine/internal/repository"
)

const (
	defaultMaxAttempts = 3

	// rateLimitResource keys the shared provider quota; all instances
	// draw from the same bucket.
	rateLimitResource = "email"
)

// DeliveryService owns the delivery state machine for a single
// notification: record creation, the provider call, and outcome
// persistence. Transport failures are absorbed into the record; only
// infrastructure failures (database, rate limiter) surface as errors.
type DeliveryService struct {
	notifications repository.NotificationRepository
	attempts      repository.AttemptRepository
	sender        provider.EmailSender
	rateLimiter   ratelimit.RateLimiter
	logger        *zap.Logger
	metrics       *observability.Metrics
	maxAttempts   int
	now           func() time.Time
}

func NewDeliveryService(
	notifications repository.NotificationRepository,
	attempts repository.AttemptRepository,
	sender provider.EmailSender,
	rateLimiter ratelimit.RateLimiter,
	maxAttempts int,
	logger *zap.Logger,
) (*DeliveryService, error) {
	if notifications == nil {
		return nil, fmt.Errorf("notification repository is required")
	}
	if sender == nil {
		return nil, fmt.Errorf("email sender is required")
	}
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &DeliveryService{
		notifications: notifications,
		attempts:      attempts,
		sender:        sender,
		rateLimiter:   rateLimiter,
		logger:        logger,
		maxAttempts:   maxAttempts,
		now:           time.Now,
	}, nil
}

func (s *DeliveryService) SetMetrics(metrics *observability.Metrics) {
	if s == nil {
		return
	}
	s.metrics = metrics
}

// Deliver records the message as a new notification and attempts one
// provider send. The returned notification reflects the final state of
// this attempt (SENT or FAILED). A non-nil error means the outcome
// could not be durably recorded and the message must be redelivered.
func (s *DeliveryService) Deliver(ctx context.Context, msg queue.EmailMessage) (*domain.Notification, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	if err := msg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	notification, err := notificationFromMessage(msg)
	if err != nil {
		return nil, err
	}
	if err := notification.Validate(); err != nil {
		return nil, err
	}

	if err := s.notifications.Create(ctx, notification); err != nil {
		return nil, fmt.Errorf("failed to create notification record: %w", err)
	}

	notification.Status = domain.StatusProcessing
	notification.SendAttempts++
	if err := s.notifications.Update(ctx, notification); err != nil {
		return nil, fmt.Errorf("failed to mark notification as processing: %w", err)
	}

	if err := s.attemptSend(ctx, notification); err != nil {
		return nil, err
	}

	return notification, nil
}

// DeliverBatch processes the messages sequentially. One failing message
// does not stop the rest; all errors are joined into the return value.
func (s *DeliveryService) DeliverBatch(ctx context.Context, msgs []queue.EmailMessage) ([]domain.Notification, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	delivered := make([]domain.Notification, 0, len(msgs))
	var errs []error
	for i := range msgs {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		notification, err := s.Deliver(ctx, msgs[i])
		if err != nil {
			errs = append(errs, fmt.Errorf("message %d: %w", i, err))
			continue
		}
		delivered = append(delivered, *notification)
	}

	return delivered, errors.Join(errs...)
}

// Retry re-attempts a failed notification. Notifications that already
// consumed the attempt budget are returned unchanged without touching
// the provider. Content is resent exactly as recorded at creation.
func (s *DeliveryService) Retry(ctx context.Context, id string) (*domain.Notification, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: notification id is required", domain.ErrValidation)
	}

	notification, err := s.notifications.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}

	if notification.Status != domain.StatusFailed || notification.SendAttempts >= s.maxAttempts {
		return notification, nil
	}

	notification.Status = domain.StatusRetrying
	notification.SendAttempts++
	if err := s.notifications.Update(ctx, notification); err != nil {
		return nil, fmt.Errorf("failed to mark notification as retrying: %w", err)
	}

	if s.metrics != nil {
		s.metrics.IncNotificationRetried(notification.NotificationType.String())
	}

	if err := s.attemptSend(ctx, notification); err != nil {
		return nil, err
	}

	return notification, nil
}

// attemptSend performs one rate-limited provider call and persists the
// outcome. The notification must already be in PROCESSING or RETRYING
// with SendAttempts counting the in-flight attempt.
func (s *DeliveryService) attemptSend(ctx context.Context, notification *domain.Notification) error {
	if s.rateLimiter != nil {
		if err := s.rateLimiter.Wait(ctx, rateLimitResource); err != nil {
			return fmt.Errorf("rate limiter wait failed: %w", err)
		}
	}

	typeName := notification.NotificationType.String()
	sendStart := s.now()
	result, sendErr := s.sender.Send(ctx, provider.Email{
		ToEmail:  notification.RecipientEmail,
		ToName:   notification.RecipientName,
		Subject:  notification.Subject,
		HTMLBody: notification.HTMLBody,
		TextBody: notification.TextBody,
	})
	if s.metrics != nil {
		s.metrics.ObserveEmailSendDuration(typeName, s.now().Sub(sendStart))
	}

	if err := s.recordAttempt(ctx, notification.ID, notification.SendAttempts, result, sendErr); err != nil {
		return fmt.Errorf("failed to record attempt: %w", err)
	}

	if sendErr == nil {
		sentAt := s.now().UTC()
		notification.Status = domain.StatusSent
		notification.SentAt = &sentAt
		notification.ErrorMessage = nil
		// An accepted send without an X-Message-Id header is still SENT;
		// the correlation id is best-effort provider metadata.
		if result != nil && strings.TrimSpace(result.MessageID) != "" {
			messageID := result.MessageID
			notification.ProviderMessageID = &messageID
		}
		if err := s.notifications.Update(ctx, notification); err != nil {
			return fmt.Errorf("failed to mark notification as sent: %w", err)
		}
		if s.metrics != nil {
			s.metrics.IncNotificationSent(typeName)
		}
		return nil
	}

	s.logger.Warn("email send failed",
		zap.String("notificationId", notification.ID),
		zap.String("notificationType", typeName),
		zap.Int("attempt", notification.SendAttempts),
		zap.Error(sendErr),
	)

	errMsg := sendErr.Error()
	notification.Status = domain.StatusFailed
	notification.ErrorMessage = &errMsg
	if err := s.notifications.Update(ctx, notification); err != nil {
		return fmt.Errorf("failed to mark notification as failed: %w", err)
	}
	if s.metrics != nil {
		reason := "permanent_error"
		if provider.IsTransient(sendErr) {
			reason = "transient_error"
		}
		s.metrics.IncNotificationFailed(typeName, reason)
	}

	return nil
}

func (s *DeliveryService) recordAttempt(
	ctx context.Context,
	notificationID string,
	attemptNumber int,
	result *provider.SendResult,
	sendErr error,
) error {
	if s.attempts == nil {
		return nil
	}

	var statusCode *int
	var attemptErr *string

	if result != nil && result.StatusCode > 0 {
		value := result.StatusCode
		statusCode = &value
	}
	if sendErr != nil {
		value := sendErr.Error()
		attemptErr = &value

		var providerErr *provider.ProviderError
		if errors.As(sendErr, &providerErr) && providerErr.StatusCode > 0 && statusCode == nil {
			value := providerErr.StatusCode
			statusCode = &value
		}
	}

	attempt := &domain.NotificationAttempt{
		ID:             uuid.NewString(),
		NotificationID: notificationID,
		AttemptNumber:  attemptNumber,
		StatusCode:     statusCode,
		Error:          attemptErr,
		CreatedAt:      s.now().UTC(),
	}

	return s.attempts.Create(ctx, attempt)
}

func notificationFromMessage(msg queue.EmailMessage) (*domain.Notification, error) {
	notificationType, err := domain.ParseNotificationTypeFromString(msg.NotificationType)
	if err != nil {
		return nil, err
	}

	return &domain.Notification{
		ID:               uuid.NewString(),
		RecipientEmail:   strings.TrimSpace(msg.RecipientEmail),
		RecipientName:    strings.TrimSpace(msg.RecipientName),
		Subject:          msg.Subject,
		HTMLBody:         msg.HTMLBody,
		TextBody:         msg.TextBody,
		NotificationType: notificationType,
		Status:           domain.StatusPending,
		EventID:          strings.TrimSpace(msg.EventID),
		ParticipantID:    strings.TrimSpace(msg.ParticipantID),
	}, nil
}
