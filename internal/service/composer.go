package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/eventstack/notification-engine/internal/domain"
	"github.com/eventstack/notification-engine/internal/queue"
	"github.com/eventstack/notification-engine/internal/repository"
	"github.com/eventstack/notification-engine/internal/template"
)

const defaultParticipantName = "participant"

// Recipient identifies one addressee of a composed notification.
type Recipient struct {
	Email         string
	Name          string
	ParticipantID string
}

// EventDetails carries the variables substituted into templates. Fields
// not used by a given template are simply ignored.
type EventDetails struct {
	EventID            string
	Name               string
	Date               string
	Time               string
	Location           string
	UpdateDetails      string
	CancellationReason string
}

// Composer renders stored templates into queue messages and enqueues
// them. It is the producer-side counterpart of the delivery pipeline;
// batch sends fan out to one message per recipient.
type Composer struct {
	templates repository.TemplateRepository
	publisher queue.Publisher
	logger    *zap.Logger
}

func NewComposer(
	templates repository.TemplateRepository,
	publisher queue.Publisher,
	logger *zap.Logger,
) (*Composer, error) {
	if templates == nil {
		return nil, fmt.Errorf("template repository is required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("publisher is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Composer{
		templates: templates,
		publisher: publisher,
		logger:    logger,
	}, nil
}

// Compose renders the active template for the notification type into a
// ready-to-enqueue message for one recipient.
func (c *Composer) Compose(
	ctx context.Context,
	notificationType domain.NotificationType,
	event EventDetails,
	recipient Recipient,
) (*queue.EmailMessage, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !notificationType.IsValid() {
		return nil, fmt.Errorf("%w: invalid notification type %q", domain.ErrValidation, notificationType)
	}
	if strings.TrimSpace(recipient.Email) == "" {
		return nil, fmt.Errorf("%w: recipient email is required", domain.ErrValidation)
	}

	tmpl, err := c.templates.GetByType(ctx, notificationType)
	if err != nil {
		return nil, fmt.Errorf("failed to load template for %s: %w", notificationType, err)
	}

	variables := templateVariables(event, recipient)

	msg := &queue.EmailMessage{
		RecipientEmail:   strings.TrimSpace(recipient.Email),
		RecipientName:    strings.TrimSpace(recipient.Name),
		Subject:          template.Render(tmpl.SubjectTemplate, variables),
		HTMLBody:         template.Render(tmpl.HTMLBodyTemplate, variables),
		NotificationType: notificationType.String(),
		EventID:          strings.TrimSpace(event.EventID),
		ParticipantID:    strings.TrimSpace(recipient.ParticipantID),
	}
	if tmpl.TextBodyTemplate != nil {
		rendered := template.Render(*tmpl.TextBodyTemplate, variables)
		msg.TextBody = &rendered
	}

	if err := msg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: composed message invalid: %v", domain.ErrValidation, err)
	}

	return msg, nil
}

// Enqueue composes and publishes one notification.
func (c *Composer) Enqueue(
	ctx context.Context,
	notificationType domain.NotificationType,
	event EventDetails,
	recipient Recipient,
) error {
	msg, err := c.Compose(ctx, notificationType, event, recipient)
	if err != nil {
		return err
	}

	if err := c.publisher.Publish(ctx, *msg); err != nil {
		return fmt.Errorf("failed to enqueue notification: %w", err)
	}

	c.logger.Info("notification enqueued",
		zap.String("notificationType", notificationType.String()),
		zap.String("eventId", event.EventID),
	)
	return nil
}

// EnqueueForRecipients composes one message per recipient and publishes
// them as a batch. It returns the number of messages composed; a compose
// failure for any recipient aborts before anything is published.
func (c *Composer) EnqueueForRecipients(
	ctx context.Context,
	notificationType domain.NotificationType,
	event EventDetails,
	recipients []Recipient,
) (int, error) {
	if len(recipients) == 0 {
		return 0, fmt.Errorf("%w: at least one recipient is required", domain.ErrValidation)
	}

	msgs := make([]queue.EmailMessage, 0, len(recipients))
	for i := range recipients {
		msg, err := c.Compose(ctx, notificationType, event, recipients[i])
		if err != nil {
			return 0, fmt.Errorf("recipient %d: %w", i, err)
		}
		msgs = append(msgs, *msg)
	}

	if err := c.publisher.PublishBatch(ctx, msgs); err != nil {
		return 0, err
	}

	c.logger.Info("notifications enqueued",
		zap.String("notificationType", notificationType.String()),
		zap.String("eventId", event.EventID),
		zap.Int("count", len(msgs)),
	)
	return len(msgs), nil
}

func templateVariables(event EventDetails, recipient Recipient) map[string]string {
	participantName := strings.TrimSpace(recipient.Name)
	if participantName == "" {
		participantName = defaultParticipantName
	}

	return map[string]string{
		"ParticipantName":    participantName,
		"EventName":          event.Name,
		"EventDate":          event.Date,
		"EventTime":          event.Time,
		"EventLocation":      event.Location,
		"UpdateDetails":      event.UpdateDetails,
		"CancellationReason": event.CancellationReason,
	}
}
