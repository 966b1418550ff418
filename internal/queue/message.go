package queue

import (
	"fmt"
	"strings"

	"github.com/eventstack/notification-engine/internal/domain"
)

// EmailMessage is the broker payload for one notification delivery.
// One message carries one recipient; batch sends fan out to N messages.
type EmailMessage struct {
	RecipientEmail   string  `json:"recipientEmail"`
	RecipientName    string  `json:"recipientName"`
	Subject          string  `json:"subject"`
	HTMLBody         string  `json:"htmlBody"`
	TextBody         *string `json:"textBody,omitempty"`
	NotificationType string  `json:"notificationType"`
	EventID          string  `json:"eventId"`
	ParticipantID    string  `json:"participantId"`
}

func (m EmailMessage) Validate() error {
	if strings.TrimSpace(m.RecipientEmail) == "" {
		return fmt.Errorf("recipientEmail is required")
	}
	if strings.TrimSpace(m.Subject) == "" {
		return fmt.Errorf("subject is required")
	}
	if strings.TrimSpace(m.HTMLBody) == "" {
		return fmt.Errorf("htmlBody is required")
	}
	if _, err := domain.ParseNotificationTypeFromString(m.NotificationType); err != nil {
		return fmt.Errorf("invalid notificationType %q", m.NotificationType)
	}
	return nil
}
