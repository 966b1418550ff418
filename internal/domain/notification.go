package domain

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
)

// Status represents the delivery lifecycle state of a notification.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusSent       Status = "SENT"
	StatusFailed     Status = "FAILED"
	StatusRetrying   Status = "RETRYING"
)

func (s Status) String() string { return string(s) }

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusSent, StatusFailed, StatusRetrying:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition happens within the
// current attempt. A FAILED notification may still re-enter RETRYING later.
func (s Status) IsTerminal() bool {
	return s == StatusSent || s == StatusFailed
}

func ParseStatusFromString(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("%w: invalid status %q", ErrValidation, s)
	}
	return st, nil
}

// NotificationType classifies the originating event-domain action.
type NotificationType string

const (
	TypeRegistrationConfirmation NotificationType = "REGISTRATION_CONFIRMATION"
	TypeRegistrationCancellation NotificationType = "REGISTRATION_CANCELLATION"
	TypeEventUpdate              NotificationType = "EVENT_UPDATE"
	TypeEventReminder            NotificationType = "EVENT_REMINDER"
	TypeEventCancellation        NotificationType = "EVENT_CANCELLATION"
)

// NotificationTypes lists every supported type in declaration order.
func NotificationTypes() []NotificationType {
	return []NotificationType{
		TypeRegistrationConfirmation,
		TypeRegistrationCancellation,
		TypeEventUpdate,
		TypeEventReminder,
		TypeEventCancellation,
	}
}

func (t NotificationType) String() string { return string(t) }

func (t NotificationType) IsValid() bool {
	switch t {
	case TypeRegistrationConfirmation, TypeRegistrationCancellation,
		TypeEventUpdate, TypeEventReminder, TypeEventCancellation:
		return true
	}
	return false
}

func ParseNotificationTypeFromString(s string) (NotificationType, error) {
	t := NotificationType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("%w: invalid notification type %q", ErrValidation, s)
	}
	return t, nil
}

// Content limits (in characters).
const (
	MaxSubjectLength  = 300
	MaxHTMLBodyLength = 100000
)

// Notification is the core entity tracking one outbound email delivery
// and its outcome. Content fields are a snapshot taken at creation and
// never change across retries.
type Notification struct {
	ID                string
	RecipientEmail    string
	RecipientName     string
	Subject           string
	HTMLBody          string
	TextBody          *string
	NotificationType  NotificationType
	Status            Status
	SentAt            *time.Time
	SendAttempts      int
	ErrorMessage      *string
	EventID           string
	ParticipantID     string
	ProviderMessageID *string
	Version           int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (n *Notification) Validate() error {
	if n == nil {
		return fmt.Errorf("%w: notification is required", ErrValidation)
	}
	if n.RecipientEmail == "" {
		return fmt.Errorf("%w: recipient email is required", ErrValidation)
	}
	if _, err := mail.ParseAddress(n.RecipientEmail); err != nil {
		return fmt.Errorf("%w: invalid recipient email %q", ErrValidation, n.RecipientEmail)
	}
	if n.Subject == "" {
		return fmt.Errorf("%w: subject is required", ErrValidation)
	}
	if n.HTMLBody == "" {
		return fmt.Errorf("%w: html body is required", ErrValidation)
	}
	if !n.NotificationType.IsValid() {
		return fmt.Errorf("%w: invalid notification type %q", ErrValidation, n.NotificationType)
	}

	if subjectLen := len([]rune(n.Subject)); subjectLen > MaxSubjectLength {
		return fmt.Errorf("%w: subject exceeds %d characters (got %d)", ErrValidation, MaxSubjectLength, subjectLen)
	}
	if bodyLen := len([]rune(n.HTMLBody)); bodyLen > MaxHTMLBodyLength {
		return fmt.Errorf("%w: html body exceeds %d characters (got %d)", ErrValidation, MaxHTMLBodyLength, bodyLen)
	}

	return nil
}

// RetryEligible reports whether the notification qualifies for another
// sweeper-driven attempt at the given instant.
func (n *Notification) RetryEligible(now time.Time, maxAttempts int, retryWindow time.Duration) bool {
	if n == nil || n.Status != StatusFailed {
		return false
	}
	if n.SendAttempts >= maxAttempts {
		return false
	}
	return now.Sub(n.CreatedAt) < retryWindow
}
