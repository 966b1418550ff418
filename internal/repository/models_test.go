package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/eventstack/notification-engine/internal/domain"
)

func sentNotification() *domain.Notification {
	sentAt := time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)
	messageID := "sg-abc123"
	return &domain.Notification{
		ID:                "8d6f2f9e-3a41-4c7a-9d58-1f2a6b7c8d9e",
		RecipientEmail:    "ana@example.com",
		RecipientName:     "Ana",
		Subject:           "You're in - GopherCon 2026",
		HTMLBody:          "<p>Hi Ana</p>",
		NotificationType:  domain.TypeRegistrationConfirmation,
		Status:            domain.StatusSent,
		SentAt:            &sentAt,
		SendAttempts:      1,
		EventID:           "evt-42",
		ParticipantID:     "part-7",
		ProviderMessageID: &messageID,
		Version:           2,
		CreatedAt:         sentAt.Add(-time.Minute),
		UpdatedAt:         sentAt,
	}
}

func TestNotificationModelRoundTrip(t *testing.T) {
	t.Parallel()

	want := sentNotification()

	got, err := notificationModelToDomain(notificationModelFromDomain(want))
	if err != nil {
		t.Fatalf("notificationModelToDomain() error = %v", err)
	}

	if got.ID != want.ID {
		t.Errorf("ID = %q, want %q", got.ID, want.ID)
	}
	if got.Status != want.Status {
		t.Errorf("Status = %q, want %q", got.Status, want.Status)
	}
	if got.NotificationType != want.NotificationType {
		t.Errorf("NotificationType = %q, want %q", got.NotificationType, want.NotificationType)
	}
	if got.SentAt == nil || !got.SentAt.Equal(*want.SentAt) {
		t.Errorf("SentAt = %v, want %v", got.SentAt, want.SentAt)
	}
	if got.ProviderMessageID == nil || *got.ProviderMessageID != *want.ProviderMessageID {
		t.Errorf("ProviderMessageID = %v, want %v", got.ProviderMessageID, *want.ProviderMessageID)
	}
	if got.Version != want.Version {
		t.Errorf("Version = %d, want %d", got.Version, want.Version)
	}
}

func TestNotificationModelToDomainRejectsUnknownStatus(t *testing.T) {
	t.Parallel()

	model := notificationModelFromDomain(sentNotification())
	model.Status = "DELIVERED"

	if _, err := notificationModelToDomain(model); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("error = %v, want domain.ErrValidation for unknown status", err)
	}
}

func TestNotificationModelToDomainRejectsUnknownType(t *testing.T) {
	t.Parallel()

	model := notificationModelFromDomain(sentNotification())
	model.NotificationType = "MARKETING_BLAST"

	if _, err := notificationModelToDomain(model); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("error = %v, want domain.ErrValidation for unknown type", err)
	}
}

func TestNotificationModelToDomainNil(t *testing.T) {
	t.Parallel()

	if _, err := notificationModelToDomain(nil); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("error = %v, want domain.ErrNotFound for nil model", err)
	}
}
