package repository

import (
	"fmt"
	"time"

	"github.com/eventstack/notification-engine/internal/domain"
)

// NotificationModel is the persistence model for the notifications table.
type NotificationModel struct {
	ID                string     `gorm:"type:uuid;primaryKey"`
	RecipientEmail    string     `gorm:"type:varchar(255);not null"`
	RecipientName     string     `gorm:"type:varchar(100);not null"`
	Subject           string     `gorm:"type:varchar(300);not null"`
	HTMLBody          string     `gorm:"column:html_body;type:text;not null"`
	TextBody          *string    `gorm:"type:text"`
	NotificationType  string     `gorm:"type:varchar(30);not null"`
	Status            string     `gorm:"type:varchar(20);not null"`
	SentAt            *time.Time `gorm:"type:timestamptz"`
	SendAttempts      int        `gorm:"not null;default:0"`
	ErrorMessage      *string    `gorm:"type:text"`
	EventID           string     `gorm:"type:varchar(64);not null"`
	ParticipantID     string     `gorm:"type:varchar(64);not null"`
	ProviderMessageID *string    `gorm:"type:varchar(255)"`
	Version           int        `gorm:"not null;default:0"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (NotificationModel) TableName() string { return "notifications" }

// NotificationAttemptModel is the persistence model for the
// notification_attempts audit table.
type NotificationAttemptModel struct {
	ID             string  `gorm:"type:uuid;primaryKey"`
	NotificationID string  `gorm:"type:uuid;not null"`
	AttemptNumber  int     `gorm:"not null"`
	StatusCode     *int    `gorm:"type:int"`
	Error          *string `gorm:"type:text"`
	CreatedAt      time.Time
}

func (NotificationAttemptModel) TableName() string { return "notification_attempts" }

// TemplateModel is the persistence model for the templates table.
type TemplateModel struct {
	ID               int                     `gorm:"primaryKey;autoIncrement"`
	Name             string                  `gorm:"type:varchar(100);not null"`
	NotificationType domain.NotificationType `gorm:"type:varchar(30);not null"`
	SubjectTemplate  string                  `gorm:"type:varchar(300);not null"`
	HTMLBodyTemplate string                  `gorm:"column:html_body_template;type:text;not null"`
	TextBodyTemplate *string                 `gorm:"type:text"`
	Description      *string                 `gorm:"type:varchar(500)"`
	IsActive         bool                    `gorm:"not null;default:true"`
	CreatedAt        time.Time
	UpdatedAt        *time.Time
}

func (TemplateModel) TableName() string { return "templates" }

func notificationModelFromDomain(n *domain.Notification) *NotificationModel {
	if n == nil {
		return nil
	}
	return &NotificationModel{
		ID:                n.ID,
		RecipientEmail:    n.RecipientEmail,
		RecipientName:     n.RecipientName,
		Subject:           n.Subject,
		HTMLBody:          n.HTMLBody,
		TextBody:          n.TextBody,
		NotificationType:  n.NotificationType.String(),
		Status:            n.Status.String(),
		SentAt:            n.SentAt,
		SendAttempts:      n.SendAttempts,
		ErrorMessage:      n.ErrorMessage,
		EventID:           n.EventID,
		ParticipantID:     n.ParticipantID,
		ProviderMessageID: n.ProviderMessageID,
		Version:           n.Version,
		CreatedAt:         n.CreatedAt,
		UpdatedAt:         n.UpdatedAt,
	}
}

// notificationModelToDomain parses the stored enum columns through the
// domain total mappings, so rows written by anything else are caught at
// the boundary instead of flowing through as impossible states.
func notificationModelToDomain(m *NotificationModel) (*domain.Notification, error) {
	if m == nil {
		return nil, domain.ErrNotFound
	}

	status, err := domain.ParseStatusFromString(m.Status)
	if err != nil {
		return nil, fmt.Errorf("notification %s: %w", m.ID, err)
	}
	notificationType, err := domain.ParseNotificationTypeFromString(m.NotificationType)
	if err != nil {
		return nil, fmt.Errorf("notification %s: %w", m.ID, err)
	}

	return &domain.Notification{
		ID:                m.ID,
		RecipientEmail:    m.RecipientEmail,
		RecipientName:     m.RecipientName,
		Subject:           m.Subject,
		HTMLBody:          m.HTMLBody,
		TextBody:          m.TextBody,
		NotificationType:  notificationType,
		Status:            status,
		SentAt:            m.SentAt,
		SendAttempts:      m.SendAttempts,
		ErrorMessage:      m.ErrorMessage,
		EventID:           m.EventID,
		ParticipantID:     m.ParticipantID,
		ProviderMessageID: m.ProviderMessageID,
		Version:           m.Version,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}, nil
}

func templateModelToDomain(m *TemplateModel) *domain.Template {
	if m == nil {
		return nil
	}
	return &domain.Template{
		ID:               m.ID,
		Name:             m.Name,
		NotificationType: m.NotificationType,
		SubjectTemplate:  m.SubjectTemplate,
		HTMLBodyTemplate: m.HTMLBodyTemplate,
		TextBodyTemplate: m.TextBodyTemplate,
		Description:      m.Description,
		IsActive:         m.IsActive,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func templateModelFromDomain(t *domain.Template) *TemplateModel {
	if t == nil {
		return nil
	}
	return &TemplateModel{
		ID:               t.ID,
		Name:             t.Name,
		NotificationType: t.NotificationType,
		SubjectTemplate:  t.SubjectTemplate,
		HTMLBodyTemplate: t.HTMLBodyTemplate,
		TextBodyTemplate: t.TextBodyTemplate,
		Description:      t.Description,
		IsActive:         t.IsActive,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}
}
