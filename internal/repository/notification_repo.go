package repository

import (
	"context"
	"errors"
	"time"

	"github.com/eventstack/notification-engine/internal/domain"
	"gorm.io/gorm"
)

// NotificationRepository is the durable store for notification records.
// Every mutation is a full read-modify-persist cycle scoped to one record id.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	GetByID(ctx context.Context, id string) (*domain.Notification, error)
	// Update persists all mutable fields guarded by an optimistic version
	// check; it returns domain.ErrConflict when the record changed under us.
	Update(ctx context.Context, n *domain.Notification) error
	// GetFailedForRetry returns failed records still inside the attempt
	// budget and the retry window, oldest first.
	GetFailedForRetry(ctx context.Context, maxAttempts int, retryWindow time.Duration, limit int) ([]domain.Notification, error)
}

type GormNotificationRepo struct {
	db *gorm.DB
}

func NewGormNotificationRepo(db *gorm.DB) *GormNotificationRepo {
	return &GormNotificationRepo{db: db}
}

func (r *GormNotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	model := notificationModelFromDomain(n)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	if n != nil {
		restored, err := notificationModelToDomain(model)
		if err != nil {
			return err
		}
		*n = *restored
	}
	return nil
}

func (r *GormNotificationRepo) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	var model NotificationModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return notificationModelToDomain(&model)
}

func (r *GormNotificationRepo) Update(ctx context.Context, n *domain.Notification) error {
	if n == nil {
		return domain.ErrNotFound
	}

	expectedVersion := n.Version
	result := r.db.WithContext(ctx).
		Model(&NotificationModel{}).
		Where("id = ? AND version = ?", n.ID, expectedVersion).
		Updates(map[string]any{
			"status":              n.Status.String(),
			"send_attempts":       n.SendAttempts,
			"sent_at":             n.SentAt,
			"error_message":       n.ErrorMessage,
			"provider_message_id": n.ProviderMessageID,
			"version":             expectedVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).
			Model(&NotificationModel{}).
			Where("id = ?", n.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domain.ErrNotFound
		}
		return domain.ErrConflict
	}

	n.Version = expectedVersion + 1
	return nil
}

func (r *GormNotificationRepo) GetFailedForRetry(
	ctx context.Context,
	maxAttempts int,
	retryWindow time.Duration,
	limit int,
) ([]domain.Notification, error) {
	cutoff := time.Now().UTC().Add(-retryWindow)

	var models []NotificationModel
	err := r.db.WithContext(ctx).
		Where("status = ? AND send_attempts < ? AND created_at > ?", domain.StatusFailed.String(), maxAttempts, cutoff).
		Order("created_at ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	notifications := make([]domain.Notification, 0, len(models))
	for i := range models {
		notification, err := notificationModelToDomain(&models[i])
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, *notification)
	}

	return notifications, nil
}
