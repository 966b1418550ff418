package repository

import (
	"context"

	"github.com/eventstack/notification-engine/internal/domain"
	"gorm.io/gorm"
)

// AttemptRepository stores the append-only transport attempt audit trail.
type AttemptRepository interface {
	Create(ctx context.Context, attempt *domain.NotificationAttempt) error
}

type GormAttemptRepo struct {
	db *gorm.DB
}

func NewGormAttemptRepo(db *gorm.DB) *GormAttemptRepo {
	return &GormAttemptRepo{db: db}
}

func (r *GormAttemptRepo) Create(ctx context.Context, attempt *domain.NotificationAttempt) error {
	if attempt == nil {
		return nil
	}
	model := &NotificationAttemptModel{
		ID:             attempt.ID,
		NotificationID: attempt.NotificationID,
		AttemptNumber:  attempt.AttemptNumber,
		StatusCode:     attempt.StatusCode,
		Error:          attempt.Error,
		CreatedAt:      attempt.CreatedAt,
	}
	return r.db.WithContext(ctx).Create(model).Error
}
