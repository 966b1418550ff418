package repository

import (
	"context"
	"errors"

	"github.com/eventstack/notification-engine/internal/domain"
	"gorm.io/gorm"
)

// TemplateRepository resolves content blueprints. The delivery path only
// ever reads templates; Seed runs once at startup.
type TemplateRepository interface {
	// GetByType returns the active template for a notification type.
	GetByType(ctx context.Context, notificationType domain.NotificationType) (*domain.Template, error)
	// Seed inserts the given templates for any notification type that has
	// none yet. Existing templates are never touched.
	Seed(ctx context.Context, templates []domain.Template) error
}

type GormTemplateRepo struct {
	db *gorm.DB
}

func NewGormTemplateRepo(db *gorm.DB) *GormTemplateRepo {
	return &GormTemplateRepo{db: db}
}

func (r *GormTemplateRepo) GetByType(ctx context.Context, notificationType domain.NotificationType) (*domain.Template, error) {
	var model TemplateModel
	err := r.db.WithContext(ctx).
		Where("notification_type = ? AND is_active = ?", notificationType, true).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return templateModelToDomain(&model), nil
}

func (r *GormTemplateRepo) Seed(ctx context.Context, templates []domain.Template) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range templates {
			var count int64
			if err := tx.Model(&TemplateModel{}).
				Where("notification_type = ?", templates[i].NotificationType).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}

			model := templateModelFromDomain(&templates[i])
			model.ID = 0
			if err := tx.Create(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
