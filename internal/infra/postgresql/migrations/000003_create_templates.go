package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"github.com/eventstack/notification-engine/internal/repository"
)

func createTemplatesTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000003_create_templates",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.TemplateModel{}); err != nil {
				return err
			}
			return tx.Exec(`CREATE INDEX IF NOT EXISTS idx_templates_type_active ON templates (notification_type) WHERE is_active`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.TemplateModel{})
		},
	}
}
