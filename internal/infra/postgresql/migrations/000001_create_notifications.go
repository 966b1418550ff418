package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"github.com/eventstack/notification-engine/internal/repository"
)

func createNotificationsTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000001_create_notifications",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.NotificationModel{}); err != nil {
				return err
			}
			indexes := []string{
				`CREATE INDEX IF NOT EXISTS idx_notifications_status_created ON notifications (status, created_at)`,
				`CREATE INDEX IF NOT EXISTS idx_notifications_retry ON notifications (send_attempts, created_at) WHERE status = 'FAILED'`,
				`CREATE INDEX IF NOT EXISTS idx_notifications_event_id ON notifications (event_id)`,
				`CREATE INDEX IF NOT EXISTS idx_notifications_participant_id ON notifications (participant_id)`,
			}
			for _, sql := range indexes {
				if err := tx.Exec(sql).Error; err != nil {
					return err
				}
			}
			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.NotificationModel{})
		},
	}
}
