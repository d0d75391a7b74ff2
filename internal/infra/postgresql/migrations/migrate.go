package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/studyhub/notifier/internal/repository"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		createNotificationsTable(),
		createDispatchAttemptsTable(),
		createTasksAndUsersTables(),
	})

	return m.Migrate()
}

func createNotificationsTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000001_create_notifications",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.NotificationModel{}); err != nil {
				return err
			}
			indexes := []string{
				`CREATE INDEX IF NOT EXISTS idx_notifications_user_created ON notifications (user_id, created_at DESC)`,
				`CREATE INDEX IF NOT EXISTS idx_notifications_user_unread ON notifications (user_id) WHERE is_read = false`,
				// Dedup ledger hardening: at most one task-due reminder per
				// user/task per calendar day, even under concurrent evaluations.
				`CREATE UNIQUE INDEX IF NOT EXISTS idx_notifications_task_due_day ON notifications (user_id, task_id, (created_at::date)) WHERE category = 'task_due' AND task_id IS NOT NULL`,
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

func createDispatchAttemptsTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000002_create_dispatch_attempts",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.DispatchAttemptModel{}); err != nil {
				return err
			}
			return tx.Exec(`CREATE INDEX IF NOT EXISTS idx_attempts_user_created ON dispatch_attempts (user_id, created_at DESC)`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.DispatchAttemptModel{})
		},
	}
}

// createTasksAndUsersTables provisions the read models the engine scans. In a
// shared deployment these tables belong to the planner's own migrations; the
// definitions here keep a standalone notifier bootable.
func createTasksAndUsersTables() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000003_create_tasks_and_users",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.TaskModel{}, &repository.UserModel{}); err != nil {
				return err
			}
			return tx.Exec(`CREATE INDEX IF NOT EXISTS idx_tasks_due_status ON tasks (due_date, status)`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			if err := tx.Migrator().DropTable(&repository.TaskModel{}); err != nil {
				return err
			}
			return tx.Migrator().DropTable(&repository.UserModel{})
		},
	}
}
