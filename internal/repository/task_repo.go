package repository

import (
	"context"
	"time"

	"github.com/studyhub/notifier/internal/domain"
	"gorm.io/gorm"
)

type TaskRepository interface {
	ListDueOn(ctx context.Context, day time.Time) ([]domain.Task, error)
	ListDueOnForUser(ctx context.Context, userID string, day time.Time) ([]domain.Task, error)
}

type GormTaskRepo struct {
	db *gorm.DB
}

func NewGormTaskRepo(db *gorm.DB) *GormTaskRepo {
	return &GormTaskRepo{db: db}
}

func (r *GormTaskRepo) ListDueOn(ctx context.Context, day time.Time) ([]domain.Task, error) {
	return r.listDue(ctx, day, "")
}

func (r *GormTaskRepo) ListDueOnForUser(ctx context.Context, userID string, day time.Time) ([]domain.Task, error) {
	return r.listDue(ctx, day, userID)
}

func (r *GormTaskRepo) listDue(ctx context.Context, day time.Time, userID string) ([]domain.Task, error) {
	day = day.UTC()
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	query := r.db.WithContext(ctx).
		Model(&TaskModel{}).
		Where("due_date >= ? AND due_date < ?", dayStart, dayEnd).
		Where("status <> ?", domain.TaskStatusCompleted)
	if userID != "" {
		query = query.Where("user_id = ?", userID)
	}

	var models []TaskModel
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	tasks := make([]domain.Task, 0, len(models))
	for i := range models {
		tasks = append(tasks, *taskModelToDomain(&models[i]))
	}

	return tasks, nil
}
