package repository

import (
	"time"

	"github.com/studyhub/notifier/internal/domain"
)

// NotificationModel is the persistence model for the notifications table.
type NotificationModel struct {
	ID        string          `gorm:"type:uuid;primaryKey"`
	UserID    string          `gorm:"type:varchar(36);not null"`
	TaskID    *string         `gorm:"type:varchar(36)"`
	Title     string          `gorm:"type:varchar(255);not null"`
	Message   string          `gorm:"type:text;not null"`
	Category  domain.Category `gorm:"type:varchar(20);not null"`
	IsRead    bool            `gorm:"not null;default:false"`
	ReadAt    *time.Time
	CreatedAt time.Time
}

func (NotificationModel) TableName() string {
	return "notifications"
}

// TaskModel is the persistence model for the planner's tasks table. The
// notifier only reads it.
type TaskModel struct {
	ID      string            `gorm:"type:varchar(36);primaryKey"`
	UserID  string            `gorm:"type:varchar(36);not null"`
	Title   string            `gorm:"type:varchar(255);not null"`
	DueDate time.Time         `gorm:"type:date;not null"`
	Status  domain.TaskStatus `gorm:"type:varchar(20);not null"`
}

func (TaskModel) TableName() string {
	return "tasks"
}

// UserModel is the persistence model for the profile table. Read-only here.
type UserModel struct {
	ID          string `gorm:"type:varchar(36);primaryKey"`
	Email       string `gorm:"type:varchar(255)"`
	ChatID      string `gorm:"type:varchar(64)"`
	NotifyEmail bool   `gorm:"not null;default:false"`
	NotifyChat  bool   `gorm:"not null;default:false"`
}

func (UserModel) TableName() string {
	return "users"
}

// DispatchAttemptModel is the persistence model for dispatch_attempts.
type DispatchAttemptModel struct {
	ID             string         `gorm:"type:uuid;primaryKey"`
	UserID         string         `gorm:"type:varchar(36);not null"`
	NotificationID *string        `gorm:"type:uuid"`
	Channel        domain.Channel `gorm:"type:varchar(10);not null"`
	OK             bool           `gorm:"column:ok;not null"`
	Reason         *string        `gorm:"type:text"`
	CreatedAt      time.Time
}

func (DispatchAttemptModel) TableName() string {
	return "dispatch_attempts"
}

func notificationModelFromDomain(n *domain.Notification) *NotificationModel {
	if n == nil {
		return nil
	}

	return &NotificationModel{
		ID:        n.ID,
		UserID:    n.UserID,
		TaskID:    n.TaskID,
		Title:     n.Title,
		Message:   n.Message,
		Category:  n.Category,
		IsRead:    n.IsRead,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}

func notificationModelToDomain(m *NotificationModel) *domain.Notification {
	if m == nil {
		return nil
	}

	return &domain.Notification{
		ID:        m.ID,
		UserID:    m.UserID,
		TaskID:    m.TaskID,
		Title:     m.Title,
		Message:   m.Message,
		Category:  m.Category,
		IsRead:    m.IsRead,
		ReadAt:    m.ReadAt,
		CreatedAt: m.CreatedAt,
	}
}

func taskModelToDomain(m *TaskModel) *domain.Task {
	if m == nil {
		return nil
	}

	return &domain.Task{
		ID:      m.ID,
		UserID:  m.UserID,
		Title:   m.Title,
		DueDate: m.DueDate,
		Status:  m.Status,
	}
}

func userModelToDomain(m *UserModel) *domain.User {
	if m == nil {
		return nil
	}

	return &domain.User{
		ID:          m.ID,
		Email:       m.Email,
		ChatID:      m.ChatID,
		NotifyEmail: m.NotifyEmail,
		NotifyChat:  m.NotifyChat,
	}
}

func attemptModelFromDomain(a *domain.DispatchAttempt) *DispatchAttemptModel {
	if a == nil {
		return nil
	}

	return &DispatchAttemptModel{
		ID:             a.ID,
		UserID:         a.UserID,
		NotificationID: a.NotificationID,
		Channel:        a.Channel,
		OK:             a.OK,
		Reason:         a.Reason,
		CreatedAt:      a.CreatedAt,
	}
}

func attemptModelToDomain(m *DispatchAttemptModel) *domain.DispatchAttempt {
	if m == nil {
		return nil
	}

	return &domain.DispatchAttempt{
		ID:             m.ID,
		UserID:         m.UserID,
		NotificationID: m.NotificationID,
		Channel:        m.Channel,
		OK:             m.OK,
		Reason:         m.Reason,
		CreatedAt:      m.CreatedAt,
	}
}
