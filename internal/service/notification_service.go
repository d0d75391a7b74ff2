package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/studyhub/notifier/internal/domain"
	"github.com/studyhub/notifier/internal/repository"
	"go.uber.org/zap"
)

// NotificationService serves the inbox: listing, unread badge, and the
// mark-read operations. Both mark-read variants are idempotent.
type NotificationService struct {
	notifications repository.NotificationRepository
	logger        *zap.Logger
	now           func() time.Time
}

func NewNotificationService(
	notifications repository.NotificationRepository,
	logger *zap.Logger,
) (*NotificationService, error) {
	if notifications == nil {
		return nil, fmt.Errorf("notification repository is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &NotificationService{
		notifications: notifications,
		logger:        logger,
		now:           time.Now,
	}, nil
}

func (s *NotificationService) List(
	ctx context.Context,
	userID string,
	params repository.ListParams,
) ([]domain.Notification, int64, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, 0, fmt.Errorf("%w: user id is required", domain.ErrValidation)
	}
	return s.notifications.ListByUser(ctx, userID, params)
}

func (s *NotificationService) GetByID(ctx context.Context, userID, id string) (*domain.Notification, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrValidation)
	}
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: notification id is required", domain.ErrValidation)
	}
	return s.notifications.GetByID(ctx, userID, strings.TrimSpace(id))
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	if strings.TrimSpace(userID) == "" {
		return 0, fmt.Errorf("%w: user id is required", domain.ErrValidation)
	}
	return s.notifications.UnreadCount(ctx, userID)
}

// MarkRead marks one notification read. Repeating the call succeeds without
// touching read_at again.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: user id is required", domain.ErrValidation)
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: notification id is required", domain.ErrValidation)
	}

	updated, err := s.notifications.MarkRead(ctx, userID, strings.TrimSpace(id), s.now().UTC())
	if err != nil {
		return err
	}
	if !updated {
		s.logger.Debug("notification already read",
			zap.String("userId", userID),
			zap.String("notificationId", id),
		)
	}
	return nil
}

// MarkAllRead marks every unread notification of the user read and returns
// how many rows flipped. Zero on repeat calls.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	if strings.TrimSpace(userID) == "" {
		return 0, fmt.Errorf("%w: user id is required", domain.ErrValidation)
	}
	return s.notifications.MarkAllRead(ctx, userID, s.now().UTC())
}
