package channel

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/studyhub/notifier/internal/domain"
	"github.com/studyhub/notifier/internal/repository"
)

// WebsiteAdapter writes the in-app inbox row. It is the only channel whose
// delivery is a store write, which makes it double as the dedup ledger entry
// for task-due reminders.
type WebsiteAdapter struct {
	notifications repository.NotificationRepository
	now           func() time.Time
}

var _ Adapter = (*WebsiteAdapter)(nil)

func NewWebsiteAdapter(notifications repository.NotificationRepository) (*WebsiteAdapter, error) {
	if notifications == nil {
		return nil, fmt.Errorf("notification repository is required")
	}
	return &WebsiteAdapter{
		notifications: notifications,
		now:           time.Now,
	}, nil
}

// SetClock overrides the timestamp source for created notifications.
func (a *WebsiteAdapter) SetClock(now func() time.Time) {
	if a == nil || now == nil {
		return
	}
	a.now = now
}

func (a *WebsiteAdapter) Channel() domain.Channel { return domain.ChannelWebsite }

func (a *WebsiteAdapter) Send(ctx context.Context, user domain.User, msg Message) (*Receipt, error) {
	notification := domain.Notification{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		TaskID:    msg.TaskID,
		Title:     msg.Title,
		Message:   msg.Body,
		Category:  msg.Category,
		CreatedAt: a.now().UTC(),
	}
	if err := notification.Validate(); err != nil {
		return nil, err
	}

	if err := a.notifications.Create(ctx, &notification); err != nil {
		return nil, fmt.Errorf("failed to write notification: %w", err)
	}

	return &Receipt{NotificationID: notification.ID}, nil
}
