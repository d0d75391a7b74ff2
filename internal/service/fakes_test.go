package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/studyhub/notifier/internal/channel"
	"github.com/studyhub/notifier/internal/domain"
	"github.com/studyhub/notifier/internal/repository"
)

type fakeUserRepo struct {
	getByIDFn func(ctx context.Context, id string) (*domain.User, error)
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

type fakeTaskRepo struct {
	listDueOnFn        func(ctx context.Context, day time.Time) ([]domain.Task, error)
	listDueOnForUserFn func(ctx context.Context, userID string, day time.Time) ([]domain.Task, error)
}

func (f *fakeTaskRepo) ListDueOn(ctx context.Context, day time.Time) ([]domain.Task, error) {
	if f.listDueOnFn != nil {
		return f.listDueOnFn(ctx, day)
	}
	return nil, nil
}

func (f *fakeTaskRepo) ListDueOnForUser(ctx context.Context, userID string, day time.Time) ([]domain.Task, error) {
	if f.listDueOnForUserFn != nil {
		return f.listDueOnForUserFn(ctx, userID, day)
	}
	return nil, nil
}

type fakeAttemptRepo struct {
	mu       sync.Mutex
	attempts []domain.DispatchAttempt
	createFn func(ctx context.Context, a *domain.DispatchAttempt) error
}

func (f *fakeAttemptRepo) Create(ctx context.Context, a *domain.DispatchAttempt) error {
	if f.createFn != nil {
		return f.createFn(ctx, a)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts = append(f.attempts, *a)
	return nil
}

func (f *fakeAttemptRepo) ListByUser(ctx context.Context, userID string, limit int) ([]domain.DispatchAttempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.DispatchAttempt, 0, len(f.attempts))
	for _, a := range f.attempts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAttemptRepo) recorded() []domain.DispatchAttempt {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.DispatchAttempt, len(f.attempts))
	copy(out, f.attempts)
	return out
}

// memNotificationRepo is an in-memory notification store honoring the same
// contract as the gorm repository, including the dedup ledger read and the
// idempotent mark-read semantics.
type memNotificationRepo struct {
	mu            sync.Mutex
	notifications []domain.Notification
	createErr     error
}

var _ repository.NotificationRepository = (*memNotificationRepo)(nil)

func (m *memNotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications = append(m.notifications, *n)
	return nil
}

func (m *memNotificationRepo) GetByID(ctx context.Context, userID, id string) (*domain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.notifications {
		if m.notifications[i].ID == id && m.notifications[i].UserID == userID {
			n := m.notifications[i]
			return &n, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memNotificationRepo) ListByUser(ctx context.Context, userID string, params repository.ListParams) ([]domain.Notification, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Notification, 0)
	for i := range m.notifications {
		n := m.notifications[i]
		if n.UserID != userID {
			continue
		}
		if params.Category != nil && n.Category != *params.Category {
			continue
		}
		if params.UnreadOnly && n.IsRead {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, int64(len(out)), nil
}

func (m *memNotificationRepo) UnreadCount(ctx context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for i := range m.notifications {
		if m.notifications[i].UserID == userID && !m.notifications[i].IsRead {
			count++
		}
	}
	return count, nil
}

func (m *memNotificationRepo) LatestByUser(ctx context.Context, userID string) (*domain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *domain.Notification
	for i := range m.notifications {
		n := m.notifications[i]
		if n.UserID != userID {
			continue
		}
		if latest == nil || n.CreatedAt.After(latest.CreatedAt) {
			copied := n
			latest = &copied
		}
	}
	return latest, nil
}

func (m *memNotificationRepo) MarkRead(ctx context.Context, userID, id string, readAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.notifications {
		if m.notifications[i].ID != id || m.notifications[i].UserID != userID {
			continue
		}
		if m.notifications[i].IsRead {
			return false, nil
		}
		m.notifications[i].IsRead = true
		at := readAt
		m.notifications[i].ReadAt = &at
		return true, nil
	}
	return false, domain.ErrNotFound
}

func (m *memNotificationRepo) MarkAllRead(ctx context.Context, userID string, readAt time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var flipped int64
	for i := range m.notifications {
		if m.notifications[i].UserID != userID || m.notifications[i].IsRead {
			continue
		}
		m.notifications[i].IsRead = true
		at := readAt
		m.notifications[i].ReadAt = &at
		flipped++
	}
	return flipped, nil
}

func (m *memNotificationRepo) HasTaskDueReminder(ctx context.Context, userID, taskID string, day time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	day = day.UTC()
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)
	for i := range m.notifications {
		n := m.notifications[i]
		if n.UserID != userID || n.Category != domain.CategoryTaskDue || n.TaskID == nil || *n.TaskID != taskID {
			continue
		}
		if !n.CreatedAt.Before(dayStart) && n.CreatedAt.Before(dayEnd) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memNotificationRepo) all() []domain.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Notification, len(m.notifications))
	copy(out, m.notifications)
	return out
}

type fakeAdapter struct {
	ch     domain.Channel
	sendFn func(ctx context.Context, user domain.User, msg channel.Message) (*channel.Receipt, error)
}

func (f *fakeAdapter) Channel() domain.Channel { return f.ch }

func (f *fakeAdapter) Send(ctx context.Context, user domain.User, msg channel.Message) (*channel.Receipt, error) {
	if f.sendFn != nil {
		return f.sendFn(ctx, user, msg)
	}
	return &channel.Receipt{}, nil
}

type fakeDispatcher struct {
	dispatchFn func(ctx context.Context, req DispatchRequest) (domain.DispatchResult, error)
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, req DispatchRequest) (domain.DispatchResult, error) {
	if f.dispatchFn != nil {
		return f.dispatchFn(ctx, req)
	}
	result := domain.NewDispatchResult()
	for _, ch := range req.Channels {
		result.Record(ch, true, "")
	}
	return result, nil
}
