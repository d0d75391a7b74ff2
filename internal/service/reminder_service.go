package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/studyhub/notifier/internal/domain"
	"github.com/studyhub/notifier/internal/observability"
	"github.com/studyhub/notifier/internal/repository"
	"go.uber.org/zap"
)

const reminderTitle = "Task due tomorrow"

// Dispatcher is the coordinator port the evaluator hands candidates to.
type Dispatcher interface {
	Dispatch(ctx context.Context, req DispatchRequest) (domain.DispatchResult, error)
}

// CheckResult is the payload of one pull-triggered notification check.
type CheckResult struct {
	NewReminders int
	UnreadCount  int64
	Latest       *domain.Notification
}

// ReminderService decides which tasks qualify for a due-date reminder and have
// not been reminded today, and fans qualifying ones out through the dispatcher.
// Evaluation itself never writes.
type ReminderService struct {
	tasks         repository.TaskRepository
	users         repository.UserRepository
	notifications repository.NotificationRepository
	dispatcher    Dispatcher
	logger        *zap.Logger
	metrics       *observability.Metrics
	now           func() time.Time
}

func NewReminderService(
	tasks repository.TaskRepository,
	users repository.UserRepository,
	notifications repository.NotificationRepository,
	dispatcher Dispatcher,
	logger *zap.Logger,
) (*ReminderService, error) {
	if tasks == nil {
		return nil, fmt.Errorf("task repository is required")
	}
	if users == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if notifications == nil {
		return nil, fmt.Errorf("notification repository is required")
	}
	if dispatcher == nil {
		return nil, fmt.Errorf("dispatcher is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ReminderService{
		tasks:         tasks,
		users:         users,
		notifications: notifications,
		dispatcher:    dispatcher,
		logger:        logger,
		now:           time.Now,
	}, nil
}

func (s *ReminderService) SetMetrics(metrics *observability.Metrics) {
	if s == nil {
		return
	}
	s.metrics = metrics
}

// SetClock overrides the evaluation clock; a periodic trigger (cron, poller)
// substitutes here without touching the evaluation logic.
func (s *ReminderService) SetClock(now func() time.Time) {
	if s == nil || now == nil {
		return
	}
	s.now = now
}

// EvaluateReminders returns the tasks due tomorrow (relative to asOf) that
// have no task-due notification for their user created on asOf's calendar
// day. Idempotent: re-running on the same day after a dispatch excludes the
// already-reminded tasks.
func (s *ReminderService) EvaluateReminders(ctx context.Context, asOf time.Time) ([]domain.ReminderCandidate, error) {
	return s.evaluate(ctx, "", asOf)
}

// EvaluateRemindersForUser is the user-scoped variant serving the
// pull-triggered check endpoint.
func (s *ReminderService) EvaluateRemindersForUser(ctx context.Context, userID string, asOf time.Time) ([]domain.ReminderCandidate, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrValidation)
	}
	return s.evaluate(ctx, userID, asOf)
}

func (s *ReminderService) evaluate(ctx context.Context, userID string, asOf time.Time) ([]domain.ReminderCandidate, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	// Day windows are UTC; the stored created_at is too. Normalize before any
	// calendar arithmetic so a local-zone clock cannot shift the dedup day.
	asOf = asOf.UTC()
	dueDay := asOf.AddDate(0, 0, 1)

	var (
		dueTasks []domain.Task
		err      error
	)
	if userID == "" {
		dueTasks, err = s.tasks.ListDueOn(ctx, dueDay)
	} else {
		dueTasks, err = s.tasks.ListDueOnForUser(ctx, userID, dueDay)
	}
	if err != nil {
		if s.metrics != nil {
			s.metrics.IncReminderCheckFailure()
		}
		return nil, fmt.Errorf("%w: failed to scan due tasks: %v", domain.ErrUnavailable, err)
	}

	candidates := make([]domain.ReminderCandidate, 0, len(dueTasks))
	for i := range dueTasks {
		task := dueTasks[i]

		reminded, err := s.notifications.HasTaskDueReminder(ctx, task.UserID, task.ID, asOf)
		if err != nil {
			if s.metrics != nil {
				s.metrics.IncReminderCheckFailure()
			}
			return nil, fmt.Errorf("%w: failed to read dedup ledger: %v", domain.ErrUnavailable, err)
		}
		if reminded {
			continue
		}

		candidates = append(candidates, domain.ReminderCandidate{
			UserID: task.UserID,
			Task:   task,
		})
	}

	return candidates, nil
}

// CheckUser runs the pull-triggered check for one user: evaluate, dispatch
// qualifying reminders across the user's enabled channels, then report inbox
// state. Unknown user is the only caller error.
func (s *ReminderService) CheckUser(ctx context.Context, userID string) (CheckResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(userID) == "" {
		return CheckResult{}, fmt.Errorf("%w: user id is required", domain.ErrValidation)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return CheckResult{}, fmt.Errorf("%w: unknown user %q", domain.ErrNotFound, userID)
		}
		return CheckResult{}, fmt.Errorf("%w: failed to load user: %v", domain.ErrUnavailable, err)
	}

	asOf := s.now()
	candidates, err := s.EvaluateRemindersForUser(ctx, userID, asOf)
	if err != nil {
		return CheckResult{}, err
	}

	newReminders := s.dispatchCandidates(ctx, candidates, map[string][]domain.Channel{
		user.ID: user.EnabledChannels(),
	})

	unread, err := s.notifications.UnreadCount(ctx, userID)
	if err != nil {
		return CheckResult{}, fmt.Errorf("%w: failed to count unread notifications: %v", domain.ErrUnavailable, err)
	}

	latest, err := s.notifications.LatestByUser(ctx, userID)
	if err != nil {
		return CheckResult{}, fmt.Errorf("%w: failed to load latest notification: %v", domain.ErrUnavailable, err)
	}

	return CheckResult{
		NewReminders: newReminders,
		UnreadCount:  unread,
		Latest:       latest,
	}, nil
}

// DispatchDueReminders runs a global evaluate-and-dispatch sweep. Used by the
// optional poller; returns the number of reminders whose website write landed.
func (s *ReminderService) DispatchDueReminders(ctx context.Context) (int, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	candidates, err := s.EvaluateReminders(ctx, s.now())
	if err != nil {
		return 0, err
	}

	return s.dispatchCandidates(ctx, candidates, nil), nil
}

// dispatchCandidates fans candidates out through the dispatcher. channelsByUser
// caches per-user channel sets; missing entries are resolved on demand. A
// candidate counts as dispatched when its website write landed.
func (s *ReminderService) dispatchCandidates(
	ctx context.Context,
	candidates []domain.ReminderCandidate,
	channelsByUser map[string][]domain.Channel,
) int {
	if channelsByUser == nil {
		channelsByUser = make(map[string][]domain.Channel)
	}

	dispatched := 0
	for i := range candidates {
		candidate := candidates[i]

		channels, cached := channelsByUser[candidate.UserID]
		if !cached {
			user, err := s.users.GetByID(ctx, candidate.UserID)
			if err != nil {
				s.logger.Warn("skipping reminder for unresolvable user",
					zap.String("userId", candidate.UserID),
					zap.String("taskId", candidate.Task.ID),
					zap.Error(err),
				)
				continue
			}
			channels = user.EnabledChannels()
			channelsByUser[candidate.UserID] = channels
		}

		taskID := candidate.Task.ID
		result, err := s.dispatcher.Dispatch(ctx, DispatchRequest{
			UserID:   candidate.UserID,
			Title:    reminderTitle,
			Body:     reminderBody(candidate.Task),
			Category: domain.CategoryTaskDue,
			TaskID:   &taskID,
			Channels: channels,
		})
		if err != nil {
			s.logger.Error("reminder dispatch rejected",
				zap.String("userId", candidate.UserID),
				zap.String("taskId", candidate.Task.ID),
				zap.Error(err),
			)
			continue
		}

		if result.OK(domain.ChannelWebsite) {
			dispatched++
		}
	}

	if s.metrics != nil {
		s.metrics.IncRemindersCreated(dispatched)
	}

	return dispatched
}

func reminderBody(task domain.Task) string {
	return fmt.Sprintf("%q is due on %s. Don't forget to wrap it up.",
		task.Title, task.DueDate.Format("Jan 2, 2006"))
}
