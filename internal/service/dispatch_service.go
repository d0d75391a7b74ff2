package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/studyhub/notifier/internal/channel"
	"github.com/studyhub/notifier/internal/domain"
	"github.com/studyhub/notifier/internal/observability"
	"github.com/studyhub/notifier/internal/ratelimit"
	"github.com/studyhub/notifier/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DispatchRequest describes one fan-out across a set of channels.
type DispatchRequest struct {
	UserID   string
	Title    string
	Body     string
	Category domain.Category
	TaskID   *string
	Channels []domain.Channel
}

// DispatchService is the coordinator: it resolves the recipient, invokes the
// relevant channel adapters, and aggregates per-channel outcomes. Channel
// failures never propagate; only invalid input (unknown recipient, bad
// channel set) is an error.
type DispatchService struct {
	users    repository.UserRepository
	attempts repository.AttemptRepository
	registry channel.Registry
	limiter  ratelimit.ChannelLimiter
	logger   *zap.Logger
	metrics  *observability.Metrics
	now      func() time.Time
}

func NewDispatchService(
	users repository.UserRepository,
	attempts repository.AttemptRepository,
	registry channel.Registry,
	limiter ratelimit.ChannelLimiter,
	logger *zap.Logger,
) (*DispatchService, error) {
	if users == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if attempts == nil {
		return nil, fmt.Errorf("attempt repository is required")
	}
	if len(registry) == 0 {
		return nil, fmt.Errorf("channel registry is required")
	}
	if limiter == nil {
		limiter = ratelimit.Unlimited{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &DispatchService{
		users:    users,
		attempts: attempts,
		registry: registry,
		limiter:  limiter,
		logger:   logger,
		now:      time.Now,
	}, nil
}

func (s *DispatchService) SetMetrics(metrics *observability.Metrics) {
	if s == nil {
		return
	}
	s.metrics = metrics
}

func (s *DispatchService) Dispatch(ctx context.Context, req DispatchRequest) (domain.DispatchResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	channels, err := normalizeChannels(req.Channels)
	if err != nil {
		return domain.DispatchResult{}, err
	}
	if strings.TrimSpace(req.UserID) == "" {
		return domain.DispatchResult{}, fmt.Errorf("%w: user id is required", domain.ErrValidation)
	}
	if !req.Category.IsValid() {
		return domain.DispatchResult{}, fmt.Errorf("%w: invalid category %q", domain.ErrValidation, req.Category)
	}

	user, err := s.users.GetByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.DispatchResult{}, fmt.Errorf("%w: unknown recipient %q", domain.ErrNotFound, req.UserID)
		}
		return domain.DispatchResult{}, fmt.Errorf("%w: failed to load recipient: %v", domain.ErrUnavailable, err)
	}

	msg := channel.Message{
		Title:    req.Title,
		Body:     req.Body,
		Category: req.Category,
		TaskID:   req.TaskID,
		SentAt:   s.now().UTC(),
	}

	result := domain.NewDispatchResult()

	// The website write is the user-visible fallback channel: attempt it first
	// and never gate it on the network channels.
	remaining := make([]domain.Channel, 0, len(channels))
	for _, ch := range channels {
		if ch == domain.ChannelWebsite {
			outcome := s.attemptChannel(ctx, ch, *user, msg)
			result.Record(ch, outcome.OK, outcome.Reason)
			continue
		}
		remaining = append(remaining, ch)
	}

	if len(remaining) > 0 {
		var mu sync.Mutex
		g, groupCtx := errgroup.WithContext(ctx)
		for _, ch := range remaining {
			g.Go(func() error {
				outcome := s.attemptChannel(groupCtx, ch, *user, msg)
				mu.Lock()
				result.Record(ch, outcome.OK, outcome.Reason)
				mu.Unlock()
				return nil
			})
		}
		// Closures always return nil; failures stay inside their outcome.
		_ = g.Wait()
	}

	return result, nil
}

// RecentAttempts returns the newest dispatch attempts for a user, the audit
// trail behind the boolean outcomes.
func (s *DispatchService) RecentAttempts(ctx context.Context, userID string, limit int) ([]domain.DispatchAttempt, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrValidation)
	}
	return s.attempts.ListByUser(ctx, userID, limit)
}

func (s *DispatchService) attemptChannel(
	ctx context.Context,
	ch domain.Channel,
	user domain.User,
	msg channel.Message,
) domain.Outcome {
	adapter, found := s.registry.Get(ch)
	if !found {
		s.logger.Error("no adapter configured for channel", zap.String("channel", ch.String()))
		outcome := domain.Outcome{OK: false, Reason: "channel not configured"}
		s.recordAttempt(ctx, user.ID, ch, nil, outcome)
		return outcome
	}

	if ch != domain.ChannelWebsite {
		if err := s.limiter.Wait(ctx, ch.String()); err != nil {
			// Degrade open: a broken limiter should not block delivery.
			s.logger.Warn("send limiter unavailable, continuing",
				zap.String("channel", ch.String()),
				zap.Error(err),
			)
		}
	}

	sendStart := s.now()
	receipt, err := adapter.Send(ctx, user, msg)
	if s.metrics != nil {
		s.metrics.ObserveSendDuration(ch.String(), s.now().Sub(sendStart))
	}

	outcome := domain.Outcome{OK: err == nil}
	if err != nil {
		outcome.Reason = failureReason(ch, err)
		s.logger.Warn("channel attempt failed",
			zap.String("userId", user.ID),
			zap.String("channel", ch.String()),
			zap.String("reason", outcome.Reason),
			zap.Error(err),
		)
	}

	if s.metrics != nil {
		s.metrics.IncDispatch(ch.String(), outcome.OK)
	}
	s.recordAttempt(ctx, user.ID, ch, receipt, outcome)

	return outcome
}

func (s *DispatchService) recordAttempt(
	ctx context.Context,
	userID string,
	ch domain.Channel,
	receipt *channel.Receipt,
	outcome domain.Outcome,
) {
	var notificationID *string
	if receipt != nil && strings.TrimSpace(receipt.NotificationID) != "" {
		value := receipt.NotificationID
		notificationID = &value
	}

	var reason *string
	if trimmed := strings.TrimSpace(outcome.Reason); trimmed != "" {
		reason = &trimmed
	}

	attempt := &domain.DispatchAttempt{
		ID:             uuid.NewString(),
		UserID:         userID,
		NotificationID: notificationID,
		Channel:        ch,
		OK:             outcome.OK,
		Reason:         reason,
		CreatedAt:      s.now().UTC(),
	}

	if err := s.attempts.Create(ctx, attempt); err != nil {
		s.logger.Error("failed to record dispatch attempt",
			zap.String("userId", userID),
			zap.String("channel", ch.String()),
			zap.Error(err),
		)
	}
}

func failureReason(ch domain.Channel, err error) string {
	if errors.Is(err, channel.ErrNoTarget) {
		switch ch {
		case domain.ChannelEmail:
			return domain.ReasonNoEmailOnFile
		case domain.ChannelChat:
			return domain.ReasonNoChatIdentity
		}
	}
	return err.Error()
}

func normalizeChannels(channels []domain.Channel) ([]domain.Channel, error) {
	if len(channels) == 0 {
		return nil, fmt.Errorf("%w: at least one channel is required", domain.ErrValidation)
	}

	seen := make(map[domain.Channel]struct{}, len(channels))
	normalized := make([]domain.Channel, 0, len(channels))
	for _, ch := range channels {
		if !ch.IsValid() {
			return nil, fmt.Errorf("%w: invalid channel %q", domain.ErrValidation, ch)
		}
		if _, dup := seen[ch]; dup {
			continue
		}
		seen[ch] = struct{}{}
		normalized = append(normalized, ch)
	}

	return normalized, nil
}
