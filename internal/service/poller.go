package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const defaultPollInterval = 5 * time.Minute

// ReminderChecker is the sweep the poller drives.
type ReminderChecker interface {
	DispatchDueReminders(ctx context.Context) (int, error)
}

// Poller periodically runs the global reminder sweep. It is the optional
// timer-driven substitute for the pull-triggered check endpoint; both share
// the same evaluator, so enabling it changes when reminders fire, not whether
// they deduplicate.
type Poller struct {
	reminders ReminderChecker
	logger    *zap.Logger
	interval  time.Duration
}

func NewPoller(reminders ReminderChecker, interval time.Duration, logger *zap.Logger) (*Poller, error) {
	if reminders == nil {
		return nil, fmt.Errorf("reminder checker is required")
	}
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Poller{
		reminders: reminders,
		logger:    logger,
		interval:  interval,
	}, nil
}

func (p *Poller) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// Run an initial sweep so already-due reminders do not wait for the first
	// ticker edge.
	p.sweep(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.sweep(ctx)
		}
	}
}

func (p *Poller) sweep(ctx context.Context) {
	dispatched, err := p.reminders.DispatchDueReminders(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		p.logger.Error("reminder sweep failed", zap.Error(err))
		return
	}

	if dispatched > 0 {
		p.logger.Info("reminder sweep dispatched reminders", zap.Int("count", dispatched))
	}
}
