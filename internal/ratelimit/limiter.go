package ratelimit

import "context"

// ChannelLimiter throttles outbound sends per delivery channel.
type ChannelLimiter interface {
	Allow(ctx context.Context, channel string) (bool, error)
	Wait(ctx context.Context, channel string) error
}

// Unlimited is a pass-through limiter for tests and single-node dev setups.
type Unlimited struct{}

func (Unlimited) Allow(ctx context.Context, channel string) (bool, error) { return true, nil }
func (Unlimited) Wait(ctx context.Context, channel string) error          { return nil }
