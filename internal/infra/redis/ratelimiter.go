package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/studyhub/notifier/internal/ratelimit"
)

const (
	defaultSendsPerSec int64 = 25
	pollStep                 = 10 * time.Millisecond
	pollMax                  = 50 * time.Millisecond
	windowSeconds            = 1
)

// Fixed one-second window: INCR the window key, set its TTL on first hit,
// reject once the count passes the limit.
var windowScript = goredis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[2])
end
if current > tonumber(ARGV[1]) then
  return 0
end
return 1
`)

var _ ratelimit.ChannelLimiter = (*SendLimiter)(nil)

// SendLimiter is a distributed per-channel send limiter backed by Redis. It
// keeps a burst of reminder fan-outs from flooding the mail and chat-bot
// providers when several app instances dispatch at once.
type SendLimiter struct {
	client      *goredis.Client
	sendsPerSec int64
	now         func() time.Time
	sleep       func(ctx context.Context, d time.Duration) error
}

func NewSendLimiter(client *goredis.Client, sendsPerSec int) (*SendLimiter, error) {
	return newSendLimiter(client, int64(sendsPerSec), time.Now, sleepWithContext)
}

func newSendLimiter(
	client *goredis.Client,
	sendsPerSec int64,
	nowFn func() time.Time,
	sleepFn func(ctx context.Context, d time.Duration) error,
) (*SendLimiter, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if sendsPerSec <= 0 {
		sendsPerSec = defaultSendsPerSec
	}
	if nowFn == nil {
		nowFn = time.Now
	}
	if sleepFn == nil {
		sleepFn = sleepWithContext
	}

	return &SendLimiter{
		client:      client,
		sendsPerSec: sendsPerSec,
		now:         nowFn,
		sleep:       sleepFn,
	}, nil
}

func (l *SendLimiter) Allow(ctx context.Context, channel string) (bool, error) {
	if l == nil || l.client == nil {
		return false, fmt.Errorf("send limiter is not initialized")
	}

	normalized := strings.ToLower(strings.TrimSpace(channel))
	if normalized == "" {
		return false, fmt.Errorf("channel is required")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	key := fmt.Sprintf("sendlimit:%s:%d", normalized, l.now().UTC().Unix())
	result, err := windowScript.Run(ctx, l.client, []string{key}, l.sendsPerSec, windowSeconds).Int()
	if err != nil {
		return false, fmt.Errorf("failed to evaluate send limit: %w", err)
	}

	return result == 1, nil
}

func (l *SendLimiter) Wait(ctx context.Context, channel string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	backoff := pollStep
	for {
		allowed, err := l.Allow(ctx, channel)
		if err != nil {
			return err
		}
		if allowed {
			return nil
		}

		if err := l.sleep(ctx, backoff); err != nil {
			return err
		}

		backoff += pollStep
		if backoff > pollMax {
			backoff = pollMax
		}
	}
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
