package channel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/studyhub/notifier/internal/domain"
)

// ErrNoTarget is returned when the recipient has no identity for the channel
// (no email address, no chat id). Callers record it as a failed outcome with a
// distinct reason; no network call is made.
var ErrNoTarget = errors.New("no delivery target on file")

// Message is the channel-agnostic payload of one dispatch.
type Message struct {
	Title    string
	Body     string
	Category domain.Category
	TaskID   *string
	SentAt   time.Time
}

// Receipt carries delivery metadata back to the coordinator. Only the website
// channel produces a notification id.
type Receipt struct {
	NotificationID string
}

// Adapter is the single capability every delivery channel implements. A nil
// error means the channel reported success; adapters never retry.
type Adapter interface {
	Channel() domain.Channel
	Send(ctx context.Context, user domain.User, msg Message) (*Receipt, error)
}

// Registry selects adapters by channel, replacing per-call-site switches.
type Registry map[domain.Channel]Adapter

func NewRegistry(adapters ...Adapter) (Registry, error) {
	registry := make(Registry, len(adapters))
	for _, adapter := range adapters {
		if adapter == nil {
			return nil, fmt.Errorf("nil adapter")
		}
		ch := adapter.Channel()
		if !ch.IsValid() {
			return nil, fmt.Errorf("adapter reports invalid channel %q", ch)
		}
		if _, exists := registry[ch]; exists {
			return nil, fmt.Errorf("duplicate adapter for channel %q", ch)
		}
		registry[ch] = adapter
	}
	return registry, nil
}

func (r Registry) Get(ch domain.Channel) (Adapter, bool) {
	adapter, ok := r[ch]
	return adapter, ok
}
