package channel

import (
	"context"
	"testing"

	"github.com/studyhub/notifier/internal/domain"
)

type staticAdapter struct {
	ch domain.Channel
}

func (s *staticAdapter) Channel() domain.Channel { return s.ch }

func (s *staticAdapter) Send(ctx context.Context, user domain.User, msg Message) (*Receipt, error) {
	return &Receipt{}, nil
}

func TestNewRegistryLookup(t *testing.T) {
	t.Parallel()

	website := &staticAdapter{ch: domain.ChannelWebsite}
	email := &staticAdapter{ch: domain.ChannelEmail}

	registry, err := NewRegistry(website, email)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	got, ok := registry.Get(domain.ChannelWebsite)
	if !ok || got != Adapter(website) {
		t.Error("Get(website) did not return the registered adapter")
	}
	if _, ok := registry.Get(domain.ChannelChat); ok {
		t.Error("Get(chat) = ok for an unregistered channel")
	}
}

func TestNewRegistryRejectsDuplicates(t *testing.T) {
	t.Parallel()

	_, err := NewRegistry(
		&staticAdapter{ch: domain.ChannelEmail},
		&staticAdapter{ch: domain.ChannelEmail},
	)
	if err == nil {
		t.Fatal("NewRegistry() error = nil, want duplicate channel error")
	}
}

func TestNewRegistryRejectsInvalidChannel(t *testing.T) {
	t.Parallel()

	if _, err := NewRegistry(&staticAdapter{ch: "pigeon"}); err == nil {
		t.Fatal("NewRegistry() error = nil, want invalid channel error")
	}
	if _, err := NewRegistry(nil); err == nil {
		t.Fatal("NewRegistry(nil) error = nil, want error")
	}
}
