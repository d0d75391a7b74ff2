package domain

import (
	"fmt"
	"strings"
	"time"
)

// Category classifies a notification in the inbox.
type Category string

const (
	CategoryTaskDue        Category = "task_due"
	CategorySystem         Category = "system"
	CategoryAchievement    Category = "achievement"
	CategoryReminder       Category = "reminder"
	CategoryTaskAssignment Category = "task_assignment"
)

func (c Category) String() string { return string(c) }

func (c Category) IsValid() bool {
	switch c {
	case CategoryTaskDue, CategorySystem, CategoryAchievement, CategoryReminder, CategoryTaskAssignment:
		return true
	}
	return false
}

func ParseCategoryFromString(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", fmt.Errorf("%w: invalid category %q", ErrValidation, s)
	}
	return c, nil
}

// Channel represents one delivery medium for a notification.
type Channel string

const (
	ChannelWebsite Channel = "website"
	ChannelEmail   Channel = "email"
	ChannelChat    Channel = "chat"
)

func (c Channel) String() string { return string(c) }

func (c Channel) IsValid() bool {
	switch c {
	case ChannelWebsite, ChannelEmail, ChannelChat:
		return true
	}
	return false
}

func ParseChannelFromString(s string) (Channel, error) {
	ch := Channel(strings.ToLower(strings.TrimSpace(s)))
	if !ch.IsValid() {
		return "", fmt.Errorf("%w: invalid channel %q", ErrValidation, s)
	}
	return ch, nil
}

// AllChannels returns every delivery channel in a stable order.
func AllChannels() []Channel {
	return []Channel{ChannelWebsite, ChannelEmail, ChannelChat}
}

const (
	MaxTitleLength   = 255
	MaxMessageLength = 10000
)

// Notification is one delivered-or-attempted message. Rows are created only by
// the website channel adapter and mutated only by mark-read operations; they
// are never deleted.
type Notification struct {
	ID        string
	UserID    string
	TaskID    *string
	Title     string
	Message   string
	Category  Category
	IsRead    bool
	ReadAt    *time.Time
	CreatedAt time.Time
}

func (n *Notification) Validate() error {
	if strings.TrimSpace(n.UserID) == "" {
		return fmt.Errorf("%w: user id is required", ErrValidation)
	}
	if strings.TrimSpace(n.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if strings.TrimSpace(n.Message) == "" {
		return fmt.Errorf("%w: message is required", ErrValidation)
	}
	if !n.Category.IsValid() {
		return fmt.Errorf("%w: invalid category %q", ErrValidation, n.Category)
	}

	if titleLen := len([]rune(n.Title)); titleLen > MaxTitleLength {
		return fmt.Errorf("%w: title exceeds %d characters (got %d)", ErrValidation, MaxTitleLength, titleLen)
	}
	if msgLen := len([]rune(n.Message)); msgLen > MaxMessageLength {
		return fmt.Errorf("%w: message exceeds %d characters (got %d)", ErrValidation, MaxMessageLength, msgLen)
	}

	// read_at is set if and only if the notification is read.
	if n.IsRead && n.ReadAt == nil {
		return fmt.Errorf("%w: read notification is missing read_at", ErrValidation)
	}
	if !n.IsRead && n.ReadAt != nil {
		return fmt.Errorf("%w: unread notification carries read_at", ErrValidation)
	}

	return nil
}
