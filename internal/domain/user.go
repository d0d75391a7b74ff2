package domain

import "strings"

// User is a read model over the profile table: the recipient identity and
// notification preferences the dispatcher needs. Owned by the profile service.
type User struct {
	ID          string
	Email       string
	ChatID      string
	NotifyEmail bool
	NotifyChat  bool
}

// HasEmail reports whether an email address is on file.
func (u User) HasEmail() bool { return strings.TrimSpace(u.Email) != "" }

// HasChatID reports whether a chat identity is on file.
func (u User) HasChatID() bool { return strings.TrimSpace(u.ChatID) != "" }

// EnabledChannels returns the channels a reminder should be fanned out to:
// website always, email/chat only when the user opted in.
func (u User) EnabledChannels() []Channel {
	channels := []Channel{ChannelWebsite}
	if u.NotifyEmail {
		channels = append(channels, ChannelEmail)
	}
	if u.NotifyChat {
		channels = append(channels, ChannelChat)
	}
	return channels
}
