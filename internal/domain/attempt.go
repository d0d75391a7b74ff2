package domain

import "time"

// DispatchAttempt records a single channel attempt within a dispatch, success
// or failure, so outcomes survive the boolean contract at the coordinator
// boundary.
type DispatchAttempt struct {
	ID             string
	UserID         string
	NotificationID *string
	Channel        Channel
	OK             bool
	Reason         *string
	CreatedAt      time.Time
}
