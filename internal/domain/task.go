package domain

import (
	"fmt"
	"strings"
	"time"
)

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

func (s TaskStatus) String() string { return string(s) }

func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

func ParseTaskStatusFromString(s string) (TaskStatus, error) {
	st := TaskStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("%w: invalid task status %q", ErrValidation, s)
	}
	return st, nil
}

// Task is a read model over the task planner's table. The engine never writes
// tasks; it only scans due dates for reminder candidates.
type Task struct {
	ID      string
	UserID  string
	Title   string
	DueDate time.Time
	Status  TaskStatus
}

// ReminderCandidate is a task eligible for a due-date reminder that has not
// been reminded today. Derived, never persisted.
type ReminderCandidate struct {
	UserID string
	Task   Task
}
