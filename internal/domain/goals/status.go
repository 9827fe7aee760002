package goals

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusDraft      Status = "draft"
	StatusApproved   Status = "approved"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

type Type string

const (
	TypeStrategic   Type = "strategic"
	TypeOperational Type = "operational"
	TypeDevelopment Type = "development"
)

func ParseStatus(value string) (Status, error) {
	switch Status(value) {
	case StatusDraft, StatusApproved, StatusInProgress, StatusCompleted, StatusCancelled:
		return Status(value), nil
	}
	return "", fmt.Errorf("unknown goal status %q", value)
}

func ParseType(value string) (Type, error) {
	switch Type(value) {
	case TypeStrategic, TypeOperational, TypeDevelopment:
		return Type(value), nil
	}
	return "", fmt.Errorf("unknown goal type %q", value)
}

// The state machine: each operation enumerates its legal source states here,
// nowhere else.

var editableStates = map[Status]bool{
	StatusDraft:    true,
	StatusApproved: true,
}

var deletableStates = map[Status]bool{
	StatusDraft: true,
}

var progressStates = map[Status]bool{
	StatusApproved:   true,
	StatusInProgress: true,
}

var decidableStates = map[Status]bool{
	StatusDraft: true,
}

func (s Status) Editable() bool  { return editableStates[s] }
func (s Status) Deletable() bool { return deletableStates[s] }
func (s Status) Trackable() bool { return progressStates[s] }
func (s Status) AwaitsDecision() bool { return decidableStates[s] }

// CountsTowardBudget reports whether a goal in this state consumes weight
// budget. Cancelled goals release their weight.
func (s Status) CountsTowardBudget() bool {
	return s != StatusCancelled
}

var progressComplete = decimal.NewFromInt(100)

// StatusForProgress recomputes the status implied by a progress value.
// Exactly 100 means completed; anything else means in progress, even when
// progress is lowered from a previously completed goal.
func StatusForProgress(progress decimal.Decimal) Status {
	if progress.Equal(progressComplete) {
		return StatusCompleted
	}
	return StatusInProgress
}
