package pips

import (
	"fmt"
	"time"
)

// PIP is a Performance Improvement Plan. Plans are opened automatically
// when an evaluation finalizes below the score threshold, or by hand.
type PIP struct {
	ID           string     `json:"id"`
	EmployeeID   string     `json:"employeeId"`
	EvaluationID string     `json:"evaluationId,omitempty"`
	Title        string     `json:"title"`
	Reason       string     `json:"reason"`
	Actions      string     `json:"actions,omitempty"`
	StartDate    time.Time  `json:"startDate"`
	DueDate      time.Time  `json:"dueDate"`
	Status       Status     `json:"status"`
	Outcome      string     `json:"outcome,omitempty"`
	ClosedAt     *time.Time `json:"closedAt,omitempty"`
	ClosedBy     string     `json:"closedBy,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	CreatedBy    string     `json:"createdBy,omitempty"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	UpdatedBy    string     `json:"updatedBy,omitempty"`
}

type Draft struct {
	EmployeeID   string
	EvaluationID string
	Title        string
	Reason       string
	Actions      string
	StartDate    time.Time
	DueDate      time.Time
}

type Filter struct {
	EmployeeID string
	Status     Status
}

type Status string

const (
	StatusDraft     Status = "draft"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func ParseStatus(value string) (Status, error) {
	switch Status(value) {
	case StatusDraft, StatusActive, StatusCompleted, StatusCancelled:
		return Status(value), nil
	}
	return "", fmt.Errorf("unknown pip status %q", value)
}

// Transitions: draft plans activate or cancel, active plans close either way.
var transitions = map[Status]map[Status]bool{
	StatusDraft:  {StatusActive: true, StatusCancelled: true},
	StatusActive: {StatusCompleted: true, StatusCancelled: true},
}

func (s Status) CanBecome(next Status) bool {
	return transitions[s][next]
}

func (s Status) Open() bool {
	return s == StatusDraft || s == StatusActive
}
