package goals

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrGoalNotFound     = errors.New("goal not found")

	// ErrInvalidState is wrapped by StateError with the offending status.
	ErrInvalidState = errors.New("operation not allowed in current goal state")

	// ErrWeightBudgetExceeded is wrapped by WeightBudgetError with totals.
	ErrWeightBudgetExceeded = errors.New("goal weights exceed 100%")

	ErrWeightOutOfRange   = errors.New("weight must be between 0 and 100")
	ErrProgressOutOfRange = errors.New("progress must be between 0 and 100")
)

// WeightBudgetError reports a rejected create/update along with the current
// committed total so callers can render an actionable message.
type WeightBudgetError struct {
	EmployeeID   string
	Year         int
	CurrentTotal decimal.Decimal
	Proposed     decimal.Decimal
}

func (e *WeightBudgetError) Error() string {
	return fmt.Sprintf("goal weights for %d exceed 100%%: current total %s%%, proposed %s%%",
		e.Year, e.CurrentTotal.String(), e.Proposed.String())
}

func (e *WeightBudgetError) Unwrap() error { return ErrWeightBudgetExceeded }

// StateError reports an operation attempted against a goal whose status does
// not permit it.
type StateError struct {
	Op     string
	Status Status
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s goal in status %q", e.Op, e.Status)
}

func (e *StateError) Unwrap() error { return ErrInvalidState }
