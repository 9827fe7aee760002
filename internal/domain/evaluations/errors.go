package evaluations

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrEmployeeNotFound   = errors.New("employee not found")
	ErrEvaluationNotFound = errors.New("evaluation not found")
	ErrObjectionNotFound  = errors.New("objection not found")

	// ErrDuplicate guards the (employee, period, type) uniqueness among
	// non-deleted evaluations.
	ErrDuplicate = errors.New("an evaluation already exists for this employee and period")

	ErrAlreadyFinalized = errors.New("evaluation is already finalized")

	// ErrObjectionForbidden rejects objections filed by anyone other than
	// the evaluated employee.
	ErrObjectionForbidden = errors.New("objection must come from the evaluated employee")
	ErrScoresIncomplete   = errors.New("all scores must be entered before finalizing")

	// ErrInvalidState is wrapped by StateError with the offending status.
	ErrInvalidState = errors.New("operation not allowed in current evaluation state")

	// ErrScoreOutOfRange is wrapped by ScoreRangeError naming the field.
	ErrScoreOutOfRange = errors.New("score must be between 0 and 5")
)

type StateError struct {
	Op     string
	Status Status
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s evaluation in status %q", e.Op, e.Status)
}

func (e *StateError) Unwrap() error { return ErrInvalidState }

// ScoreRangeError identifies which sub-score was out of range.
type ScoreRangeError struct {
	Field string
	Value decimal.Decimal
}

func (e *ScoreRangeError) Error() string {
	return fmt.Sprintf("%s must be between 0 and 5, got %s", e.Field, e.Value.String())
}

func (e *ScoreRangeError) Unwrap() error { return ErrScoreOutOfRange }
