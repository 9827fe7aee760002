package pips

import (
	"errors"
	"fmt"
)

var (
	ErrPIPNotFound      = errors.New("improvement plan not found")
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrInvalidState     = errors.New("operation not allowed in current plan state")
)

type TransitionError struct {
	From, To Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("improvement plan cannot move from %q to %q", e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidState }
