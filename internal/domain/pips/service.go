package pips

import (
	"context"
	"errors"
	"strings"
	"time"
)

// DefaultDuration is how far out the due date sits when a plan is opened
// without an explicit one.
const DefaultDuration = 3 // months

type Service struct {
	store StoreAPI
	now   func() time.Time
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store, now: time.Now}
}

func (s *Service) Get(ctx context.Context, pipID string) (PIP, error) {
	return s.store.Get(ctx, pipID)
}

func (s *Service) List(ctx context.Context, filter Filter, limit, offset int) ([]PIP, int, error) {
	return s.store.List(ctx, filter, limit, offset)
}

// Create opens a manual plan. Plans opened by evaluation finalization take
// the same shape but are inserted by that transaction, not here.
func (s *Service) Create(ctx context.Context, draft Draft, actorID string) (PIP, error) {
	if strings.TrimSpace(draft.Title) == "" {
		return PIP{}, errors.New("plan title is required")
	}
	exists, err := s.store.EmployeeExists(ctx, draft.EmployeeID)
	if err != nil {
		return PIP{}, err
	}
	if !exists {
		return PIP{}, ErrEmployeeNotFound
	}

	if draft.StartDate.IsZero() {
		draft.StartDate = s.now()
	}
	if draft.DueDate.IsZero() {
		draft.DueDate = draft.StartDate.AddDate(0, DefaultDuration, 0)
	}
	if draft.DueDate.Before(draft.StartDate) {
		return PIP{}, errors.New("due date must not precede the start date")
	}

	id, err := s.store.Insert(ctx, draft, actorID)
	if err != nil {
		return PIP{}, err
	}
	return s.store.Get(ctx, id)
}

// Update edits the plan body. Closed plans are immutable.
func (s *Service) Update(ctx context.Context, pipID string, draft Draft, actorID string) (PIP, error) {
	current, err := s.store.Get(ctx, pipID)
	if err != nil {
		return PIP{}, err
	}
	if !current.Status.Open() {
		return PIP{}, &TransitionError{From: current.Status, To: current.Status}
	}
	if draft.DueDate.Before(draft.StartDate) {
		return PIP{}, errors.New("due date must not precede the start date")
	}

	if err := s.store.Update(ctx, pipID, draft, actorID); err != nil {
		return PIP{}, err
	}
	return s.store.Get(ctx, pipID)
}

// Transition moves the plan along its lifecycle. Completing or cancelling
// records the outcome and closes the plan.
func (s *Service) Transition(ctx context.Context, pipID string, next Status, outcome, actorID string) (PIP, error) {
	current, err := s.store.Get(ctx, pipID)
	if err != nil {
		return PIP{}, err
	}
	if !current.Status.CanBecome(next) {
		return PIP{}, &TransitionError{From: current.Status, To: next}
	}

	closing := next == StatusCompleted || next == StatusCancelled
	if err := s.store.SetStatus(ctx, pipID, next, outcome, actorID, closing); err != nil {
		return PIP{}, err
	}
	return s.store.Get(ctx, pipID)
}

func (s *Service) Delete(ctx context.Context, pipID, actorID string) (bool, error) {
	current, err := s.store.Get(ctx, pipID)
	if err != nil {
		if errors.Is(err, ErrPIPNotFound) {
			return false, nil
		}
		return false, err
	}
	if current.Status != StatusDraft {
		return false, &TransitionError{From: current.Status, To: current.Status}
	}
	return s.store.SoftDelete(ctx, pipID, actorID)
}
