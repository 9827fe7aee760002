package goals

import (
	"context"

	"github.com/shopspring/decimal"
)

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) Get(ctx context.Context, goalID string) (Goal, error) {
	return s.store.Get(ctx, goalID)
}

func (s *Service) List(ctx context.Context, filter Filter, limit, offset int) ([]Goal, int, error) {
	return s.store.List(ctx, filter, limit, offset)
}

// Create validates the draft, verifies the employee exists and inserts the
// goal as Draft. The weight-budget check happens inside the store
// transaction so concurrent creates for the same employee and year are
// serialized.
func (s *Service) Create(ctx context.Context, draft Draft, actorID string) (Goal, error) {
	if err := ValidateWeight(draft.Weight); err != nil {
		return Goal{}, err
	}
	exists, err := s.store.EmployeeExists(ctx, draft.EmployeeID)
	if err != nil {
		return Goal{}, err
	}
	if !exists {
		return Goal{}, ErrEmployeeNotFound
	}

	id, err := s.store.Insert(ctx, draft, actorID)
	if err != nil {
		return Goal{}, err
	}
	return s.store.Get(ctx, id)
}

// Update replaces every editable field. Only Draft and Approved goals may be
// edited; the budget is re-checked only when the weight actually changes,
// against the new start date's year and excluding this goal.
func (s *Service) Update(ctx context.Context, goalID string, draft Draft, actorID string) (Goal, error) {
	current, err := s.store.Get(ctx, goalID)
	if err != nil {
		return Goal{}, err
	}
	if !current.Status.Editable() {
		return Goal{}, &StateError{Op: "update", Status: current.Status}
	}
	if err := ValidateWeight(draft.Weight); err != nil {
		return Goal{}, err
	}

	draft.EmployeeID = current.EmployeeID
	checkBudget := !current.Weight.Equal(draft.Weight)
	if err := s.store.Update(ctx, goalID, draft, actorID, checkBudget); err != nil {
		return Goal{}, err
	}
	return s.store.Get(ctx, goalID)
}

// Delete soft-deletes a Draft goal. A missing or already-deleted goal
// reports false rather than an error; deleting after approval is an invalid
// operation.
func (s *Service) Delete(ctx context.Context, goalID, actorID string) (bool, error) {
	current, err := s.store.Get(ctx, goalID)
	if err != nil {
		if err == ErrGoalNotFound {
			return false, nil
		}
		return false, err
	}
	if !current.Status.Deletable() {
		return false, &StateError{Op: "delete", Status: current.Status}
	}
	return s.store.SoftDelete(ctx, goalID, actorID)
}

// UpdateProgress records a progress value in [0,100] and recomputes the
// status unconditionally: exactly 100 completes the goal, anything else puts
// it (back) in progress.
func (s *Service) UpdateProgress(ctx context.Context, goalID string, progress decimal.Decimal, actorID string) (Goal, error) {
	current, err := s.store.Get(ctx, goalID)
	if err != nil {
		return Goal{}, err
	}
	if !current.Status.Trackable() {
		return Goal{}, &StateError{Op: "update progress of", Status: current.Status}
	}
	if err := ValidateProgress(progress); err != nil {
		return Goal{}, err
	}

	next := StatusForProgress(progress)
	if err := s.store.SetProgress(ctx, goalID, progress, next, actorID); err != nil {
		return Goal{}, err
	}
	return s.store.Get(ctx, goalID)
}

// Decide approves or rejects a Draft goal. Approval stamps the approver;
// rejection cancels the goal, releasing its weight from the budget.
func (s *Service) Decide(ctx context.Context, goalID string, approved bool, actorID string) (Goal, error) {
	current, err := s.store.Get(ctx, goalID)
	if err != nil {
		return Goal{}, err
	}
	if !current.Status.AwaitsDecision() {
		return Goal{}, &StateError{Op: "decide on", Status: current.Status}
	}

	next := StatusApproved
	if !approved {
		next = StatusCancelled
	}
	if err := s.store.SetDecision(ctx, goalID, next, actorID, approved); err != nil {
		return Goal{}, err
	}
	return s.store.Get(ctx, goalID)
}

// ValidateWeights reports whether the employee's committed weight total for
// the year sits exactly at 100. Used as a readiness signal before the
// evaluation cycle opens.
func (s *Service) ValidateWeights(ctx context.Context, employeeID string, year int) (bool, decimal.Decimal, error) {
	total, err := s.store.ActiveWeightTotal(ctx, employeeID, year, "")
	if err != nil {
		return false, decimal.Zero, err
	}
	return BudgetComplete(total), total, nil
}
