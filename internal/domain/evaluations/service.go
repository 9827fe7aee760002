package evaluations

import (
	"context"
	"errors"
	"time"
)

type Service struct {
	store StoreAPI
	now   func() time.Time
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store, now: time.Now}
}

func (s *Service) Get(ctx context.Context, evaluationID string) (Evaluation, error) {
	return s.store.Get(ctx, evaluationID)
}

func (s *Service) List(ctx context.Context, filter Filter, limit, offset int) ([]Evaluation, int, error) {
	return s.store.List(ctx, filter, limit, offset)
}

// Create opens a Draft evaluation. At most one non-deleted evaluation may
// exist per employee, period and type.
func (s *Service) Create(ctx context.Context, draft Draft, actorID string) (Evaluation, error) {
	exists, err := s.store.EmployeeExists(ctx, draft.EmployeeID)
	if err != nil {
		return Evaluation{}, err
	}
	if !exists {
		return Evaluation{}, ErrEmployeeNotFound
	}

	dup, err := s.store.Exists(ctx, draft.EmployeeID, draft.Period, draft.Type)
	if err != nil {
		return Evaluation{}, err
	}
	if dup {
		return Evaluation{}, ErrDuplicate
	}

	id, err := s.store.Insert(ctx, draft, actorID)
	if err != nil {
		return Evaluation{}, err
	}
	return s.store.Get(ctx, id)
}

// UpdateScores replaces the three sub-scores wholesale and moves the
// evaluation to InProgress. Scoring a finalized or approved evaluation is
// rejected.
func (s *Service) UpdateScores(ctx context.Context, evaluationID string, update ScoreUpdate, actorID string) (Evaluation, error) {
	current, err := s.store.Get(ctx, evaluationID)
	if err != nil {
		return Evaluation{}, err
	}
	if !current.Status.Scorable() {
		return Evaluation{}, &StateError{Op: "score", Status: current.Status}
	}
	if err := ValidateScoreUpdate(update); err != nil {
		return Evaluation{}, err
	}

	if err := s.store.UpdateScores(ctx, evaluationID, update, actorID); err != nil {
		return Evaluation{}, err
	}
	return s.store.Get(ctx, evaluationID)
}

func (s *Service) AddItem(ctx context.Context, evaluationID string, draft ItemDraft, actorID string) (Evaluation, error) {
	current, err := s.store.Get(ctx, evaluationID)
	if err != nil {
		return Evaluation{}, err
	}
	if !current.Status.Scorable() {
		return Evaluation{}, &StateError{Op: "add item to", Status: current.Status}
	}
	if err := ValidateScore("score", draft.Score); err != nil {
		return Evaluation{}, err
	}

	if _, err := s.store.InsertItem(ctx, evaluationID, draft, actorID); err != nil {
		return Evaluation{}, err
	}
	return s.store.Get(ctx, evaluationID)
}

func (s *Service) DeleteItem(ctx context.Context, evaluationID, itemID, actorID string) (bool, error) {
	current, err := s.store.Get(ctx, evaluationID)
	if err != nil {
		return false, err
	}
	if !current.Status.Scorable() {
		return false, &StateError{Op: "remove item from", Status: current.Status}
	}
	return s.store.SoftDeleteItem(ctx, evaluationID, itemID, actorID)
}

// Finalize computes the final score and rating and, when the score falls
// below the PIP threshold, opens an improvement plan. The arithmetic and
// the PIP insert commit atomically in the store.
func (s *Service) Finalize(ctx context.Context, evaluationID, actorID, managerNotes string) (FinalizeResult, error) {
	return s.store.Finalize(ctx, evaluationID, actorID, managerNotes, s.now())
}

// Approve moves a Finalized evaluation to Approved. No other state
// qualifies, in particular approving twice is rejected.
func (s *Service) Approve(ctx context.Context, evaluationID, actorID string) (Evaluation, error) {
	current, err := s.store.Get(ctx, evaluationID)
	if err != nil {
		return Evaluation{}, err
	}
	if !current.Status.Approvable() {
		return Evaluation{}, &StateError{Op: "approve", Status: current.Status}
	}

	if err := s.store.Approve(ctx, evaluationID, actorID); err != nil {
		return Evaluation{}, err
	}
	return s.store.Get(ctx, evaluationID)
}

// Object files an employee objection against a finalized or approved
// evaluation.
func (s *Service) Object(ctx context.Context, evaluationID, employeeID, reason, actorID string) (Objection, error) {
	current, err := s.store.Get(ctx, evaluationID)
	if err != nil {
		return Objection{}, err
	}
	if !current.Status.Objectable() {
		return Objection{}, &StateError{Op: "object to", Status: current.Status}
	}
	if current.EmployeeID != employeeID {
		return Objection{}, ErrObjectionForbidden
	}

	id, err := s.store.InsertObjection(ctx, evaluationID, employeeID, reason, actorID)
	if err != nil {
		return Objection{}, err
	}
	return s.store.GetObjection(ctx, id)
}

func (s *Service) Objections(ctx context.Context, evaluationID string) ([]Objection, error) {
	if _, err := s.store.Get(ctx, evaluationID); err != nil {
		return nil, err
	}
	return s.store.ListObjections(ctx, evaluationID)
}

// ResolveObjection closes an open objection as accepted, rejected or
// adjusted.
func (s *Service) ResolveObjection(ctx context.Context, objectionID, status, resolution, actorID string) (Objection, error) {
	switch status {
	case ObjectionAccepted, ObjectionRejected, ObjectionAdjusted:
	default:
		return Objection{}, errors.New("objection resolution must be accepted, rejected or adjusted")
	}

	current, err := s.store.GetObjection(ctx, objectionID)
	if err != nil {
		return Objection{}, err
	}
	if current.Status != ObjectionOpen {
		return Objection{}, &StateError{Op: "resolve objection of", Status: Status(current.Status)}
	}

	if err := s.store.ResolveObjection(ctx, objectionID, status, resolution, actorID); err != nil {
		return Objection{}, err
	}
	return s.store.GetObjection(ctx, objectionID)
}
