package training

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var scoreMax = decimal.NewFromInt(100)

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) Get(ctx context.Context, resultID string) (Result, error) {
	return s.store.Get(ctx, resultID)
}

func (s *Service) List(ctx context.Context, filter Filter, limit, offset int) ([]Result, int, error) {
	return s.store.List(ctx, filter, limit, offset)
}

func (s *Service) Create(ctx context.Context, draft Draft, actorID string) (Result, error) {
	if err := validateDraft(draft); err != nil {
		return Result{}, err
	}
	exists, err := s.store.EmployeeExists(ctx, draft.EmployeeID)
	if err != nil {
		return Result{}, err
	}
	if !exists {
		return Result{}, ErrEmployeeNotFound
	}

	id, err := s.store.Insert(ctx, draft, actorID)
	if err != nil {
		return Result{}, err
	}
	return s.store.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, resultID string, draft Draft, actorID string) (Result, error) {
	if err := validateDraft(draft); err != nil {
		return Result{}, err
	}
	if err := s.store.Update(ctx, resultID, draft, actorID); err != nil {
		return Result{}, err
	}
	return s.store.Get(ctx, resultID)
}

func (s *Service) Delete(ctx context.Context, resultID, actorID string) (bool, error) {
	return s.store.SoftDelete(ctx, resultID, actorID)
}

func validateDraft(draft Draft) error {
	if strings.TrimSpace(draft.CourseName) == "" {
		return errors.New("course name is required")
	}
	if draft.Score != nil && (draft.Score.IsNegative() || draft.Score.GreaterThan(scoreMax)) {
		return ErrScoreOutOfRange
	}
	return nil
}
