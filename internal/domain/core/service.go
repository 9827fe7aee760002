package core

import (
	"context"
	"errors"
	"strings"
)

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

func (s *Service) GetEmployee(ctx context.Context, employeeID string) (Employee, error) {
	return s.store.GetEmployee(ctx, employeeID)
}

func (s *Service) EmployeeIDByUserID(ctx context.Context, userID string) (string, error) {
	return s.store.EmployeeIDByUserID(ctx, userID)
}

func (s *Service) ListEmployees(ctx context.Context, filter EmployeeFilter, limit, offset int) ([]Employee, int, error) {
	return s.store.ListEmployees(ctx, filter, limit, offset)
}

func (s *Service) CreateEmployee(ctx context.Context, draft EmployeeDraft) (Employee, error) {
	if err := validateEmployeeDraft(&draft); err != nil {
		return Employee{}, err
	}
	id, err := s.store.CreateEmployee(ctx, draft)
	if err != nil {
		return Employee{}, err
	}
	return s.store.GetEmployee(ctx, id)
}

func (s *Service) UpdateEmployee(ctx context.Context, employeeID string, draft EmployeeDraft) (Employee, error) {
	if err := validateEmployeeDraft(&draft); err != nil {
		return Employee{}, err
	}
	if err := s.store.UpdateEmployee(ctx, employeeID, draft); err != nil {
		return Employee{}, err
	}
	return s.store.GetEmployee(ctx, employeeID)
}

func (s *Service) DeleteEmployee(ctx context.Context, employeeID string) (bool, error) {
	return s.store.SoftDeleteEmployee(ctx, employeeID)
}

func (s *Service) ListDepartments(ctx context.Context, limit, offset int) ([]Department, int, error) {
	return s.store.ListDepartments(ctx, limit, offset)
}

func (s *Service) CreateDepartment(ctx context.Context, name, managerID string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", errors.New("department name is required")
	}
	return s.store.CreateDepartment(ctx, name, managerID)
}

func (s *Service) ListPositions(ctx context.Context, limit, offset int) ([]Position, int, error) {
	return s.store.ListPositions(ctx, limit, offset)
}

func (s *Service) CreatePosition(ctx context.Context, title string, level int) (string, error) {
	if strings.TrimSpace(title) == "" {
		return "", errors.New("position title is required")
	}
	return s.store.CreatePosition(ctx, title, level)
}

func validateEmployeeDraft(draft *EmployeeDraft) error {
	draft.FirstName = strings.TrimSpace(draft.FirstName)
	draft.LastName = strings.TrimSpace(draft.LastName)
	draft.Email = strings.TrimSpace(draft.Email)
	if draft.FirstName == "" || draft.LastName == "" {
		return errors.New("first and last name are required")
	}
	if draft.Email == "" || !strings.Contains(draft.Email, "@") {
		return errors.New("a valid email is required")
	}
	switch draft.Status {
	case "":
		draft.Status = EmployeeActive
	case EmployeeActive, EmployeeOnLeave, EmployeeInactive:
	default:
		return errors.New("unknown employee status")
	}
	return nil
}
