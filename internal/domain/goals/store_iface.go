package goals

import (
	"context"

	"github.com/shopspring/decimal"
)

type StoreAPI interface {
	EmployeeExists(ctx context.Context, employeeID string) (bool, error)
	Get(ctx context.Context, goalID string) (Goal, error)
	List(ctx context.Context, filter Filter, limit, offset int) ([]Goal, int, error)
	Insert(ctx context.Context, draft Draft, createdBy string) (string, error)
	Update(ctx context.Context, goalID string, draft Draft, updatedBy string, checkBudget bool) error
	SoftDelete(ctx context.Context, goalID, deletedBy string) (bool, error)
	SetProgress(ctx context.Context, goalID string, progress decimal.Decimal, status Status, updatedBy string) error
	SetDecision(ctx context.Context, goalID string, status Status, decidedBy string, approved bool) error
	ActiveWeightTotal(ctx context.Context, employeeID string, year int, excludeGoalID string) (decimal.Decimal, error)
}
