package pips

import "context"

type StoreAPI interface {
	EmployeeExists(ctx context.Context, employeeID string) (bool, error)
	Get(ctx context.Context, pipID string) (PIP, error)
	List(ctx context.Context, filter Filter, limit, offset int) ([]PIP, int, error)
	Insert(ctx context.Context, draft Draft, createdBy string) (string, error)
	Update(ctx context.Context, pipID string, draft Draft, updatedBy string) error
	SetStatus(ctx context.Context, pipID string, status Status, outcome, actorID string, closing bool) error
	SoftDelete(ctx context.Context, pipID, deletedBy string) (bool, error)
}
