package training

import "context"

type StoreAPI interface {
	EmployeeExists(ctx context.Context, employeeID string) (bool, error)
	Get(ctx context.Context, resultID string) (Result, error)
	List(ctx context.Context, filter Filter, limit, offset int) ([]Result, int, error)
	Insert(ctx context.Context, draft Draft, createdBy string) (string, error)
	Update(ctx context.Context, resultID string, draft Draft, updatedBy string) error
	SoftDelete(ctx context.Context, resultID, deletedBy string) (bool, error)
}
