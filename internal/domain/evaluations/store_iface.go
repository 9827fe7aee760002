package evaluations

import (
	"context"
	"time"
)

type StoreAPI interface {
	EmployeeExists(ctx context.Context, employeeID string) (bool, error)
	Get(ctx context.Context, evaluationID string) (Evaluation, error)
	List(ctx context.Context, filter Filter, limit, offset int) ([]Evaluation, int, error)
	Exists(ctx context.Context, employeeID, period string, evalType Type) (bool, error)
	Insert(ctx context.Context, draft Draft, createdBy string) (string, error)
	UpdateScores(ctx context.Context, evaluationID string, update ScoreUpdate, updatedBy string) error

	Items(ctx context.Context, evaluationID string) ([]Item, error)
	InsertItem(ctx context.Context, evaluationID string, draft ItemDraft, createdBy string) (string, error)
	SoftDeleteItem(ctx context.Context, evaluationID, itemID, deletedBy string) (bool, error)

	// Finalize recomputes the training impact, derives the final score and
	// rating, flips the status and, when the score mandates one, opens a PIP.
	// All of it commits in a single transaction.
	Finalize(ctx context.Context, evaluationID, actor, managerNotes string, now time.Time) (FinalizeResult, error)
	Approve(ctx context.Context, evaluationID, approvedBy string) error

	InsertObjection(ctx context.Context, evaluationID, employeeID, reason, createdBy string) (string, error)
	GetObjection(ctx context.Context, objectionID string) (Objection, error)
	ListObjections(ctx context.Context, evaluationID string) ([]Objection, error)
	ResolveObjection(ctx context.Context, objectionID, status, resolution, resolvedBy string) error
}
