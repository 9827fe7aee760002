package goals

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const goalColumns = `
  id, employee_id, title, description, type, category, weight,
  target_value, measurement_unit, start_date, end_date, status,
  progress_percent, approved_at, COALESCE(approved_by::text, ''),
  created_at, COALESCE(created_by::text, ''),
  updated_at, COALESCE(updated_by::text, '')
`

func (s *Store) EmployeeExists(ctx context.Context, employeeID string) (bool, error) {
	var exists bool
	err := s.DB.QueryRow(ctx, `
    SELECT EXISTS (SELECT 1 FROM employees WHERE id = $1 AND NOT is_deleted)
  `, employeeID).Scan(&exists)
	return exists, err
}

func (s *Store) Get(ctx context.Context, goalID string) (Goal, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+goalColumns+`
    FROM goals
    WHERE id = $1 AND NOT is_deleted
  `, goalID)
	goal, err := scanGoal(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Goal{}, ErrGoalNotFound
	}
	return goal, err
}

func (s *Store) List(ctx context.Context, filter Filter, limit, offset int) ([]Goal, int, error) {
	where := " FROM goals WHERE NOT is_deleted"
	args := []any{}
	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		where += fmt.Sprintf(" AND employee_id = $%d", len(args))
	}
	if filter.Type != "" {
		args = append(args, string(filter.Type))
		where += fmt.Sprintf(" AND type = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.Year != 0 {
		args = append(args, filter.Year)
		where += fmt.Sprintf(" AND EXTRACT(YEAR FROM start_date) = $%d", len(args))
	}

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1)"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + goalColumns + where + fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Goal
	for rows.Next() {
		goal, err := scanGoal(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, goal)
	}
	return out, total, rows.Err()
}

// Insert runs the weight-budget check and the insert in one transaction,
// serialized per (employee, year) with an advisory lock so concurrent
// creates cannot jointly overshoot the budget.
func (s *Store) Insert(ctx context.Context, draft Draft, createdBy string) (string, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	year := draft.StartDate.Year()
	if err := lockEmployeeYear(ctx, tx, draft.EmployeeID, year); err != nil {
		return "", err
	}
	total, err := activeWeightTotal(ctx, tx, draft.EmployeeID, year, "")
	if err != nil {
		return "", err
	}
	if err := CheckBudget(draft.EmployeeID, year, total, draft.Weight); err != nil {
		return "", err
	}

	var id string
	if err := tx.QueryRow(ctx, `
    INSERT INTO goals (employee_id, title, description, type, category, weight,
                       target_value, measurement_unit, start_date, end_date,
                       status, progress_percent, created_by, updated_by)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,0,$12,$12)
    RETURNING id
  `, draft.EmployeeID, draft.Title, draft.Description, string(draft.Type), draft.Category,
		draft.Weight, draft.TargetValue, draft.MeasurementUnit, draft.StartDate, draft.EndDate,
		string(StatusDraft), createdBy).Scan(&id); err != nil {
		return "", err
	}

	return id, tx.Commit(ctx)
}

// Update replaces the editable fields wholesale. When checkBudget is set the
// weight re-check runs against the new start date's year, excluding this
// goal, under the same advisory lock as Insert.
func (s *Store) Update(ctx context.Context, goalID string, draft Draft, updatedBy string, checkBudget bool) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if checkBudget {
		year := draft.StartDate.Year()
		if err := lockEmployeeYear(ctx, tx, draft.EmployeeID, year); err != nil {
			return err
		}
		total, err := activeWeightTotal(ctx, tx, draft.EmployeeID, year, goalID)
		if err != nil {
			return err
		}
		if err := CheckBudget(draft.EmployeeID, year, total, draft.Weight); err != nil {
			return err
		}
	}

	tag, err := tx.Exec(ctx, `
    UPDATE goals
    SET title = $1, description = $2, type = $3, category = $4, weight = $5,
        target_value = $6, measurement_unit = $7, start_date = $8, end_date = $9,
        updated_at = now(), updated_by = $10
    WHERE id = $11 AND NOT is_deleted
  `, draft.Title, draft.Description, string(draft.Type), draft.Category, draft.Weight,
		draft.TargetValue, draft.MeasurementUnit, draft.StartDate, draft.EndDate,
		updatedBy, goalID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrGoalNotFound
	}

	return tx.Commit(ctx)
}

func (s *Store) SoftDelete(ctx context.Context, goalID, deletedBy string) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE goals
    SET is_deleted = TRUE, updated_at = now(), updated_by = $1
    WHERE id = $2 AND NOT is_deleted
  `, deletedBy, goalID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) SetProgress(ctx context.Context, goalID string, progress decimal.Decimal, status Status, updatedBy string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE goals
    SET progress_percent = $1, status = $2, updated_at = now(), updated_by = $3
    WHERE id = $4 AND NOT is_deleted
  `, progress, string(status), updatedBy, goalID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrGoalNotFound
	}
	return nil
}

func (s *Store) SetDecision(ctx context.Context, goalID string, status Status, decidedBy string, approved bool) error {
	if approved {
		_, err := s.DB.Exec(ctx, `
      UPDATE goals
      SET status = $1, approved_at = now(), approved_by = $2, updated_at = now(), updated_by = $2
      WHERE id = $3 AND NOT is_deleted
    `, string(status), decidedBy, goalID)
		return err
	}
	_, err := s.DB.Exec(ctx, `
    UPDATE goals
    SET status = $1, updated_at = now(), updated_by = $2
    WHERE id = $3 AND NOT is_deleted
  `, string(status), decidedBy, goalID)
	return err
}

func (s *Store) ActiveWeightTotal(ctx context.Context, employeeID string, year int, excludeGoalID string) (decimal.Decimal, error) {
	return activeWeightTotal(ctx, s.DB, employeeID, year, excludeGoalID)
}

type queryer interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func activeWeightTotal(ctx context.Context, q queryer, employeeID string, year int, excludeGoalID string) (decimal.Decimal, error) {
	query := `
    SELECT COALESCE(SUM(weight), 0)
    FROM goals
    WHERE employee_id = $1
      AND EXTRACT(YEAR FROM start_date) = $2
      AND NOT is_deleted
      AND status <> 'cancelled'
  `
	args := []any{employeeID, year}
	if excludeGoalID != "" {
		query += " AND id <> $3"
		args = append(args, excludeGoalID)
	}
	var total decimal.Decimal
	if err := q.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

func lockEmployeeYear(ctx context.Context, tx pgx.Tx, employeeID string, year int) error {
	_, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext($1), $2)", employeeID, year)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGoal(row rowScanner) (Goal, error) {
	var g Goal
	var status, goalType string
	err := row.Scan(&g.ID, &g.EmployeeID, &g.Title, &g.Description, &goalType, &g.Category,
		&g.Weight, &g.TargetValue, &g.MeasurementUnit, &g.StartDate, &g.EndDate, &status,
		&g.ProgressPercent, &g.ApprovedAt, &g.ApprovedBy, &g.CreatedAt, &g.CreatedBy,
		&g.UpdatedAt, &g.UpdatedBy)
	if err != nil {
		return Goal{}, err
	}
	g.Status = Status(status)
	g.Type = Type(goalType)
	return g, nil
}
