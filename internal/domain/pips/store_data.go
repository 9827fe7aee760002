package pips

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const pipColumns = `
  id, employee_id, COALESCE(evaluation_id::text, ''), title, reason, actions,
  start_date, due_date, status, outcome,
  closed_at, COALESCE(closed_by::text, ''),
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

func (s *Store) Get(ctx context.Context, pipID string) (PIP, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+pipColumns+`
    FROM pips
    WHERE id = $1 AND NOT is_deleted
  `, pipID)
	pip, err := scanPIP(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return PIP{}, ErrPIPNotFound
	}
	return pip, err
}

func (s *Store) List(ctx context.Context, filter Filter, limit, offset int) ([]PIP, int, error) {
	where := " FROM pips WHERE NOT is_deleted"
	args := []any{}
	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		where += fmt.Sprintf(" AND employee_id = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1)"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + pipColumns + where + fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []PIP
	for rows.Next() {
		pip, err := scanPIP(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, pip)
	}
	return out, total, rows.Err()
}

func (s *Store) Insert(ctx context.Context, draft Draft, createdBy string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO pips (employee_id, evaluation_id, title, reason, actions,
                      start_date, due_date, status, created_by, updated_by)
    VALUES ($1, NULLIF($2,'')::uuid, $3, $4, $5, $6, $7, $8, $9, $9)
    RETURNING id
  `, draft.EmployeeID, draft.EvaluationID, draft.Title, draft.Reason, draft.Actions,
		draft.StartDate, draft.DueDate, string(StatusDraft), createdBy).Scan(&id)
	return id, err
}

func (s *Store) Update(ctx context.Context, pipID string, draft Draft, updatedBy string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE pips
    SET title = $1, reason = $2, actions = $3, start_date = $4, due_date = $5,
        updated_at = now(), updated_by = $6
    WHERE id = $7 AND NOT is_deleted
  `, draft.Title, draft.Reason, draft.Actions, draft.StartDate, draft.DueDate, updatedBy, pipID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPIPNotFound
	}
	return nil
}

func (s *Store) SetStatus(ctx context.Context, pipID string, status Status, outcome, actorID string, closing bool) error {
	var err error
	if closing {
		_, err = s.DB.Exec(ctx, `
      UPDATE pips
      SET status = $1, outcome = $2, closed_at = now(), closed_by = $3,
          updated_at = now(), updated_by = $3
      WHERE id = $4 AND NOT is_deleted
    `, string(status), outcome, actorID, pipID)
	} else {
		_, err = s.DB.Exec(ctx, `
      UPDATE pips
      SET status = $1, updated_at = now(), updated_by = $2
      WHERE id = $3 AND NOT is_deleted
    `, string(status), actorID, pipID)
	}
	return err
}

func (s *Store) SoftDelete(ctx context.Context, pipID, deletedBy string) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE pips
    SET is_deleted = TRUE, updated_at = now(), updated_by = $1
    WHERE id = $2 AND NOT is_deleted
  `, deletedBy, pipID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPIP(row rowScanner) (PIP, error) {
	var p PIP
	var status string
	err := row.Scan(&p.ID, &p.EmployeeID, &p.EvaluationID, &p.Title, &p.Reason, &p.Actions,
		&p.StartDate, &p.DueDate, &status, &p.Outcome, &p.ClosedAt, &p.ClosedBy,
		&p.CreatedAt, &p.CreatedBy, &p.UpdatedAt, &p.UpdatedBy)
	if err != nil {
		return PIP{}, err
	}
	p.Status = Status(status)
	return p, nil
}
