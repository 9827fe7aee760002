package training

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

const resultColumns = `
  id, employee_id, course_name, provider, score, completed_at, certificate_url,
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

func (s *Store) Get(ctx context.Context, resultID string) (Result, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+resultColumns+`
    FROM training_results
    WHERE id = $1 AND NOT is_deleted
  `, resultID)
	result, err := scanResult(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Result{}, ErrResultNotFound
	}
	return result, err
}

func (s *Store) List(ctx context.Context, filter Filter, limit, offset int) ([]Result, int, error) {
	where := " FROM training_results WHERE NOT is_deleted"
	args := []any{}
	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		where += fmt.Sprintf(" AND employee_id = $%d", len(args))
	}
	if filter.Year != 0 {
		args = append(args, filter.Year)
		where += fmt.Sprintf(" AND EXTRACT(YEAR FROM completed_at) = $%d", len(args))
	}
	if filter.Completed {
		where += " AND completed_at IS NOT NULL"
	}

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1)"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + resultColumns + where + fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Result
	for rows.Next() {
		result, err := scanResult(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, result)
	}
	return out, total, rows.Err()
}

func (s *Store) Insert(ctx context.Context, draft Draft, createdBy string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO training_results (employee_id, course_name, provider, score,
                                  completed_at, certificate_url, created_by, updated_by)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
    RETURNING id
  `, draft.EmployeeID, draft.CourseName, draft.Provider, draft.Score,
		draft.CompletedAt, draft.CertificateURL, createdBy).Scan(&id)
	return id, err
}

func (s *Store) Update(ctx context.Context, resultID string, draft Draft, updatedBy string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE training_results
    SET course_name = $1, provider = $2, score = $3, completed_at = $4,
        certificate_url = $5, updated_at = now(), updated_by = $6
    WHERE id = $7 AND NOT is_deleted
  `, draft.CourseName, draft.Provider, draft.Score, draft.CompletedAt,
		draft.CertificateURL, updatedBy, resultID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrResultNotFound
	}
	return nil
}

func (s *Store) SoftDelete(ctx context.Context, resultID, deletedBy string) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE training_results
    SET is_deleted = TRUE, updated_at = now(), updated_by = $1
    WHERE id = $2 AND NOT is_deleted
  `, deletedBy, resultID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResult(row rowScanner) (Result, error) {
	var result Result
	err := row.Scan(&result.ID, &result.EmployeeID, &result.CourseName, &result.Provider,
		&result.Score, &result.CompletedAt, &result.CertificateURL,
		&result.CreatedAt, &result.CreatedBy, &result.UpdatedAt, &result.UpdatedBy)
	return result, err
}
