package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const employeeColumns = `
  id, COALESCE(user_id::text, ''), employee_number, first_name, last_name, email,
  COALESCE(department_id::text, ''), COALESCE(position_id::text, ''),
  COALESCE(manager_id::text, ''), hire_date, status, created_at, updated_at
`

func (s *Store) GetEmployee(ctx context.Context, employeeID string) (Employee, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+employeeColumns+`
    FROM employees
    WHERE id = $1 AND NOT is_deleted
  `, employeeID)
	emp, err := scanEmployee(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrEmployeeNotFound
	}
	return emp, err
}

func (s *Store) EmployeeIDByUserID(ctx context.Context, userID string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    SELECT id FROM employees WHERE user_id = $1 AND NOT is_deleted
  `, userID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return id, err
}

func (s *Store) ListEmployees(ctx context.Context, filter EmployeeFilter, limit, offset int) ([]Employee, int, error) {
	where := " FROM employees WHERE NOT is_deleted"
	args := []any{}
	if filter.DepartmentID != "" {
		args = append(args, filter.DepartmentID)
		where += fmt.Sprintf(" AND department_id = $%d", len(args))
	}
	if filter.ManagerID != "" {
		args = append(args, filter.ManagerID)
		where += fmt.Sprintf(" AND manager_id = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where += fmt.Sprintf(" AND (first_name ILIKE $%d OR last_name ILIKE $%d OR email ILIKE $%d)", len(args), len(args), len(args))
	}

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1)"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + employeeColumns + where + fmt.Sprintf(" ORDER BY last_name, first_name LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, emp)
	}
	return out, total, rows.Err()
}

func (s *Store) CreateEmployee(ctx context.Context, draft EmployeeDraft) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO employees (user_id, employee_number, first_name, last_name, email,
                           department_id, position_id, manager_id, hire_date, status)
    VALUES (NULLIF($1,'')::uuid, $2, $3, $4, $5,
            NULLIF($6,'')::uuid, NULLIF($7,'')::uuid, NULLIF($8,'')::uuid, $9, $10)
    RETURNING id
  `, draft.UserID, draft.EmployeeNumber, draft.FirstName, draft.LastName, draft.Email,
		draft.DepartmentID, draft.PositionID, draft.ManagerID, draft.HireDate, draft.Status).Scan(&id)
	return id, uniqueViolation(err)
}

func (s *Store) UpdateEmployee(ctx context.Context, employeeID string, draft EmployeeDraft) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE employees
    SET employee_number = $1, first_name = $2, last_name = $3, email = $4,
        department_id = NULLIF($5,'')::uuid, position_id = NULLIF($6,'')::uuid,
        manager_id = NULLIF($7,'')::uuid, hire_date = $8, status = $9, updated_at = now()
    WHERE id = $10 AND NOT is_deleted
  `, draft.EmployeeNumber, draft.FirstName, draft.LastName, draft.Email,
		draft.DepartmentID, draft.PositionID, draft.ManagerID, draft.HireDate, draft.Status, employeeID)
	if err != nil {
		return uniqueViolation(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

func (s *Store) SoftDeleteEmployee(ctx context.Context, employeeID string) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE employees SET is_deleted = TRUE, updated_at = now()
    WHERE id = $1 AND NOT is_deleted
  `, employeeID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) ListDepartments(ctx context.Context, limit, offset int) ([]Department, int, error) {
	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM departments").Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.DB.Query(ctx, `
    SELECT id, name, COALESCE(manager_id::text, ''), created_at
    FROM departments
    ORDER BY name
    LIMIT $1 OFFSET $2
  `, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Department
	for rows.Next() {
		var dep Department
		if err := rows.Scan(&dep.ID, &dep.Name, &dep.ManagerID, &dep.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, dep)
	}
	return out, total, rows.Err()
}

func (s *Store) CreateDepartment(ctx context.Context, name, managerID string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO departments (name, manager_id)
    VALUES ($1, NULLIF($2,'')::uuid)
    RETURNING id
  `, name, managerID).Scan(&id)
	return id, err
}

func (s *Store) ListPositions(ctx context.Context, limit, offset int) ([]Position, int, error) {
	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM positions").Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.DB.Query(ctx, `
    SELECT id, title, level, created_at
    FROM positions
    ORDER BY level, title
    LIMIT $1 OFFSET $2
  `, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Position
	for rows.Next() {
		var pos Position
		if err := rows.Scan(&pos.ID, &pos.Title, &pos.Level, &pos.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, pos)
	}
	return out, total, rows.Err()
}

func (s *Store) CreatePosition(ctx context.Context, title string, level int) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO positions (title, level)
    VALUES ($1, $2)
    RETURNING id
  `, title, level).Scan(&id)
	return id, err
}

// uniqueViolation maps the partial unique indexes on employees to domain
// errors.
func uniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case "employees_email_key":
			return ErrDuplicateEmail
		case "employees_number_key":
			return ErrDuplicateNumber
		}
	}
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row rowScanner) (Employee, error) {
	var emp Employee
	err := row.Scan(&emp.ID, &emp.UserID, &emp.EmployeeNumber, &emp.FirstName,
		&emp.LastName, &emp.Email, &emp.DepartmentID, &emp.PositionID,
		&emp.ManagerID, &emp.HireDate, &emp.Status, &emp.CreatedAt, &emp.UpdatedAt)
	return emp, err
}
