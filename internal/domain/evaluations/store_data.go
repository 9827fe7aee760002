package evaluations

import (
	"context"
	"errors"
	"fmt"
	"time"

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

const evaluationColumns = `
  id, employee_id, period, evaluation_type, goals_score, behavior_score,
  initiatives_score, training_impact, final_score, COALESCE(final_rating, ''),
  status, manager_notes, employee_notes,
  evaluated_at, COALESCE(evaluated_by::text, ''),
  approved_at, COALESCE(approved_by::text, ''),
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

func (s *Store) Get(ctx context.Context, evaluationID string) (Evaluation, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+evaluationColumns+`
    FROM evaluations
    WHERE id = $1 AND NOT is_deleted
  `, evaluationID)
	eval, err := scanEvaluation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Evaluation{}, ErrEvaluationNotFound
	}
	if err != nil {
		return Evaluation{}, err
	}
	eval.Items, err = s.Items(ctx, evaluationID)
	return eval, err
}

func (s *Store) List(ctx context.Context, filter Filter, limit, offset int) ([]Evaluation, int, error) {
	where := " FROM evaluations WHERE NOT is_deleted"
	args := []any{}
	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		where += fmt.Sprintf(" AND employee_id = $%d", len(args))
	}
	if filter.Period != "" {
		args = append(args, filter.Period)
		where += fmt.Sprintf(" AND period = $%d", len(args))
	}
	if filter.Type != "" {
		args = append(args, string(filter.Type))
		where += fmt.Sprintf(" AND evaluation_type = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1)"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + evaluationColumns + where + fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Evaluation
	for rows.Next() {
		eval, err := scanEvaluation(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, eval)
	}
	return out, total, rows.Err()
}

func (s *Store) Exists(ctx context.Context, employeeID, period string, evalType Type) (bool, error) {
	var exists bool
	err := s.DB.QueryRow(ctx, `
    SELECT EXISTS (
      SELECT 1 FROM evaluations
      WHERE employee_id = $1 AND period = $2 AND evaluation_type = $3 AND NOT is_deleted
    )
  `, employeeID, period, string(evalType)).Scan(&exists)
	return exists, err
}

func (s *Store) Insert(ctx context.Context, draft Draft, createdBy string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO evaluations (employee_id, period, evaluation_type, status, created_by, updated_by)
    VALUES ($1, $2, $3, $4, $5, $5)
    RETURNING id
  `, draft.EmployeeID, draft.Period, string(draft.Type), string(StatusDraft), createdBy).Scan(&id)
	return id, err
}

// UpdateScores replaces all three sub-scores wholesale and moves the
// evaluation to in_progress. Nil scores clear the stored value.
func (s *Store) UpdateScores(ctx context.Context, evaluationID string, update ScoreUpdate, updatedBy string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE evaluations
    SET goals_score = $1, behavior_score = $2, initiatives_score = $3,
        manager_notes = $4, status = $5, updated_at = now(), updated_by = $6
    WHERE id = $7 AND NOT is_deleted
  `, update.GoalsScore, update.BehaviorScore, update.InitiativesScore,
		update.ManagerNotes, string(StatusInProgress), updatedBy, evaluationID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEvaluationNotFound
	}
	return nil
}

func (s *Store) Items(ctx context.Context, evaluationID string) ([]Item, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, evaluation_id, item_type, COALESCE(ref_id::text, ''), title,
           description, weight, score, notes, evidence_url, created_at
    FROM evaluation_items
    WHERE evaluation_id = $1 AND NOT is_deleted
    ORDER BY created_at
  `, evaluationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ID, &item.EvaluationID, &item.ItemType, &item.RefID,
			&item.Title, &item.Description, &item.Weight, &item.Score, &item.Notes,
			&item.EvidenceURL, &item.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (s *Store) InsertItem(ctx context.Context, evaluationID string, draft ItemDraft, createdBy string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO evaluation_items (evaluation_id, item_type, ref_id, title, description,
                                  weight, score, notes, evidence_url, created_by)
    VALUES ($1, $2, NULLIF($3, '')::uuid, $4, $5, $6, $7, $8, $9, NULLIF($10, '')::uuid)
    RETURNING id
  `, evaluationID, draft.ItemType, draft.RefID, draft.Title, draft.Description,
		draft.Weight, draft.Score, draft.Notes, draft.EvidenceURL, createdBy).Scan(&id)
	return id, err
}

func (s *Store) SoftDeleteItem(ctx context.Context, evaluationID, itemID, deletedBy string) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE evaluation_items
    SET is_deleted = TRUE, updated_by = NULLIF($3, '')::uuid
    WHERE id = $1 AND evaluation_id = $2 AND NOT is_deleted
  `, itemID, evaluationID, deletedBy)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Finalize locks the evaluation row, re-checks the gate under the lock,
// folds the period's training results into the final score, and opens a PIP
// in the same transaction when the score lands below the threshold.
func (s *Store) Finalize(ctx context.Context, evaluationID, actor, managerNotes string, now time.Time) (FinalizeResult, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return FinalizeResult{}, err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
    SELECT `+evaluationColumns+`
    FROM evaluations
    WHERE id = $1 AND NOT is_deleted
    FOR UPDATE
  `, evaluationID)
	eval, err := scanEvaluation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return FinalizeResult{}, ErrEvaluationNotFound
	}
	if err != nil {
		return FinalizeResult{}, err
	}
	if err := FinalizeGate(eval); err != nil {
		return FinalizeResult{}, err
	}

	scores, err := trainingScores(ctx, tx, eval.EmployeeID, eval.Period)
	if err != nil {
		return FinalizeResult{}, err
	}
	impact := TrainingImpactFor(scores)
	final := ComputeFinalScore(*eval.GoalsScore, *eval.BehaviorScore, *eval.InitiativesScore, impact)
	rating := RatingFor(final)

	notes := eval.ManagerNotes
	if managerNotes != "" {
		notes = managerNotes
	}
	if _, err := tx.Exec(ctx, `
    UPDATE evaluations
    SET training_impact = $1, final_score = $2, final_rating = $3, status = $4,
        manager_notes = $5, evaluated_at = $6, evaluated_by = $7,
        updated_at = now(), updated_by = $7
    WHERE id = $8
  `, impact, final, string(rating), string(StatusFinalized), notes, now, actor, evaluationID); err != nil {
		return FinalizeResult{}, err
	}

	result := FinalizeResult{FinalScore: final, FinalRating: rating}
	if TriggersPIP(final) {
		var pipID string
		if err := tx.QueryRow(ctx, `
      INSERT INTO pips (employee_id, evaluation_id, title, reason, start_date,
                        due_date, status, created_by, updated_by)
      VALUES ($1, $2, $3, $4, $5, $6, 'draft', $7, $7)
      RETURNING id
    `, eval.EmployeeID, evaluationID, "Performance Improvement Plan "+eval.Period,
			fmt.Sprintf("Final score %s is below 2.5", final.String()),
			now, now.AddDate(0, 3, 0), actor).Scan(&pipID); err != nil {
			return FinalizeResult{}, err
		}
		result.PIPCreated = true
		result.PIPID = pipID
	}

	if err := tx.Commit(ctx); err != nil {
		return FinalizeResult{}, err
	}
	return result, nil
}

func (s *Store) Approve(ctx context.Context, evaluationID, approvedBy string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE evaluations
    SET status = $1, approved_at = now(), approved_by = $2, updated_at = now(), updated_by = $2
    WHERE id = $3 AND NOT is_deleted
  `, string(StatusApproved), approvedBy, evaluationID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEvaluationNotFound
	}
	return nil
}

func (s *Store) InsertObjection(ctx context.Context, evaluationID, employeeID, reason, createdBy string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO evaluation_objections (evaluation_id, employee_id, reason, status, created_by)
    VALUES ($1, $2, $3, $4, $5)
    RETURNING id
  `, evaluationID, employeeID, reason, ObjectionOpen, createdBy).Scan(&id)
	return id, err
}

const objectionColumns = `
  id, evaluation_id, employee_id, reason, status, resolution,
  resolved_at, COALESCE(resolved_by::text, ''),
  created_at, COALESCE(created_by::text, '')
`

func (s *Store) GetObjection(ctx context.Context, objectionID string) (Objection, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+objectionColumns+`
    FROM evaluation_objections
    WHERE id = $1 AND NOT is_deleted
  `, objectionID)
	obj, err := scanObjection(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Objection{}, ErrObjectionNotFound
	}
	return obj, err
}

func (s *Store) ListObjections(ctx context.Context, evaluationID string) ([]Objection, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+objectionColumns+`
    FROM evaluation_objections
    WHERE evaluation_id = $1 AND NOT is_deleted
    ORDER BY created_at
  `, evaluationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Objection
	for rows.Next() {
		obj, err := scanObjection(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, obj)
	}
	return out, rows.Err()
}

func (s *Store) ResolveObjection(ctx context.Context, objectionID, status, resolution, resolvedBy string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE evaluation_objections
    SET status = $1, resolution = $2, resolved_at = now(), resolved_by = $3
    WHERE id = $4 AND NOT is_deleted
  `, status, resolution, resolvedBy, objectionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrObjectionNotFound
	}
	return nil
}

type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// trainingScores fetches completion scores for trainings finished in the
// evaluation period. Periods are calendar years stored as text.
func trainingScores(ctx context.Context, q queryer, employeeID, period string) ([]*decimal.Decimal, error) {
	rows, err := q.Query(ctx, `
    SELECT score
    FROM training_results
    WHERE employee_id = $1
      AND completed_at IS NOT NULL
      AND EXTRACT(YEAR FROM completed_at)::text = $2
      AND NOT is_deleted
  `, employeeID, period)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*decimal.Decimal
	for rows.Next() {
		var score *decimal.Decimal
		if err := rows.Scan(&score); err != nil {
			return nil, err
		}
		out = append(out, score)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvaluation(row rowScanner) (Evaluation, error) {
	var e Evaluation
	var evalType, rating, status string
	err := row.Scan(&e.ID, &e.EmployeeID, &e.Period, &evalType, &e.GoalsScore,
		&e.BehaviorScore, &e.InitiativesScore, &e.TrainingImpact, &e.FinalScore,
		&rating, &status, &e.ManagerNotes, &e.EmployeeNotes,
		&e.EvaluatedAt, &e.EvaluatedBy, &e.ApprovedAt, &e.ApprovedBy,
		&e.CreatedAt, &e.CreatedBy, &e.UpdatedAt, &e.UpdatedBy)
	if err != nil {
		return Evaluation{}, err
	}
	e.Type = Type(evalType)
	e.FinalRating = Rating(rating)
	e.Status = Status(status)
	return e, nil
}

func scanObjection(row rowScanner) (Objection, error) {
	var o Objection
	err := row.Scan(&o.ID, &o.EvaluationID, &o.EmployeeID, &o.Reason, &o.Status,
		&o.Resolution, &o.ResolvedAt, &o.ResolvedBy, &o.CreatedAt, &o.CreatedBy)
	return o, err
}
