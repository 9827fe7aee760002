package goals

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory StoreAPI used to exercise the service rules
// without a database. Insert and Update serialize on a mutex, mirroring the
// advisory-lock serialization of the real store.
type memStore struct {
	mu        sync.Mutex
	seq       int
	goals     map[string]*Goal
	employees map[string]bool
}

func newMemStore(employees ...string) *memStore {
	known := make(map[string]bool, len(employees))
	for _, id := range employees {
		known[id] = true
	}
	return &memStore{goals: map[string]*Goal{}, employees: known}
}

func (m *memStore) EmployeeExists(_ context.Context, employeeID string) (bool, error) {
	return m.employees[employeeID], nil
}

func (m *memStore) Get(_ context.Context, goalID string) (Goal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	goal, ok := m.goals[goalID]
	if !ok {
		return Goal{}, ErrGoalNotFound
	}
	return *goal, nil
}

func (m *memStore) List(_ context.Context, filter Filter, limit, offset int) ([]Goal, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Goal
	for _, goal := range m.goals {
		if filter.EmployeeID != "" && goal.EmployeeID != filter.EmployeeID {
			continue
		}
		out = append(out, *goal)
	}
	return out, len(out), nil
}

func (m *memStore) Insert(_ context.Context, draft Draft, createdBy string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	year := draft.StartDate.Year()
	total := m.totalLocked(draft.EmployeeID, year, "")
	if err := CheckBudget(draft.EmployeeID, year, total, draft.Weight); err != nil {
		return "", err
	}

	m.seq++
	id := fmt.Sprintf("goal-%d", m.seq)
	now := time.Now()
	m.goals[id] = &Goal{
		ID:         id,
		EmployeeID: draft.EmployeeID,
		Title:      draft.Title,
		Type:       draft.Type,
		Weight:     draft.Weight,
		StartDate:  draft.StartDate,
		EndDate:    draft.EndDate,
		Status:     StatusDraft,
		CreatedAt:  now,
		CreatedBy:  createdBy,
		UpdatedAt:  now,
		UpdatedBy:  createdBy,
	}
	return id, nil
}

func (m *memStore) Update(_ context.Context, goalID string, draft Draft, updatedBy string, checkBudget bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	goal, ok := m.goals[goalID]
	if !ok {
		return ErrGoalNotFound
	}
	if checkBudget {
		year := draft.StartDate.Year()
		total := m.totalLocked(draft.EmployeeID, year, goalID)
		if err := CheckBudget(draft.EmployeeID, year, total, draft.Weight); err != nil {
			return err
		}
	}
	goal.Title = draft.Title
	goal.Description = draft.Description
	goal.Type = draft.Type
	goal.Category = draft.Category
	goal.Weight = draft.Weight
	goal.TargetValue = draft.TargetValue
	goal.MeasurementUnit = draft.MeasurementUnit
	goal.StartDate = draft.StartDate
	goal.EndDate = draft.EndDate
	goal.UpdatedBy = updatedBy
	goal.UpdatedAt = time.Now()
	return nil
}

func (m *memStore) SoftDelete(_ context.Context, goalID, deletedBy string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.goals[goalID]; !ok {
		return false, nil
	}
	delete(m.goals, goalID)
	return true, nil
}

func (m *memStore) SetProgress(_ context.Context, goalID string, progress decimal.Decimal, status Status, updatedBy string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	goal, ok := m.goals[goalID]
	if !ok {
		return ErrGoalNotFound
	}
	goal.ProgressPercent = progress
	goal.Status = status
	goal.UpdatedBy = updatedBy
	return nil
}

func (m *memStore) SetDecision(_ context.Context, goalID string, status Status, decidedBy string, approved bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	goal, ok := m.goals[goalID]
	if !ok {
		return ErrGoalNotFound
	}
	goal.Status = status
	if approved {
		now := time.Now()
		goal.ApprovedAt = &now
		goal.ApprovedBy = decidedBy
	}
	return nil
}

func (m *memStore) ActiveWeightTotal(_ context.Context, employeeID string, year int, excludeGoalID string) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.totalLocked(employeeID, year, excludeGoalID), nil
}

func (m *memStore) totalLocked(employeeID string, year int, excludeGoalID string) decimal.Decimal {
	total := decimal.Zero
	for id, goal := range m.goals {
		if id == excludeGoalID || goal.EmployeeID != employeeID || goal.Year() != year {
			continue
		}
		if !goal.Status.CountsTowardBudget() {
			continue
		}
		total = total.Add(goal.Weight)
	}
	return total
}

func testDraft(employeeID, weight string) Draft {
	return Draft{
		EmployeeID: employeeID,
		Title:      "Ship the quarterly deliverable",
		Type:       TypeOperational,
		Weight:     d(weight),
		StartDate:  time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2025, time.December, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreateRejectsUnknownEmployee(t *testing.T) {
	svc := NewService(newMemStore("emp-1"))
	_, err := svc.Create(context.Background(), testDraft("ghost", "40"), "mgr-1")
	assert.ErrorIs(t, err, ErrEmployeeNotFound)
}

func TestCreateEnforcesWeightBudget(t *testing.T) {
	svc := NewService(newMemStore("emp-1"))
	ctx := context.Background()

	first, err := svc.Create(ctx, testDraft("emp-1", "70"), "mgr-1")
	require.NoError(t, err)
	require.Equal(t, StatusDraft, first.Status)

	// 70 + 40 overshoots
	_, err = svc.Create(ctx, testDraft("emp-1", "40"), "mgr-1")
	var budgetErr *WeightBudgetError
	require.ErrorAs(t, err, &budgetErr)
	assert.True(t, budgetErr.CurrentTotal.Equal(d("70")))

	// 70 + 30 lands exactly on 100 and is allowed
	_, err = svc.Create(ctx, testDraft("emp-1", "30"), "mgr-1")
	require.NoError(t, err)

	ready, total, err := svc.ValidateWeights(ctx, "emp-1", 2025)
	require.NoError(t, err)
	assert.True(t, ready)
	assert.True(t, total.Equal(d("100")))
}

func TestRejectedGoalReleasesBudget(t *testing.T) {
	svc := NewService(newMemStore("emp-1"))
	ctx := context.Background()

	goal, err := svc.Create(ctx, testDraft("emp-1", "80"), "mgr-1")
	require.NoError(t, err)

	_, err = svc.Decide(ctx, goal.ID, false, "mgr-1")
	require.NoError(t, err)

	// the cancelled goal's 80 no longer counts
	_, err = svc.Create(ctx, testDraft("emp-1", "90"), "mgr-1")
	require.NoError(t, err)
}

func TestUpdateGating(t *testing.T) {
	svc := NewService(newMemStore("emp-1"))
	ctx := context.Background()

	goal, err := svc.Create(ctx, testDraft("emp-1", "50"), "mgr-1")
	require.NoError(t, err)

	approved, err := svc.Decide(ctx, goal.ID, true, "mgr-1")
	require.NoError(t, err)
	require.Equal(t, StatusApproved, approved.Status)
	require.NotNil(t, approved.ApprovedAt)

	// approved goals remain editable
	draft := testDraft("emp-1", "60")
	_, err = svc.Update(ctx, goal.ID, draft, "mgr-1")
	require.NoError(t, err)

	// once progress starts, edits are rejected
	_, err = svc.UpdateProgress(ctx, goal.ID, d("10"), "emp-1")
	require.NoError(t, err)
	_, err = svc.Update(ctx, goal.ID, draft, "mgr-1")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestUpdateBudgetExcludesSelf(t *testing.T) {
	svc := NewService(newMemStore("emp-1"))
	ctx := context.Background()

	goal, err := svc.Create(ctx, testDraft("emp-1", "70"), "mgr-1")
	require.NoError(t, err)
	_, err = svc.Create(ctx, testDraft("emp-1", "30"), "mgr-1")
	require.NoError(t, err)

	// raising 70 to 71 would overshoot only if the old value were double
	// counted; excluding self it still overshoots because 30 + 71 > 100
	_, err = svc.Update(ctx, goal.ID, testDraft("emp-1", "71"), "mgr-1")
	assert.ErrorIs(t, err, ErrWeightBudgetExceeded)

	// lowering to 60 is fine
	updated, err := svc.Update(ctx, goal.ID, testDraft("emp-1", "60"), "mgr-1")
	require.NoError(t, err)
	assert.True(t, updated.Weight.Equal(d("60")))
}

func TestDeleteLifecycle(t *testing.T) {
	svc := NewService(newMemStore("emp-1"))
	ctx := context.Background()

	goal, err := svc.Create(ctx, testDraft("emp-1", "40"), "mgr-1")
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, goal.ID, "mgr-1")
	require.NoError(t, err)
	assert.True(t, deleted)

	// second delete reports false, not an error
	deleted, err = svc.Delete(ctx, goal.ID, "mgr-1")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestDeleteApprovedGoalRejected(t *testing.T) {
	svc := NewService(newMemStore("emp-1"))
	ctx := context.Background()

	goal, err := svc.Create(ctx, testDraft("emp-1", "40"), "mgr-1")
	require.NoError(t, err)
	_, err = svc.Decide(ctx, goal.ID, true, "mgr-1")
	require.NoError(t, err)

	_, err = svc.Delete(ctx, goal.ID, "mgr-1")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestProgressRecomputesStatus(t *testing.T) {
	svc := NewService(newMemStore("emp-1"))
	ctx := context.Background()

	goal, err := svc.Create(ctx, testDraft("emp-1", "40"), "mgr-1")
	require.NoError(t, err)
	_, err = svc.Decide(ctx, goal.ID, true, "mgr-1")
	require.NoError(t, err)

	updated, err := svc.UpdateProgress(ctx, goal.ID, d("100"), "emp-1")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, updated.Status)

	// progress updates on a completed goal are gated out
	_, err = svc.UpdateProgress(ctx, goal.ID, d("90"), "emp-1")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestProgressRange(t *testing.T) {
	svc := NewService(newMemStore("emp-1"))
	ctx := context.Background()

	goal, err := svc.Create(ctx, testDraft("emp-1", "40"), "mgr-1")
	require.NoError(t, err)
	_, err = svc.Decide(ctx, goal.ID, true, "mgr-1")
	require.NoError(t, err)

	_, err = svc.UpdateProgress(ctx, goal.ID, d("101"), "emp-1")
	assert.ErrorIs(t, err, ErrProgressOutOfRange)
	_, err = svc.UpdateProgress(ctx, goal.ID, d("-1"), "emp-1")
	assert.ErrorIs(t, err, ErrProgressOutOfRange)
}

// Concurrent creates for the same employee and year must never jointly
// overshoot the budget: 10 goroutines each requesting 30 can commit at most
// three goals.
func TestConcurrentCreatesRespectBudget(t *testing.T) {
	store := newMemStore("emp-1")
	svc := NewService(store)
	ctx := context.Background()

	const workers = 10
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(ctx, testDraft("emp-1", "30"), "mgr-1")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	committed := 0
	for err := range errs {
		if err == nil {
			committed++
			continue
		}
		require.True(t, errors.Is(err, ErrWeightBudgetExceeded), "unexpected error: %v", err)
	}
	assert.Equal(t, 3, committed)

	total, err := store.ActiveWeightTotal(ctx, "emp-1", 2025, "")
	require.NoError(t, err)
	assert.True(t, total.LessThanOrEqual(d("100")), "committed total %s overshoots budget", total)
}
