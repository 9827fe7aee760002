package training

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dp(value string) *decimal.Decimal {
	out := decimal.RequireFromString(value)
	return &out
}

func TestValidateDraft(t *testing.T) {
	assert.Error(t, validateDraft(Draft{EmployeeID: "emp-1"}), "course name required")
	assert.NoError(t, validateDraft(Draft{EmployeeID: "emp-1", CourseName: "Go Fundamentals"}))

	// Enrollment without a score yet is fine.
	assert.NoError(t, validateDraft(Draft{CourseName: "Go Fundamentals"}))

	assert.NoError(t, validateDraft(Draft{CourseName: "X", Score: dp("0")}))
	assert.NoError(t, validateDraft(Draft{CourseName: "X", Score: dp("100")}))
	assert.ErrorIs(t, validateDraft(Draft{CourseName: "X", Score: dp("100.5")}), ErrScoreOutOfRange)
	assert.ErrorIs(t, validateDraft(Draft{CourseName: "X", Score: dp("-1")}), ErrScoreOutOfRange)
}
