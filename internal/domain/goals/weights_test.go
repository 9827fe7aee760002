package goals

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func TestCheckBudget(t *testing.T) {
	tests := []struct {
		name     string
		current  string
		proposed string
		wantErr  bool
	}{
		{"empty budget", "0", "40", false},
		{"lands exactly on 100", "70", "30", false},
		{"overshoots by fraction", "70", "30.01", true},
		{"overshoots", "70", "40", true},
		{"two decimal weights", "33.33", "66.67", false},
		{"full single goal", "0", "100", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckBudget("emp-1", 2025, d(tt.current), d(tt.proposed))
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrWeightBudgetExceeded))

			var budgetErr *WeightBudgetError
			require.ErrorAs(t, err, &budgetErr)
			assert.True(t, budgetErr.CurrentTotal.Equal(d(tt.current)), "error must carry the committed total")
			assert.Equal(t, 2025, budgetErr.Year)
		})
	}
}

func TestBudgetComplete(t *testing.T) {
	assert.True(t, BudgetComplete(d("100")))
	assert.True(t, BudgetComplete(d("100.00")))
	assert.False(t, BudgetComplete(d("99.99")))
	assert.False(t, BudgetComplete(d("70")))
}

func TestValidateWeight(t *testing.T) {
	require.NoError(t, ValidateWeight(d("0")))
	require.NoError(t, ValidateWeight(d("100")))
	assert.ErrorIs(t, ValidateWeight(d("-0.01")), ErrWeightOutOfRange)
	assert.ErrorIs(t, ValidateWeight(d("100.01")), ErrWeightOutOfRange)
}

func TestValidateProgress(t *testing.T) {
	require.NoError(t, ValidateProgress(d("0")))
	require.NoError(t, ValidateProgress(d("100")))
	assert.ErrorIs(t, ValidateProgress(d("-1")), ErrProgressOutOfRange)
	assert.ErrorIs(t, ValidateProgress(d("100.5")), ErrProgressOutOfRange)
}
