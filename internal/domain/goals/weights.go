package goals

import "github.com/shopspring/decimal"

// WeightBudget is the total weight an employee's active goals may carry per
// year. Active means not soft-deleted and not cancelled.
var WeightBudget = decimal.NewFromInt(100)

func ValidateWeight(weight decimal.Decimal) error {
	if weight.IsNegative() || weight.GreaterThan(WeightBudget) {
		return ErrWeightOutOfRange
	}
	return nil
}

func ValidateProgress(progress decimal.Decimal) error {
	if progress.IsNegative() || progress.GreaterThan(progressComplete) {
		return ErrProgressOutOfRange
	}
	return nil
}

// CheckBudget verifies that adding proposed weight on top of the committed
// total stays within the budget. Landing exactly on 100 is allowed.
func CheckBudget(employeeID string, year int, currentTotal, proposed decimal.Decimal) error {
	if currentTotal.Add(proposed).GreaterThan(WeightBudget) {
		return &WeightBudgetError{
			EmployeeID:   employeeID,
			Year:         year,
			CurrentTotal: currentTotal,
			Proposed:     proposed,
		}
	}
	return nil
}

// BudgetComplete reports whether the committed total sits exactly at 100.
// This is the "ready to submit" signal, not a create/update gate.
func BudgetComplete(total decimal.Decimal) bool {
	return total.Equal(WeightBudget)
}
