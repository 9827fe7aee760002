package evaluations

import "github.com/shopspring/decimal"

// Training impact thresholds over the average completion score for the
// evaluation period. The high band is inclusive, the low band exclusive.
var (
	trainingHighCutoff = decimal.NewFromInt(85)
	trainingLowCutoff  = decimal.NewFromInt(60)

	trainingBonus   = decimal.RequireFromString("0.15")
	trainingPenalty = decimal.RequireFromString("-0.20")
)

// TrainingImpactFor maps an employee's training completion scores for a
// period to a final-score adjustment. No trainings means no adjustment.
// A missing score counts as zero in the average.
func TrainingImpactFor(scores []*decimal.Decimal) decimal.Decimal {
	if len(scores) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, s := range scores {
		if s != nil {
			sum = sum.Add(*s)
		}
	}
	avg := sum.Div(decimal.NewFromInt(int64(len(scores))))
	switch {
	case avg.GreaterThanOrEqual(trainingHighCutoff):
		return trainingBonus
	case avg.LessThan(trainingLowCutoff):
		return trainingPenalty
	default:
		return decimal.Zero
	}
}
