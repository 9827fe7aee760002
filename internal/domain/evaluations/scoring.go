package evaluations

import "github.com/shopspring/decimal"

// Final score formula: goals 60%, behavior 30%, initiatives 10%, plus the
// training impact adjustment, rounded to two decimals.
var (
	weightGoals       = decimal.RequireFromString("0.6")
	weightBehavior    = decimal.RequireFromString("0.3")
	weightInitiatives = decimal.RequireFromString("0.1")

	scoreMax = decimal.NewFromInt(5)

	// pipThreshold: a final score strictly below 2.5 triggers a PIP.
	pipThreshold = decimal.RequireFromString("2.5")
)

// Rating thresholds, scanned from the highest band down; first match wins.
var ratingBands = []struct {
	atLeast decimal.Decimal
	rating  Rating
}{
	{decimal.RequireFromString("4.5"), RatingExcellent},
	{decimal.RequireFromString("3.5"), RatingAboveExpected},
	{decimal.RequireFromString("2.5"), RatingSatisfactory},
	{decimal.RequireFromString("1.5"), RatingBelowExpected},
}

// ComputeFinalScore combines the three sub-scores and the training impact.
// Midpoints round half to even (banker's rounding), so 3.675 becomes 3.68
// and 3.665 becomes 3.66; the choice is pinned down by tests.
func ComputeFinalScore(goals, behavior, initiatives, trainingImpact decimal.Decimal) decimal.Decimal {
	raw := goals.Mul(weightGoals).
		Add(behavior.Mul(weightBehavior)).
		Add(initiatives.Mul(weightInitiatives)).
		Add(trainingImpact)
	return raw.RoundBank(2)
}

func RatingFor(score decimal.Decimal) Rating {
	for _, band := range ratingBands {
		if score.GreaterThanOrEqual(band.atLeast) {
			return band.rating
		}
	}
	return RatingPoor
}

// TriggersPIP reports whether a final score mandates a Performance
// Improvement Plan. The boundary is strict: exactly 2.5 does not trigger.
func TriggersPIP(finalScore decimal.Decimal) bool {
	return finalScore.LessThan(pipThreshold)
}

// ValidateScore checks a sub-score or item score against [0,5].
func ValidateScore(field string, value decimal.Decimal) error {
	if value.IsNegative() || value.GreaterThan(scoreMax) {
		return &ScoreRangeError{Field: field, Value: value}
	}
	return nil
}

// ValidateScoreUpdate checks each provided sub-score; nil fields are legal
// (scores stay optional until finalize).
func ValidateScoreUpdate(update ScoreUpdate) error {
	if update.GoalsScore != nil {
		if err := ValidateScore("goalsScore", *update.GoalsScore); err != nil {
			return err
		}
	}
	if update.BehaviorScore != nil {
		if err := ValidateScore("behaviorScore", *update.BehaviorScore); err != nil {
			return err
		}
	}
	if update.InitiativesScore != nil {
		if err := ValidateScore("initiativesScore", *update.InitiativesScore); err != nil {
			return err
		}
	}
	return nil
}

// FinalizeGate checks the preconditions for finalizing, in order: not
// already finalized or approved, then all three sub-scores present.
func FinalizeGate(e Evaluation) error {
	if e.Status.Finalized() {
		return ErrAlreadyFinalized
	}
	if e.GoalsScore == nil || e.BehaviorScore == nil || e.InitiativesScore == nil {
		return ErrScoresIncomplete
	}
	return nil
}
