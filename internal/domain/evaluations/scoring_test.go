package evaluations

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func dp(value string) *decimal.Decimal {
	out := decimal.RequireFromString(value)
	return &out
}

func TestComputeFinalScore(t *testing.T) {
	cases := []struct {
		name                        string
		goals, behavior, initiative string
		impact                      string
		want                        string
	}{
		{"all fours no impact", "4", "4", "4", "0", "4"},
		{"weighted mix", "4", "3", "5", "0", "3.8"},
		{"bonus applied", "4", "3", "5", "0.15", "3.95"},
		{"penalty applied", "4", "3", "5", "-0.2", "3.6"},
		{"all zero with penalty floors below zero", "0", "0", "0", "-0.2", "-0.2"},
		{"maximum with bonus exceeds five", "5", "5", "5", "0.15", "5.15"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeFinalScore(d(tc.goals), d(tc.behavior), d(tc.initiative), d(tc.impact))
			assert.True(t, got.Equal(d(tc.want)), "got %s want %s", got, tc.want)
		})
	}
}

// Midpoints round half to even, so a raw third decimal of exactly 5 goes to
// the nearest even second decimal.
func TestComputeFinalScoreRoundsHalfToEven(t *testing.T) {
	// 0.05 * 0.1 = 0.005 -> 0.00
	got := ComputeFinalScore(d("0"), d("0"), d("0.05"), decimal.Zero)
	assert.True(t, got.Equal(d("0")), "0.005 should round to 0.00, got %s", got)

	// 0.15 * 0.1 = 0.015 -> 0.02
	got = ComputeFinalScore(d("0"), d("0"), d("0.15"), decimal.Zero)
	assert.True(t, got.Equal(d("0.02")), "0.015 should round to 0.02, got %s", got)

	// 0.25 * 0.1 = 0.025 -> 0.02 again, not 0.03
	got = ComputeFinalScore(d("0"), d("0"), d("0.25"), decimal.Zero)
	assert.True(t, got.Equal(d("0.02")), "0.025 should round to 0.02, got %s", got)
}

func TestRatingBands(t *testing.T) {
	cases := []struct {
		score string
		want  Rating
	}{
		{"5", RatingExcellent},
		{"4.5", RatingExcellent},
		{"4.49", RatingAboveExpected},
		{"3.5", RatingAboveExpected},
		{"3.49", RatingSatisfactory},
		{"2.5", RatingSatisfactory},
		{"2.49", RatingBelowExpected},
		{"1.5", RatingBelowExpected},
		{"1.49", RatingPoor},
		{"0", RatingPoor},
	}
	for _, tc := range cases {
		t.Run(tc.score, func(t *testing.T) {
			assert.Equal(t, tc.want, RatingFor(d(tc.score)))
		})
	}
}

func TestTriggersPIPBoundary(t *testing.T) {
	assert.True(t, TriggersPIP(d("2.49")))
	assert.False(t, TriggersPIP(d("2.5")), "exactly 2.5 must not trigger")
	assert.False(t, TriggersPIP(d("2.51")))
}

func TestValidateScore(t *testing.T) {
	assert.NoError(t, ValidateScore("goalsScore", d("0")))
	assert.NoError(t, ValidateScore("goalsScore", d("5")))

	err := ValidateScore("goalsScore", d("5.01"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrScoreOutOfRange)
	var rangeErr *ScoreRangeError
	require.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, "goalsScore", rangeErr.Field)

	assert.ErrorIs(t, ValidateScore("behaviorScore", d("-0.01")), ErrScoreOutOfRange)
}

func TestValidateScoreUpdateSkipsNilFields(t *testing.T) {
	assert.NoError(t, ValidateScoreUpdate(ScoreUpdate{}))
	assert.NoError(t, ValidateScoreUpdate(ScoreUpdate{GoalsScore: dp("3.5")}))
	assert.ErrorIs(t, ValidateScoreUpdate(ScoreUpdate{InitiativesScore: dp("6")}), ErrScoreOutOfRange)
}

func TestFinalizeGate(t *testing.T) {
	full := Evaluation{
		Status:           StatusInProgress,
		GoalsScore:       dp("4"),
		BehaviorScore:    dp("4"),
		InitiativesScore: dp("4"),
	}
	assert.NoError(t, FinalizeGate(full))

	finalized := full
	finalized.Status = StatusFinalized
	assert.ErrorIs(t, FinalizeGate(finalized), ErrAlreadyFinalized)

	approved := full
	approved.Status = StatusApproved
	assert.ErrorIs(t, FinalizeGate(approved), ErrAlreadyFinalized)

	missing := full
	missing.BehaviorScore = nil
	assert.ErrorIs(t, FinalizeGate(missing), ErrScoresIncomplete)
}
