package goals

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusGates(t *testing.T) {
	assert.True(t, StatusDraft.Editable())
	assert.True(t, StatusApproved.Editable())
	assert.False(t, StatusInProgress.Editable())
	assert.False(t, StatusCompleted.Editable())
	assert.False(t, StatusCancelled.Editable())

	assert.True(t, StatusDraft.Deletable())
	assert.False(t, StatusApproved.Deletable())

	assert.True(t, StatusApproved.Trackable())
	assert.True(t, StatusInProgress.Trackable())
	assert.False(t, StatusDraft.Trackable())
	assert.False(t, StatusCompleted.Trackable())

	assert.True(t, StatusDraft.AwaitsDecision())
	assert.False(t, StatusApproved.AwaitsDecision())
}

func TestCountsTowardBudget(t *testing.T) {
	assert.True(t, StatusDraft.CountsTowardBudget())
	assert.True(t, StatusApproved.CountsTowardBudget())
	assert.True(t, StatusCompleted.CountsTowardBudget())
	assert.False(t, StatusCancelled.CountsTowardBudget())
}

func TestStatusForProgress(t *testing.T) {
	assert.Equal(t, StatusCompleted, StatusForProgress(d("100")))
	assert.Equal(t, StatusCompleted, StatusForProgress(d("100.00")))
	assert.Equal(t, StatusInProgress, StatusForProgress(d("99.99")))
	assert.Equal(t, StatusInProgress, StatusForProgress(d("0")))
	// lowering progress from a completed goal drops it back to in progress
	assert.Equal(t, StatusInProgress, StatusForProgress(d("80")))
}

func TestParseStatusAndType(t *testing.T) {
	status, err := ParseStatus("approved")
	assert.NoError(t, err)
	assert.Equal(t, StatusApproved, status)

	_, err = ParseStatus("bogus")
	assert.Error(t, err)

	goalType, err := ParseType("development")
	assert.NoError(t, err)
	assert.Equal(t, TypeDevelopment, goalType)

	_, err = ParseType("misc")
	assert.Error(t, err)
}
