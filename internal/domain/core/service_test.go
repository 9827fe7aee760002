package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmployeeDraft(t *testing.T) {
	draft := EmployeeDraft{FirstName: "  Ada ", LastName: "Lovelace", Email: "ada@example.com"}
	assert.NoError(t, validateEmployeeDraft(&draft))
	assert.Equal(t, "Ada", draft.FirstName)
	assert.Equal(t, EmployeeActive, draft.Status, "status defaults to active")

	bad := EmployeeDraft{FirstName: "Ada", LastName: "Lovelace", Email: "not-an-email"}
	assert.Error(t, validateEmployeeDraft(&bad))

	missing := EmployeeDraft{Email: "x@example.com"}
	assert.Error(t, validateEmployeeDraft(&missing))

	unknown := EmployeeDraft{FirstName: "A", LastName: "B", Email: "a@b.c", Status: "retired"}
	assert.Error(t, validateEmployeeDraft(&unknown))
}

func TestEmployeeFullName(t *testing.T) {
	emp := Employee{FirstName: "Ada", LastName: "Lovelace"}
	assert.Equal(t, "Ada Lovelace", emp.FullName())
}
