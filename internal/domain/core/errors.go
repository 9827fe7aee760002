package core

import "errors"

var (
	ErrEmployeeNotFound   = errors.New("employee not found")
	ErrDepartmentNotFound = errors.New("department not found")
	ErrPositionNotFound   = errors.New("position not found")
	ErrDuplicateEmail     = errors.New("an employee with this email already exists")
	ErrDuplicateNumber    = errors.New("an employee with this number already exists")
)
