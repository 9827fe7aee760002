package training

import "errors"

var (
	ErrResultNotFound   = errors.New("training result not found")
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrScoreOutOfRange  = errors.New("training score must be between 0 and 100")
)
