package errors

import "errors"

var (
	ErrNotFound = errors.New("plot not found")

	ErrInvalidID = errors.New("invalid plot ID format")
)
