package errors

import "errors"

var (
	ErrNotFound = errors.New("leasing not found")

	ErrInvalidID = errors.New("invalid leasing ID format")

	ErrInvalidTimeRange = errors.New("leasing end must be after start")
)
