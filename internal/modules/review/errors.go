package review

import "errors"

var (
	ErrNotFound        = errors.New("review not found")
	ErrServiceNotFound = errors.New("service not found")
	ErrForbidden       = errors.New("forbidden")
)
