package catalog

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidType    = errors.New("invalid service type")
	ErrInvalidDate    = errors.New("invalid date")
	ErrInvalidWindow  = errors.New("available_from must not be after available_to")
	ErrInvalidStatus  = errors.New("invalid service status")
	ErrOptionMismatch = errors.New("option does not belong to service")
)
