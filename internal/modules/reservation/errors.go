package reservation

import "errors"

var (
	ErrNotFound                   = errors.New("reservation not found")
	ErrServiceNotFound            = errors.New("service not found")
	ErrOptionMismatch             = errors.New("option does not belong to service")
	ErrInvalidDate                = errors.New("invalid date")
	ErrDateInPast                 = errors.New("date is in the past")
	ErrInvalidRange               = errors.New("end must be after start")
	ErrInvalidStatus              = errors.New("invalid status")
	ErrAlreadyPendingCancellation = errors.New("cancellation already requested")
)
