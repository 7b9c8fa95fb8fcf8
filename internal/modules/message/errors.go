package message

import "errors"

var (
	ErrNotFound           = errors.New("message not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrForeignReservation = errors.New("reservation does not belong to the user")
	ErrEmptyResponse      = errors.New("response must not be empty")
)
