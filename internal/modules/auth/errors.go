package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrSamePassword       = errors.New("new password must differ from the current one")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrSameEmail          = errors.New("new email equals the current one")
	ErrAccountInactive    = errors.New("account is not activated")
	ErrAccountLocked      = errors.New("account temporarily locked")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUserNotFound       = errors.New("user not found")
)
