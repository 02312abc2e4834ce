package errors

import "errors"

var (
	ErrUnknownAction      = errors.New("unknown action")
	ErrInvalidPayload     = errors.New("invalid action payload")
	ErrNotFound           = errors.New("record not found")
	ErrDuplicateAccount   = errors.New("account already exists")
	ErrInvalidCredentials = errors.New("invalid id or password")
	ErrLocationInUse      = errors.New("location already exists")
)
