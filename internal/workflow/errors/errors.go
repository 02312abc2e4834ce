package errors

import "errors"

var (
	ErrRequestNotFound = errors.New("request not found")

	ErrAdminOnly = errors.New("only admins may manage requests")

	ErrEmptyContent = errors.New("request content is empty")
)
