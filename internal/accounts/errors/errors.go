package errors

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid id or password")

	ErrPendingApproval = errors.New("account is waiting for approval")

	ErrAccountNotFound = errors.New("account not found")

	ErrMasterOnly = errors.New("only the master account may manage accounts")

	ErrSelfAction = errors.New("cannot change your own account this way")

	ErrInvalidAct = errors.New("unknown account action")
)
