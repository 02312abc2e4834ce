package remote

import "errors"

var (
	ErrTimeout     = errors.New("remote store timed out")
	ErrUnavailable = errors.New("remote store unreachable")
	ErrRejected    = errors.New("remote store rejected the action")
	ErrBadResponse = errors.New("remote store sent a malformed response")
)
