package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrNotPending = errors.New("booking is not pending")

	ErrNotAllowed = errors.New("not allowed to decide on this booking")

	ErrNotOwner = errors.New("only the requester or an admin may cancel this booking")

	ErrNotSchoolDay = errors.New("bookings are only accepted on school days")

	ErrInvalidMode = errors.New("unknown approval mode")

	ErrDuplicateBaseEntry = errors.New("base schedule has more than one entry for the same day, period and location")
)
