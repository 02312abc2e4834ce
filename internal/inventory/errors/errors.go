package errors

import "errors"

var (
	ErrItemNotFound = errors.New("inventory item not found")

	ErrRentalNotFound = errors.New("rental not found")

	ErrRepairNotFound = errors.New("repair not found")

	ErrInsufficientAvailability = errors.New("insufficient availability")

	ErrExceedsRented = errors.New("return count exceeds units on loan")

	ErrInvalidCount = errors.New("count must be at least 1")

	ErrInvalidTransition = errors.New("repair status cannot move backwards")

	ErrQuantityBelowCommitted = errors.New("quantity is below units on loan or in repair")

	ErrLocationExists = errors.New("location already exists")

	ErrLocationNotFound = errors.New("location not found")

	ErrNotBorrower = errors.New("only the borrower or an admin may act on this rental")

	ErrAdminOnly = errors.New("admin role required")
)
