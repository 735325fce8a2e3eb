package errors

import "errors"

var (
	// ErrNotFound means no booking matched the query.
	ErrNotFound = errors.New("booking not found")

	// ErrInvalidID means the supplied id is not a valid object id.
	ErrInvalidID = errors.New("invalid booking id")

	// ErrStatusGuardFailed means a guarded status write matched no
	// document: the booking changed under us or never existed.
	ErrStatusGuardFailed = errors.New("booking status guard failed")

	// ErrLockHeld means another transition currently holds the
	// advisory lock for this booking.
	ErrLockHeld = errors.New("booking transition lock held")
)
