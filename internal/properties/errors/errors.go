package errors

import "errors"

var (
	// ErrNotFound indicates the property does not exist.
	ErrNotFound = errors.New("property not found")

	// ErrInvalidID indicates the provided ID is not a valid ObjectID.
	ErrInvalidID = errors.New("invalid property ID")

	// ErrGuardFailed indicates a conditional counter update matched no
	// document: the bed counter was already at its bound, or a concurrent
	// writer got there first.
	ErrGuardFailed = errors.New("availability guard failed")
)
