package model

import "errors"

var (
	// ErrNotFound is returned when an entity is missing or soft-deleted.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when the principal lacks the role or ownership
	// an operation requires.
	ErrForbidden = errors.New("forbidden")

	// ErrNestingLimitExceeded is returned when a reply would sit deeper than
	// the configured maximum depth.
	ErrNestingLimitExceeded = errors.New("nesting limit exceeded")

	// ErrInvalidStateTransition is returned for illegal lifecycle moves, such
	// as resolving a report that is no longer pending.
	ErrInvalidStateTransition = errors.New("invalid state transition")

	// ErrConflict is returned on uniqueness violations.
	ErrConflict = errors.New("conflict")
)

// ErrValidation is returned by service methods when the caller supplies invalid
// input. Handlers should convert this to HTTP 400 rather than 500.
type ErrValidation struct{ Msg string }

func (e *ErrValidation) Error() string { return e.Msg }

// Invalid returns an *ErrValidation carrying msg.
func Invalid(msg string) error { return &ErrValidation{Msg: msg} }
