package ledger

import "errors"

var (
	// ErrAccountNotFound is fatal for the single request and must not be retried.
	ErrAccountNotFound = errors.New("ledger account not found")

	// ErrInsufficientCredits is an expected denial, not a fault.
	ErrInsufficientCredits = errors.New("insufficient credits")

	// ErrInvalidAmount rejects negative deduction amounts before they
	// reach storage.
	ErrInvalidAmount = errors.New("deduction amount must be non-negative")

	// ErrInvalidTotal rejects negative allotments on reset.
	ErrInvalidTotal = errors.New("credit total must be non-negative")

	// ErrStorageTransient marks retryable storage failures. Only the
	// single atomic mutation may be retried, never a multi-step sequence.
	ErrStorageTransient = errors.New("transient storage error")

	// ErrInvariantViolation is reported when used > total is observed at
	// read time. The row is clamped for decisions and flagged for repair.
	ErrInvariantViolation = errors.New("ledger invariant violation: used exceeds total")

	ErrAccountAlreadyExists = errors.New("ledger account already exists")
)
