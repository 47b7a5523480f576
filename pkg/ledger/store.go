package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store is the atomic storage collaborator for ledger rows. Deduct and
// the reset operations must each execute as one atomic conditional update
// in the backend; implementations must never read a row and write it back.
type Store interface {
	// Get retrieves an account row. Returns ErrAccountNotFound if missing.
	Get(ctx context.Context, id uuid.UUID) (*Account, error)

	// Create inserts a new account row. Returns ErrAccountAlreadyExists
	// if the ID is taken.
	Create(ctx context.Context, acc *Account) error

	// Deduct atomically increments used by amount only if the result
	// stays within total. Returns whether the deduction was applied;
	// false means insufficient credits and no mutation.
	Deduct(ctx context.Context, id uuid.UUID, amount int64) (bool, error)

	// Reset sets used = 0, total = newTotal and the reset timestamp,
	// unconditionally. Idempotent within a cycle apart from the timestamp.
	Reset(ctx context.Context, id uuid.UUID, newTotal int64, now time.Time) error

	// ResetIfElapsed performs Reset only if the stored reset timestamp is
	// null or strictly before cutoff, as one atomic conditional update. Returns
	// whether a reset occurred. Safe under concurrent callers: exactly
	// one of N concurrent calls with the same cutoff applies.
	ResetIfElapsed(ctx context.Context, id uuid.UUID, newTotal int64, cutoff, now time.Time) (bool, error)

	// ListIDs returns the IDs of all accounts, for the monthly sweep.
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
}
