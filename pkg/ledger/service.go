package ledger

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// QuotaFunc resolves the credit allotment an account should be reset to.
// Called only when a lazy reset is actually due, so implementations may
// perform I/O (purchase resolution) without taxing the hot path.
type QuotaFunc func(ctx context.Context) (int64, error)

// Service wraps a Store with balance math, invariant repair and the lazy
// per-access cycle reset.
type Service struct {
	store Store
	log   *slog.Logger
	now   func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used for invariant-violation warnings.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithNowFunc overrides the clock. Intended for tests.
func WithNowFunc(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a ledger Service over the given Store.
// Panics if store is nil to fail fast during initialization.
func NewService(store Store, opts ...Option) *Service {
	if store == nil {
		panic("ledger: Store is required")
	}

	s := &Service{
		store: store,
		log:   slog.Default(),
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetAvailable returns the account's balance. Available is always
// max(0, total-used); a row with used > total is clamped and flagged.
func (s *Service) GetAvailable(ctx context.Context, id uuid.UUID) (Balance, error) {
	acc, err := s.store.Get(ctx, id)
	if err != nil {
		return Balance{}, err
	}
	return s.balanceOf(ctx, acc), nil
}

// HasEnough reports whether the account can cover amount.
func (s *Service) HasEnough(ctx context.Context, id uuid.UUID, amount int64) (bool, error) {
	if amount < 0 {
		return false, ErrInvalidAmount
	}
	balance, err := s.GetAvailable(ctx, id)
	if err != nil {
		return false, err
	}
	return balance.Available >= amount, nil
}

// Deduct atomically consumes amount from the account. On denial the
// returned Balance carries the untouched state alongside
// ErrInsufficientCredits so callers can render an upgrade/wait prompt.
func (s *Service) Deduct(ctx context.Context, id uuid.UUID, amount int64) (Balance, error) {
	if amount < 0 {
		return Balance{}, ErrInvalidAmount
	}

	applied, err := s.store.Deduct(ctx, id, amount)
	if err != nil {
		return Balance{}, err
	}

	acc, err := s.store.Get(ctx, id)
	if err != nil {
		return Balance{}, err
	}
	balance := s.balanceOf(ctx, acc)

	if !applied {
		return balance, ErrInsufficientCredits
	}
	return balance, nil
}

// Reset starts a fresh cycle with the given allotment. Idempotent within
// a cycle: a second call changes nothing but the timestamp.
func (s *Service) Reset(ctx context.Context, id uuid.UUID, newTotal int64) error {
	if newTotal < 0 {
		return ErrInvalidTotal
	}
	return s.store.Reset(ctx, id, newTotal, s.now())
}

// ResetIfCycleElapsed performs a lazy reset when the account's cycle has
// elapsed (or it was never reset). The quota is resolved only when a
// reset is due. The store-level conditional update guarantees that
// concurrent callers cannot double-reset. Returns whether a reset occurred.
func (s *Service) ResetIfCycleElapsed(ctx context.Context, id uuid.UUID, cycle time.Duration, quota QuotaFunc) (bool, error) {
	acc, err := s.store.Get(ctx, id)
	if err != nil {
		return false, err
	}

	now := s.now()
	if !acc.CycleElapsedAt(now, cycle) {
		return false, nil
	}

	newTotal, err := quota(ctx)
	if err != nil {
		return false, err
	}
	if newTotal < 0 {
		return false, ErrInvalidTotal
	}

	// The elapsed check above is advisory; the conditional update below
	// is what prevents a double reset when callers race.
	cutoff := now.Add(-cycle)
	return s.store.ResetIfElapsed(ctx, id, newTotal, cutoff, now)
}

// Provision creates a ledger row for a new account with the given
// allotment, typically the free plan's monthly credits.
func (s *Service) Provision(ctx context.Context, id uuid.UUID, total int64) error {
	if total < 0 {
		return ErrInvalidTotal
	}
	now := s.now()
	resetAt := now
	return s.store.Create(ctx, &Account{
		ID:             id,
		Credits:        total,
		CreditsUsed:    0,
		CreditsResetAt: &resetAt,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
}

// balanceOf derives the balance and logs a warning for rows needing repair.
func (s *Service) balanceOf(ctx context.Context, acc *Account) Balance {
	balance := BalanceOf(acc)
	if balance.Flagged {
		s.log.WarnContext(ctx, "ledger invariant violation, clamping availability to zero",
			slog.String("account_id", acc.ID.String()),
			slog.Int64("credits", acc.Credits),
			slog.Int64("credits_used", acc.CreditsUsed),
		)
	}
	return balance
}
