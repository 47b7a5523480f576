package sweep

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/entitlements/pkg/async"
	"github.com/dmitrymomot/entitlements/pkg/catalog"
	"github.com/dmitrymomot/entitlements/pkg/ledger"
	"github.com/dmitrymomot/entitlements/pkg/purchase"
)

var ErrFailedToListAccounts = errors.New("sweep: failed to list accounts")

// Result is the outcome report of one sweep run.
type Result struct {
	TotalAccounts int `json:"total_accounts"`
	ResetCount    int `json:"reset_count"`
	ErrorCount    int `json:"error_count"`
}

// Sweeper resets every account's ledger to its currently resolved plan
// quota.
type Sweeper struct {
	store          ledger.Store
	purchases      purchase.Source
	catalog        *catalog.Catalog
	log            *slog.Logger
	concurrency    int
	accountTimeout time.Duration
	now            func() time.Time
}

// Option configures a Sweeper.
type Option func(*Sweeper)

// WithConcurrency bounds how many accounts are processed in parallel.
func WithConcurrency(n int) Option {
	return func(s *Sweeper) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithAccountTimeout bounds the time spent on a single account.
func WithAccountTimeout(d time.Duration) Option {
	return func(s *Sweeper) {
		if d > 0 {
			s.accountTimeout = d
		}
	}
}

// WithLogger sets the logger for per-account failure reporting.
func WithLogger(log *slog.Logger) Option {
	return func(s *Sweeper) {
		if log != nil {
			s.log = log
		}
	}
}

// WithNowFunc overrides the clock. Intended for tests.
func WithNowFunc(now func() time.Time) Option {
	return func(s *Sweeper) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a Sweeper. Panics on nil dependencies to fail fast during
// initialization.
func New(store ledger.Store, purchases purchase.Source, cat *catalog.Catalog, opts ...Option) *Sweeper {
	if store == nil {
		panic("sweep: ledger.Store is required")
	}
	if purchases == nil {
		panic("sweep: purchase.Source is required")
	}
	if cat == nil {
		panic("sweep: catalog is required")
	}

	s := &Sweeper{
		store:          store,
		purchases:      purchases,
		catalog:        cat,
		log:            slog.Default(),
		concurrency:    8,
		accountTimeout: 10 * time.Second,
		now:            func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RunMonthlySweep resets all accounts and reports the outcome. The
// returned error covers only the account listing; individual account
// failures are counted in the Result.
func (s *Sweeper) RunMonthlySweep(ctx context.Context) (Result, error) {
	ids, err := s.store.ListIDs(ctx)
	if err != nil {
		return Result{}, errors.Join(ErrFailedToListAccounts, err)
	}

	result := Result{TotalAccounts: len(ids)}
	if len(ids) == 0 {
		return result, nil
	}

	sem := make(chan struct{}, s.concurrency)
	futures := make([]*async.Future[uuid.UUID], 0, len(ids))
	for _, id := range ids {
		futures = append(futures, async.Async(ctx, id, func(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
			sem <- struct{}{}
			defer func() { <-sem }()
			return id, s.sweepAccount(ctx, id)
		}))
	}

	for _, fut := range futures {
		id, err := fut.Await()
		if err != nil {
			result.ErrorCount++
			s.log.ErrorContext(ctx, "sweep: account reset failed",
				slog.String("account_id", id.String()),
				slog.Any("error", err),
			)
		} else {
			result.ResetCount++
		}
	}

	s.log.InfoContext(ctx, "sweep finished",
		slog.Int("total_accounts", result.TotalAccounts),
		slog.Int("reset_count", result.ResetCount),
		slog.Int("error_count", result.ErrorCount),
	)
	return result, nil
}

// sweepAccount resolves the account's plan and resets its ledger to the
// plan's monthly quota. Accounts without any governing plan are reset to
// zero credits.
func (s *Sweeper) sweepAccount(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, s.accountTimeout)
	defer cancel()

	purchases, err := s.purchases.ListByAccount(ctx, id)
	if err != nil {
		return err
	}

	res := purchase.ResolveActivePlan(purchases, s.catalog)
	var quota int64
	if res.ActivePlan != nil {
		quota = res.ActivePlan.MonthlyCredits
	}

	return s.store.Reset(ctx, id, quota, s.now())
}
