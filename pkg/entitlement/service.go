package entitlement

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/entitlements/pkg/catalog"
	"github.com/dmitrymomot/entitlements/pkg/ledger"
	"github.com/dmitrymomot/entitlements/pkg/purchase"
)

// Service is the single entry point for metered actions.
type Service interface {
	// CheckAndConsume performs the lazy cycle reset, resolves the active
	// plan and atomically deducts cost from the account. A denial is a
	// normal Decision, not an error; errors mean the attempt is
	// unresolved (unknown account, storage failure).
	CheckAndConsume(ctx context.Context, accountID uuid.UUID, cost int64) (Decision, error)

	// Balance returns the account's current balance after applying the
	// lazy cycle reset.
	Balance(ctx context.Context, accountID uuid.UUID) (ledger.Balance, error)

	// Provision creates the ledger row for a new account, defaulted to
	// the free plan's allotment (zero when no free plan exists).
	Provision(ctx context.Context, accountID uuid.UUID) error

	// Reprovision resets the account's ledger to its currently resolved
	// plan quota. Intended for plan-change events from the billing
	// collaborator.
	Reprovision(ctx context.Context, accountID uuid.UUID) error
}

type service struct {
	ledger    *ledger.Service
	purchases purchase.Source
	catalog   *catalog.Catalog
	cycle     time.Duration
	log       *slog.Logger
	cache     *planCache
}

// Option configures the Service.
type Option func(*service)

// WithCycle sets the billing cycle length. Default is 30 days.
func WithCycle(cycle time.Duration) Option {
	return func(s *service) {
		if cycle > 0 {
			s.cycle = cycle
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *service) {
		if log != nil {
			s.log = log
		}
	}
}

// New creates the entitlement facade. Panics on nil dependencies to fail
// fast during initialization.
func New(ledgerSvc *ledger.Service, purchases purchase.Source, cat *catalog.Catalog, opts ...Option) Service {
	if ledgerSvc == nil {
		panic("entitlement: ledger.Service is required")
	}
	if purchases == nil {
		panic("entitlement: purchase.Source is required")
	}
	if cat == nil {
		panic("entitlement: catalog is required")
	}

	s := &service{
		ledger:    ledgerSvc,
		purchases: purchases,
		catalog:   cat,
		cycle:     30 * 24 * time.Hour,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache != nil {
		// Keep the cache on the final logger regardless of option order.
		s.cache.log = s.log
	}
	return s
}

func (s *service) CheckAndConsume(ctx context.Context, accountID uuid.UUID, cost int64) (Decision, error) {
	resolve := s.memoizedResolution(accountID)

	// Lazy reset first, so a request arriving after the cycle boundary
	// sees the fresh allotment even when the sweep has not run yet. The
	// purchase list is only fetched when a reset is actually due.
	if _, err := s.ledger.ResetIfCycleElapsed(ctx, accountID, s.cycle, func(ctx context.Context) (int64, error) {
		res, err := resolve(ctx)
		if err != nil {
			return 0, err
		}
		return quotaOf(res), nil
	}); err != nil {
		return Decision{}, err
	}

	// Resolution failures here are non-fatal: the plan is informational
	// and the deduction stands on the ledger alone.
	var plan *catalog.Plan
	var hasSubscription bool
	if res, err := resolve(ctx); err != nil {
		s.log.WarnContext(ctx, "plan resolution failed, proceeding without plan info",
			slog.String("account_id", accountID.String()),
			slog.Any("error", err),
		)
	} else {
		plan = res.ActivePlan
		hasSubscription = res.HasSubscription
	}

	balance, err := s.ledger.Deduct(ctx, accountID, cost)
	if err != nil {
		if errors.Is(err, ledger.ErrInsufficientCredits) {
			return Decision{
				Status:          StatusDenied,
				Reason:          ReasonInsufficientCredits,
				Balance:         balance,
				Plan:            plan,
				HasSubscription: hasSubscription,
			}, nil
		}
		return Decision{}, err
	}

	return Decision{
		Status:          StatusOK,
		Balance:         balance,
		Plan:            plan,
		HasSubscription: hasSubscription,
	}, nil
}

func (s *service) Balance(ctx context.Context, accountID uuid.UUID) (ledger.Balance, error) {
	resolve := s.memoizedResolution(accountID)

	if _, err := s.ledger.ResetIfCycleElapsed(ctx, accountID, s.cycle, func(ctx context.Context) (int64, error) {
		res, err := resolve(ctx)
		if err != nil {
			return 0, err
		}
		return quotaOf(res), nil
	}); err != nil {
		return ledger.Balance{}, err
	}

	return s.ledger.GetAvailable(ctx, accountID)
}

func (s *service) Provision(ctx context.Context, accountID uuid.UUID) error {
	var quota int64
	if free := s.catalog.FreePlan(); free != nil {
		quota = free.MonthlyCredits
	}
	return s.ledger.Provision(ctx, accountID, quota)
}

func (s *service) Reprovision(ctx context.Context, accountID uuid.UUID) error {
	res, err := s.resolveFresh(ctx, accountID)
	if err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.invalidate(ctx, accountID)
	}
	return s.ledger.Reset(ctx, accountID, quotaOf(res))
}

// memoizedResolution returns a resolver that hits the purchase source at
// most once per call, consulting the optional cross-call cache first.
func (s *service) memoizedResolution(accountID uuid.UUID) func(context.Context) (purchase.Resolution, error) {
	var (
		cached purchase.Resolution
		done   bool
	)
	return func(ctx context.Context) (purchase.Resolution, error) {
		if done {
			return cached, nil
		}

		if s.cache != nil {
			if entry, ok := s.cache.get(ctx, accountID); ok {
				if res, ok := s.rehydrate(entry); ok {
					cached, done = res, true
					return cached, nil
				}
			}
		}

		res, err := s.resolveFresh(ctx, accountID)
		if err != nil {
			return purchase.Resolution{}, err
		}

		if s.cache != nil {
			s.cache.set(ctx, accountID, res)
		}
		cached, done = res, true
		return cached, nil
	}
}

// rehydrate rebuilds a Resolution from a cache entry, looking the plan
// up in the catalog so catalog edits take effect without waiting out the
// cache TTL. Returns false when the cached plan no longer exists; the
// caller then resolves fresh. An empty plan ID legitimately records
// "no plan".
func (s *service) rehydrate(entry cachedResolution) (purchase.Resolution, bool) {
	res := purchase.Resolution{
		HasSubscription: entry.HasSubscription,
		HasPurchase:     entry.HasPurchase,
	}
	if entry.PlanID == "" {
		return res, true
	}
	plan, found := s.catalog.Get(entry.PlanID)
	if !found {
		return purchase.Resolution{}, false
	}
	res.ActivePlan = &plan
	return res, true
}

func (s *service) resolveFresh(ctx context.Context, accountID uuid.UUID) (purchase.Resolution, error) {
	purchases, err := s.purchases.ListByAccount(ctx, accountID)
	if err != nil {
		return purchase.Resolution{}, err
	}
	return purchase.ResolveActivePlan(purchases, s.catalog), nil
}

func quotaOf(res purchase.Resolution) int64 {
	if res.ActivePlan != nil {
		return res.ActivePlan.MonthlyCredits
	}
	return 0
}
