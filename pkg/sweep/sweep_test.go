package sweep_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/entitlements/pkg/catalog"
	"github.com/dmitrymomot/entitlements/pkg/ledger"
	"github.com/dmitrymomot/entitlements/pkg/purchase"
	"github.com/dmitrymomot/entitlements/pkg/sweep"
)

// flakyStore fails Reset for one specific account to simulate a
// transient storage fault during the batch.
type flakyStore struct {
	ledger.Store
	failID uuid.UUID
}

func (s *flakyStore) Reset(ctx context.Context, id uuid.UUID, newTotal int64, now time.Time) error {
	if id == s.failID {
		return errors.New("storage down")
	}
	return s.Store.Reset(ctx, id, newTotal, now)
}

func newSweepCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()

	cat, err := catalog.New(context.Background(), catalog.NewInMemSource(map[string]catalog.Plan{
		"free": {ID: "free", IsFree: true, MonthlyCredits: 100},
		"pro":  {ID: "pro", MonthlyCredits: 5000},
	}))
	require.NoError(t, err)
	return cat
}

func seedAccount(t *testing.T, store ledger.Store, used int64) uuid.UUID {
	t.Helper()

	id := uuid.New()
	now := time.Now().UTC()
	require.NoError(t, store.Create(context.Background(), &ledger.Account{
		ID:          id,
		Credits:     100,
		CreditsUsed: used,
		CreatedAt:   now,
		UpdatedAt:   now,
	}))
	return id
}

func TestRunMonthlySweep(t *testing.T) {
	t.Parallel()

	noSubs := purchase.SourceFunc(func(context.Context, uuid.UUID) ([]purchase.Purchase, error) {
		return nil, nil
	})

	t.Run("resets every account to its plan quota", func(t *testing.T) {
		t.Parallel()

		store := ledger.NewMemStore()
		free1 := seedAccount(t, store, 80)
		subscribed := seedAccount(t, store, 95)

		source := purchase.SourceFunc(func(_ context.Context, id uuid.UUID) ([]purchase.Purchase, error) {
			if id == subscribed {
				return []purchase.Purchase{{
					ID:        "sub_1",
					AccountID: id,
					Type:      purchase.TypeSubscription,
					PlanID:    "pro",
					Status:    purchase.StatusActive,
					CreatedAt: time.Now().UTC(),
				}}, nil
			}
			return nil, nil
		})

		sweeper := sweep.New(store, source, newSweepCatalog(t))
		result, err := sweeper.RunMonthlySweep(context.Background())
		require.NoError(t, err)
		assert.Equal(t, sweep.Result{TotalAccounts: 2, ResetCount: 2, ErrorCount: 0}, result)

		acc, err := store.Get(context.Background(), free1)
		require.NoError(t, err)
		assert.Equal(t, int64(100), acc.Credits)
		assert.Equal(t, int64(0), acc.CreditsUsed)

		acc, err = store.Get(context.Background(), subscribed)
		require.NoError(t, err)
		assert.Equal(t, int64(5000), acc.Credits)
		assert.Equal(t, int64(0), acc.CreditsUsed)
	})

	t.Run("one failing account does not abort the batch", func(t *testing.T) {
		t.Parallel()

		mem := ledger.NewMemStore()
		first := seedAccount(t, mem, 10)
		failing := seedAccount(t, mem, 20)
		third := seedAccount(t, mem, 30)
		store := &flakyStore{Store: mem, failID: failing}

		sweeper := sweep.New(store, noSubs, newSweepCatalog(t))
		result, err := sweeper.RunMonthlySweep(context.Background())
		require.NoError(t, err)
		assert.Equal(t, sweep.Result{TotalAccounts: 3, ResetCount: 2, ErrorCount: 1}, result)

		for _, id := range []uuid.UUID{first, third} {
			acc, err := mem.Get(context.Background(), id)
			require.NoError(t, err)
			assert.Equal(t, int64(0), acc.CreditsUsed)
		}

		acc, err := mem.Get(context.Background(), failing)
		require.NoError(t, err)
		assert.Equal(t, int64(20), acc.CreditsUsed)
	})

	t.Run("running twice in a period is idempotent", func(t *testing.T) {
		t.Parallel()

		store := ledger.NewMemStore()
		id := seedAccount(t, store, 40)

		sweeper := sweep.New(store, noSubs, newSweepCatalog(t))
		_, err := sweeper.RunMonthlySweep(context.Background())
		require.NoError(t, err)
		first, err := store.Get(context.Background(), id)
		require.NoError(t, err)

		result, err := sweeper.RunMonthlySweep(context.Background())
		require.NoError(t, err)
		assert.Equal(t, sweep.Result{TotalAccounts: 1, ResetCount: 1, ErrorCount: 0}, result)

		second, err := store.Get(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, first.Credits, second.Credits)
		assert.Equal(t, first.CreditsUsed, second.CreditsUsed)
	})

	t.Run("a stuck account is cut off by the per-account timeout", func(t *testing.T) {
		t.Parallel()

		store := ledger.NewMemStore()
		seedAccount(t, store, 10)
		seedAccount(t, store, 20)

		calls := 0
		source := purchase.SourceFunc(func(ctx context.Context, _ uuid.UUID) ([]purchase.Purchase, error) {
			calls++
			if calls == 1 {
				<-ctx.Done()
				return nil, ctx.Err()
			}
			return nil, nil
		})

		sweeper := sweep.New(store, source, newSweepCatalog(t),
			sweep.WithConcurrency(1),
			sweep.WithAccountTimeout(50*time.Millisecond),
		)
		result, err := sweeper.RunMonthlySweep(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, result.TotalAccounts)
		assert.Equal(t, 1, result.ResetCount)
		assert.Equal(t, 1, result.ErrorCount)
	})

	t.Run("empty account list", func(t *testing.T) {
		t.Parallel()

		sweeper := sweep.New(ledger.NewMemStore(), noSubs, newSweepCatalog(t))
		result, err := sweeper.RunMonthlySweep(context.Background())
		require.NoError(t, err)
		assert.Equal(t, sweep.Result{}, result)
	})
}
