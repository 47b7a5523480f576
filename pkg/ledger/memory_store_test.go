package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/entitlements/pkg/ledger"
)

func TestMemStoreResetIfElapsed(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	cutoff := now.Add(-30 * 24 * time.Hour)

	t.Run("applies when reset timestamp is before cutoff", func(t *testing.T) {
		t.Parallel()

		store := ledger.NewMemStore()
		id := newTestAccount(t, store, 100, 60, timePtr(cutoff.Add(-time.Minute)))

		applied, err := store.ResetIfElapsed(context.Background(), id, 200, cutoff, now)
		require.NoError(t, err)
		assert.True(t, applied)

		acc, err := store.Get(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, int64(200), acc.Credits)
		assert.Equal(t, int64(0), acc.CreditsUsed)
		require.NotNil(t, acc.CreditsResetAt)
		assert.True(t, acc.CreditsResetAt.Equal(now))
	})

	t.Run("skips when reset timestamp equals cutoff", func(t *testing.T) {
		t.Parallel()

		store := ledger.NewMemStore()
		id := newTestAccount(t, store, 100, 60, timePtr(cutoff))

		applied, err := store.ResetIfElapsed(context.Background(), id, 200, cutoff, now)
		require.NoError(t, err)
		assert.False(t, applied)
	})

	t.Run("applies when never reset", func(t *testing.T) {
		t.Parallel()

		store := ledger.NewMemStore()
		id := newTestAccount(t, store, 100, 60, nil)

		applied, err := store.ResetIfElapsed(context.Background(), id, 200, cutoff, now)
		require.NoError(t, err)
		assert.True(t, applied)
	})

	t.Run("unknown account", func(t *testing.T) {
		t.Parallel()

		store := ledger.NewMemStore()
		_, err := store.ResetIfElapsed(context.Background(), uuid.New(), 200, cutoff, now)
		assert.ErrorIs(t, err, ledger.ErrAccountNotFound)
	})
}

func TestMemStoreDeductBoundary(t *testing.T) {
	t.Parallel()

	store := ledger.NewMemStore()
	id := newTestAccount(t, store, 100, 0, nil)

	// Deducting up to exactly total is allowed.
	applied, err := store.Deduct(context.Background(), id, 100)
	require.NoError(t, err)
	assert.True(t, applied)

	// Any further deduction is refused, including zero-cost overruns.
	applied, err = store.Deduct(context.Background(), id, 1)
	require.NoError(t, err)
	assert.False(t, applied)

	applied, err = store.Deduct(context.Background(), id, 0)
	require.NoError(t, err)
	assert.True(t, applied) // zero-cost actions always pass
}

func TestMemStoreListIDs(t *testing.T) {
	t.Parallel()

	store := ledger.NewMemStore()
	want := map[uuid.UUID]bool{
		newTestAccount(t, store, 10, 0, nil): true,
		newTestAccount(t, store, 20, 0, nil): true,
		newTestAccount(t, store, 30, 0, nil): true,
	}

	ids, err := store.ListIDs(context.Background())
	require.NoError(t, err)
	require.Len(t, ids, 3)
	for _, id := range ids {
		assert.True(t, want[id])
	}
}
