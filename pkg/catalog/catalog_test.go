package catalog_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/entitlements/pkg/catalog"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("loads and indexes plans", func(t *testing.T) {
		t.Parallel()

		cat, err := catalog.New(context.Background(), catalog.NewInMemSource(map[string]catalog.Plan{
			"free": {ID: "free", Name: "Free", IsFree: true, MonthlyCredits: 100},
			"pro":  {ID: "pro", Name: "Pro", MonthlyCredits: 5000},
		}))
		require.NoError(t, err)
		assert.Equal(t, 2, cat.Len())

		plan, ok := cat.Get("pro")
		require.True(t, ok)
		assert.Equal(t, int64(5000), plan.MonthlyCredits)

		free := cat.FreePlan()
		require.NotNil(t, free)
		assert.Equal(t, "free", free.ID)
	})

	t.Run("no free plan configured", func(t *testing.T) {
		t.Parallel()

		cat, err := catalog.New(context.Background(), catalog.NewInMemSource(map[string]catalog.Plan{
			"pro": {ID: "pro", MonthlyCredits: 5000},
		}))
		require.NoError(t, err)
		assert.Nil(t, cat.FreePlan())
	})

	t.Run("empty source yields an empty catalog", func(t *testing.T) {
		t.Parallel()

		cat, err := catalog.New(context.Background(), catalog.NewInMemSource(nil))
		require.NoError(t, err)
		assert.Equal(t, 0, cat.Len())
		assert.Nil(t, cat.FreePlan())
	})

	t.Run("rejects negative monthly credits", func(t *testing.T) {
		t.Parallel()

		_, err := catalog.New(context.Background(), catalog.NewInMemSource(map[string]catalog.Plan{
			"bad": {ID: "bad", MonthlyCredits: -1},
		}))
		assert.ErrorIs(t, err, catalog.ErrInvalidPlanConfiguration)
	})

	t.Run("rejects more than one free plan", func(t *testing.T) {
		t.Parallel()

		_, err := catalog.New(context.Background(), catalog.NewInMemSource(map[string]catalog.Plan{
			"free":  {ID: "free", IsFree: true},
			"trial": {ID: "trial", IsFree: true},
		}))
		assert.ErrorIs(t, err, catalog.ErrDuplicateFreePlan)
	})

	t.Run("rejects mismatched map keys", func(t *testing.T) {
		t.Parallel()

		_, err := catalog.New(context.Background(), catalog.NewInMemSource(map[string]catalog.Plan{
			"pro": {ID: "business"},
		}))
		assert.ErrorIs(t, err, catalog.ErrInvalidPlanConfiguration)
	})
}

func TestMustGet(t *testing.T) {
	t.Parallel()

	cat, err := catalog.New(context.Background(), catalog.NewInMemSource(map[string]catalog.Plan{
		"pro": {ID: "pro", MonthlyCredits: 5000},
	}))
	require.NoError(t, err)

	plan, err := cat.MustGet("pro")
	require.NoError(t, err)
	assert.Equal(t, "pro", plan.ID)

	_, err = cat.MustGet("ghost")
	assert.ErrorIs(t, err, catalog.ErrPlanNotFound)
}
