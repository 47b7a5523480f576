package catalog_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/entitlements/pkg/catalog"
)

func writePlanFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "plans.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestYAMLSource(t *testing.T) {
	t.Parallel()

	t.Run("loads plans from file", func(t *testing.T) {
		t.Parallel()

		path := writePlanFile(t, `
plans:
  - id: free
    name: Free
    is_free: true
    monthly_credits: 100
  - id: pro
    name: Pro
    monthly_credits: 5000
    interval: monthly
    public: true
    price:
      amount: 1500
      currency: USD
`)

		plans, err := catalog.NewYAMLSource(path).Load(context.Background())
		require.NoError(t, err)
		require.Len(t, plans, 2)

		pro := plans["pro"]
		assert.Equal(t, "Pro", pro.Name)
		assert.Equal(t, int64(5000), pro.MonthlyCredits)
		assert.Equal(t, catalog.BillingIntervalMonthly, pro.Interval)
		assert.Equal(t, int64(1500), pro.Price.Amount)
		assert.Equal(t, "USD", pro.Price.Currency)
		assert.True(t, plans["free"].IsFree)
	})

	t.Run("rejects duplicate plan ids", func(t *testing.T) {
		t.Parallel()

		path := writePlanFile(t, `
plans:
  - id: pro
  - id: pro
`)

		_, err := catalog.NewYAMLSource(path).Load(context.Background())
		assert.ErrorIs(t, err, catalog.ErrInvalidPlanConfiguration)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := catalog.NewYAMLSource("/nonexistent/plans.yaml").Load(context.Background())
		assert.ErrorIs(t, err, catalog.ErrFailedToLoadPlans)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		t.Parallel()

		path := writePlanFile(t, "plans: [")
		_, err := catalog.NewYAMLSource(path).Load(context.Background())
		assert.ErrorIs(t, err, catalog.ErrFailedToLoadPlans)
	})

	t.Run("feeds a catalog end to end", func(t *testing.T) {
		t.Parallel()

		path := writePlanFile(t, `
plans:
  - id: free
    is_free: true
    monthly_credits: 50
`)

		cat, err := catalog.New(context.Background(), catalog.NewYAMLSource(path))
		require.NoError(t, err)
		free := cat.FreePlan()
		require.NotNil(t, free)
		assert.Equal(t, int64(50), free.MonthlyCredits)
	})
}
