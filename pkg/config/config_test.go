package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/entitlements/pkg/config"
)

type testConfig struct {
	Addr    string        `env:"TEST_ADDR,required"`
	Cycle   time.Duration `env:"TEST_CYCLE" envDefault:"720h"`
	Workers int           `env:"TEST_WORKERS" envDefault:"8"`
}

// No t.Parallel here: t.Setenv and parallel tests do not mix.

func TestLoad(t *testing.T) {
	t.Run("reads env with defaults", func(t *testing.T) {
		t.Setenv("TEST_ADDR", "localhost:5432")

		var cfg testConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "localhost:5432", cfg.Addr)
		assert.Equal(t, 720*time.Hour, cfg.Cycle)
		assert.Equal(t, 8, cfg.Workers)
	})

	t.Run("overrides defaults", func(t *testing.T) {
		t.Setenv("TEST_ADDR", "db:5432")
		t.Setenv("TEST_CYCLE", "1h")
		t.Setenv("TEST_WORKERS", "2")

		var cfg testConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, time.Hour, cfg.Cycle)
		assert.Equal(t, 2, cfg.Workers)
	})

	t.Run("missing required variable", func(t *testing.T) {
		var cfg testConfig
		err := config.Load(&cfg)
		require.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("nil pointer", func(t *testing.T) {
		err := config.Load[testConfig](nil)
		require.ErrorIs(t, err, config.ErrNilPointer)
	})
}

func TestMustLoad(t *testing.T) {
	t.Run("panics on missing required variable", func(t *testing.T) {
		assert.Panics(t, func() {
			var cfg testConfig
			config.MustLoad(&cfg)
		})
	})

	t.Run("loads valid config", func(t *testing.T) {
		t.Setenv("TEST_ADDR", "localhost:5432")

		var cfg testConfig
		assert.NotPanics(t, func() { config.MustLoad(&cfg) })
		assert.Equal(t, "localhost:5432", cfg.Addr)
	})
}
