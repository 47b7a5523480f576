package async_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/entitlements/pkg/async"
)

func TestAsync(t *testing.T) {
	t.Parallel()

	t.Run("delivers the result", func(t *testing.T) {
		t.Parallel()

		fut := async.Async(context.Background(), 21, func(_ context.Context, n int) (int, error) {
			return n * 2, nil
		})

		got, err := fut.Await()
		require.NoError(t, err)
		assert.Equal(t, 42, got)
	})

	t.Run("delivers the error", func(t *testing.T) {
		t.Parallel()

		wantErr := errors.New("boom")
		fut := async.Async(context.Background(), "x", func(context.Context, string) (string, error) {
			return "", wantErr
		})

		_, err := fut.Await()
		require.ErrorIs(t, err, wantErr)
	})

	t.Run("skips work on a canceled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		ran := false
		fut := async.Async(ctx, 0, func(context.Context, int) (int, error) {
			ran = true
			return 0, nil
		})

		_, err := fut.Await()
		require.ErrorIs(t, err, context.Canceled)
		assert.False(t, ran)
	})

	t.Run("await is safe to call twice", func(t *testing.T) {
		t.Parallel()

		fut := async.Async(context.Background(), 7, func(_ context.Context, n int) (int, error) {
			return n, nil
		})

		first, err := fut.Await()
		require.NoError(t, err)
		second, err := fut.Await()
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}

func TestAwaitWithTimeout(t *testing.T) {
	t.Parallel()

	t.Run("returns before the deadline", func(t *testing.T) {
		t.Parallel()

		fut := async.Async(context.Background(), 1, func(_ context.Context, n int) (int, error) {
			return n, nil
		})

		got, err := fut.AwaitWithTimeout(time.Second)
		require.NoError(t, err)
		assert.Equal(t, 1, got)
	})

	t.Run("times out on slow work", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		fut := async.Async(context.Background(), 0, func(context.Context, int) (int, error) {
			<-release
			return 1, nil
		})

		_, err := fut.AwaitWithTimeout(20 * time.Millisecond)
		require.ErrorIs(t, err, async.ErrTimeout)
		close(release)
	})
}
