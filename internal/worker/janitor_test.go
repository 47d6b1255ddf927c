package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/geosearch-service/internal/cache"
	"github.com/geosearch-service/internal/domain"
)

func lockedClock(start time.Time) (func() time.Time, func(time.Duration)) {
	var mu sync.Mutex
	current := start
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return current
	}
	advance := func(d time.Duration) {
		mu.Lock()
		current = current.Add(d)
		mu.Unlock()
	}
	return clock, advance
}

func TestCacheJanitor(t *testing.T) {
	logger := zap.NewNop()

	t.Run("removes expired entries on schedule", func(t *testing.T) {
		clock, advance := lockedClock(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
		searchCache := cache.NewSearchCache(10, time.Minute, logger, cache.WithClock(clock))

		params := domain.NewSearchParams(40.7128, -74.0060, 1000, "")
		searchCache.Set(params, []domain.Place{{ID: "a"}})
		require.Equal(t, 1, searchCache.Len())

		janitor := NewCacheJanitor(searchCache, 10*time.Millisecond, logger)
		go janitor.Start(context.Background())
		defer janitor.Stop()

		advance(2 * time.Minute)

		require.Eventually(t, func() bool {
			return searchCache.Len() == 0
		}, time.Second, 5*time.Millisecond)
	})

	t.Run("stop is idempotent", func(t *testing.T) {
		searchCache := cache.NewSearchCache(10, time.Minute, logger)
		janitor := NewCacheJanitor(searchCache, 10*time.Millisecond, logger)

		done := make(chan error, 1)
		go func() { done <- janitor.Start(context.Background()) }()

		require.NoError(t, janitor.Stop())
		require.NoError(t, janitor.Stop())

		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("janitor did not stop")
		}
	})

	t.Run("context cancellation stops the loop", func(t *testing.T) {
		searchCache := cache.NewSearchCache(10, time.Minute, logger)
		janitor := NewCacheJanitor(searchCache, 10*time.Millisecond, logger)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- janitor.Start(ctx) }()

		cancel()

		select {
		case err := <-done:
			assert.ErrorIs(t, err, context.Canceled)
		case <-time.After(time.Second):
			t.Fatal("janitor did not stop on context cancellation")
		}
	})
}

func TestManager(t *testing.T) {
	logger := zap.NewNop()

	t.Run("start without workers fails", func(t *testing.T) {
		m := NewManager(logger)
		assert.Error(t, m.Start(context.Background()))
	})

	t.Run("starts and stops registered workers", func(t *testing.T) {
		m := NewManager(logger)
		searchCache := cache.NewSearchCache(10, time.Minute, logger)
		m.Register(NewCacheJanitor(searchCache, 10*time.Millisecond, logger))

		require.NoError(t, m.Start(context.Background()))
		assert.NoError(t, m.Stop())
	})
}
