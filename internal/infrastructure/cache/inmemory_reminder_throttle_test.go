package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryReminderThrottle_Allow(t *testing.T) {
	ctx := context.Background()

	t.Run("first call per key is allowed", func(t *testing.T) {
		throttle := NewInMemoryReminderThrottle()

		ok, err := throttle.Allow(ctx, "overdue:inv-1", time.Hour)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("second call within the window is suppressed", func(t *testing.T) {
		throttle := NewInMemoryReminderThrottle()

		ok, err := throttle.Allow(ctx, "overdue:inv-1", time.Hour)
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = throttle.Allow(ctx, "overdue:inv-1", time.Hour)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("independent keys do not interfere", func(t *testing.T) {
		throttle := NewInMemoryReminderThrottle()

		ok, _ := throttle.Allow(ctx, "overdue:inv-1", time.Hour)
		require.True(t, ok)

		ok, err := throttle.Allow(ctx, "overdue:inv-2", time.Hour)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("allowed again after the window expires", func(t *testing.T) {
		throttle := NewInMemoryReminderThrottle()
		current := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
		throttle.now = func() time.Time { return current }

		ok, _ := throttle.Allow(ctx, "overdue:inv-1", time.Hour)
		require.True(t, ok)

		current = current.Add(30 * time.Minute)
		ok, _ = throttle.Allow(ctx, "overdue:inv-1", time.Hour)
		assert.False(t, ok)

		current = current.Add(31 * time.Minute)
		ok, err := throttle.Allow(ctx, "overdue:inv-1", time.Hour)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("expired entries are swept", func(t *testing.T) {
		throttle := NewInMemoryReminderThrottle()
		current := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
		throttle.now = func() time.Time { return current }

		for _, key := range []string{"a", "b", "c"} {
			_, err := throttle.Allow(ctx, key, time.Minute)
			require.NoError(t, err)
		}

		current = current.Add(2 * time.Minute)
		_, err := throttle.Allow(ctx, "d", time.Minute)
		require.NoError(t, err)

		throttle.mu.Lock()
		defer throttle.mu.Unlock()
		assert.Len(t, throttle.expires, 1)
	})

	t.Run("concurrent callers on one key get exactly one allowance", func(t *testing.T) {
		throttle := NewInMemoryReminderThrottle()

		var wg sync.WaitGroup
		var mu sync.Mutex
		allowed := 0

		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ok, err := throttle.Allow(ctx, "overdue:inv-1", time.Hour)
				assert.NoError(t, err)
				if ok {
					mu.Lock()
					allowed++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, allowed)
	})
}
