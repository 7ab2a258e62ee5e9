package llm

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter(t *testing.T) {
	t.Run("burst then refill", func(t *testing.T) {
		rl := newRateLimiter(10)
		defer rl.Close()
		ctx := context.Background()

		// The full burst is available immediately.
		for i := 0; i < 10; i++ {
			require.NoError(t, rl.wait(ctx))
		}

		// The next acquisition has to wait for the refill tick.
		start := time.Now()
		done := make(chan bool)
		go func() {
			assert.NoError(t, rl.wait(ctx))
			done <- true
		}()

		select {
		case <-done:
			elapsed := time.Since(start)
			assert.True(t, elapsed >= 50*time.Millisecond, "expected to wait for refill, but completed too quickly")
		case <-time.After(10 * time.Second):
			t.Fatal("rate limiter wait timed out")
		}
	})

	t.Run("context cancellation", func(t *testing.T) {
		rl := newRateLimiter(1)
		defer rl.Close()

		require.NoError(t, rl.wait(context.Background()))

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error)
		go func() {
			done <- rl.wait(ctx)
		}()

		time.Sleep(10 * time.Millisecond)
		cancel()

		err := <-done
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rate limiter canceled")
	})

	t.Run("tryAcquire exhaustion", func(t *testing.T) {
		rl := newRateLimiter(5)
		defer rl.Close()

		for i := 0; i < 5; i++ {
			assert.True(t, rl.tryAcquire(), "expected tryAcquire to succeed for attempt %d", i+1)
		}
		assert.False(t, rl.tryAcquire(), "expected tryAcquire to fail after tokens exhausted")
	})

	t.Run("default rate limit", func(t *testing.T) {
		rl := newRateLimiter(0)
		defer rl.Close()

		// Zero falls back to 60 requests per minute.
		for i := 0; i < 50; i++ {
			require.True(t, rl.tryAcquire())
		}
	})

	t.Run("close stops refill", func(t *testing.T) {
		rl := newRateLimiter(2)
		for i := 0; i < 2; i++ {
			require.True(t, rl.tryAcquire())
		}

		rl.Close()

		// After Close no refill happens, so the bucket stays empty.
		time.Sleep(50 * time.Millisecond)
		assert.False(t, rl.tryAcquire())
	})

	t.Run("concurrent access", func(t *testing.T) {
		rl := newRateLimiter(100)
		defer rl.Close()
		ctx := context.Background()

		var mu sync.Mutex
		acquired := 0
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 10; j++ {
					if err := rl.wait(ctx); err == nil {
						mu.Lock()
						acquired++
						mu.Unlock()
					}
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 100, acquired)
	})
}
