package client

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestSlidingWindowThrottle(t *testing.T) {
	t.Run("allows requests under the limit", func(t *testing.T) {
		throttle := NewSlidingWindowThrottle(10, time.Minute)
		ctx := context.Background()

		for i := 0; i < 10; i++ {
			if err := throttle.Acquire(ctx); err != nil {
				t.Errorf("Acquire() error = %v, want nil", err)
			}
		}

		if throttle.GetWindowCount() != 10 {
			t.Errorf("GetWindowCount() = %d, want 10", throttle.GetWindowCount())
		}
	})

	t.Run("GetRemaining returns correct value", func(t *testing.T) {
		throttle := NewSlidingWindowThrottle(10, time.Minute)
		ctx := context.Background()

		if throttle.GetRemaining() != 10 {
			t.Errorf("GetRemaining() = %d, want 10", throttle.GetRemaining())
		}

		for i := 0; i < 5; i++ {
			throttle.Acquire(ctx)
		}

		if throttle.GetRemaining() != 5 {
			t.Errorf("GetRemaining() = %d, want 5", throttle.GetRemaining())
		}
	})

	t.Run("Reset clears the window", func(t *testing.T) {
		throttle := NewSlidingWindowThrottle(10, time.Minute)
		ctx := context.Background()

		for i := 0; i < 5; i++ {
			throttle.Acquire(ctx)
		}
		throttle.Reset()

		if throttle.GetWindowCount() != 0 {
			t.Errorf("GetWindowCount() after Reset() = %d, want 0", throttle.GetWindowCount())
		}
	})

	t.Run("defaults for invalid values", func(t *testing.T) {
		tests := []struct {
			limit  int
			window time.Duration
		}{
			{0, 0},
			{-5, -time.Second},
		}
		for _, tt := range tests {
			throttle := NewSlidingWindowThrottle(tt.limit, tt.window)
			if throttle.limit != 100 || throttle.window != time.Minute {
				t.Errorf("NewSlidingWindowThrottle(%d, %v) = %d/%v, want 100/1m",
					tt.limit, tt.window, throttle.limit, throttle.window)
			}
		}
	})

	t.Run("window expiry frees slots", func(t *testing.T) {
		throttle := NewSlidingWindowThrottle(1, 20*time.Millisecond)
		ctx := context.Background()

		throttle.Acquire(ctx)
		start := time.Now()
		if err := throttle.Acquire(ctx); err != nil {
			t.Fatalf("Acquire() error = %v", err)
		}
		if elapsed := time.Since(start); elapsed < 10*time.Millisecond {
			t.Errorf("second Acquire() returned after %v, want it to wait for the window", elapsed)
		}
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		throttle := NewSlidingWindowThrottle(1, time.Minute)
		throttle.Acquire(context.Background())

		cancelCtx, cancel := context.WithCancel(context.Background())
		cancel()

		err := throttle.Acquire(cancelCtx)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Acquire() error = %v, want context.Canceled", err)
		}
	})

	t.Run("is thread-safe", func(t *testing.T) {
		throttle := NewSlidingWindowThrottle(100, time.Minute)
		ctx := context.Background()

		var wg sync.WaitGroup
		errs := make(chan error, 50)

		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := throttle.Acquire(ctx); err != nil {
					errs <- err
				}
			}()
		}

		wg.Wait()
		close(errs)

		for err := range errs {
			t.Errorf("Concurrent Acquire() error = %v", err)
		}
		if count := throttle.GetWindowCount(); count != 50 {
			t.Errorf("GetWindowCount() = %d, want 50", count)
		}
	})
}

func TestSlidingWindowThrottleBlocking(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping blocking test in short mode")
	}

	throttle := NewSlidingWindowThrottle(2, time.Minute)
	ctx := context.Background()
	throttle.Acquire(ctx)
	throttle.Acquire(ctx)

	timeoutCtx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := throttle.Acquire(timeoutCtx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Acquire() error = %v, want context.DeadlineExceeded", err)
	}
}

func TestTokenBucketThrottle(t *testing.T) {
	t.Run("burst is available immediately", func(t *testing.T) {
		throttle := NewTokenBucketThrottle(1, 5)
		ctx := context.Background()

		for i := 0; i < 5; i++ {
			if err := throttle.Acquire(ctx); err != nil {
				t.Fatalf("Acquire() error = %v", err)
			}
		}
		if got := throttle.GetRemaining(); got != 0 {
			t.Errorf("GetRemaining() = %d, want 0", got)
		}
		if got := throttle.GetWindowCount(); got != 5 {
			t.Errorf("GetWindowCount() = %d, want 5", got)
		}
	})

	t.Run("blocks past the burst", func(t *testing.T) {
		throttle := NewTokenBucketThrottle(0.1, 1)
		throttle.Acquire(context.Background())

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		if err := throttle.Acquire(ctx); err == nil {
			t.Error("Acquire() error = nil, want wait to exceed deadline")
		}
	})

	t.Run("Reset refills the bucket", func(t *testing.T) {
		throttle := NewTokenBucketThrottle(0.1, 3)
		ctx := context.Background()
		for i := 0; i < 3; i++ {
			throttle.Acquire(ctx)
		}
		throttle.Reset()
		if got := throttle.GetRemaining(); got != 3 {
			t.Errorf("GetRemaining() after Reset() = %d, want 3", got)
		}
	})

	t.Run("non-positive rate is unlimited", func(t *testing.T) {
		throttle := NewTokenBucketThrottle(0, 2)
		ctx := context.Background()
		for i := 0; i < 100; i++ {
			if err := throttle.Acquire(ctx); err != nil {
				t.Fatalf("Acquire() error = %v", err)
			}
		}
		if got := throttle.GetRemaining(); got != 2 {
			t.Errorf("GetRemaining() = %d, want 2", got)
		}
	})
}

func TestNoOpThrottle(t *testing.T) {
	throttle := NewNoOpThrottle()
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		if err := throttle.Acquire(ctx); err != nil {
			t.Errorf("Acquire() error = %v, want nil", err)
		}
	}
	if throttle.GetWindowCount() != 0 {
		t.Errorf("GetWindowCount() = %d, want 0", throttle.GetWindowCount())
	}
	if throttle.GetRemaining() != 1000000 {
		t.Errorf("GetRemaining() = %d, want 1000000", throttle.GetRemaining())
	}
	throttle.Reset()
}

func TestThrottleInterface(t *testing.T) {
	var _ Throttle = (*SlidingWindowThrottle)(nil)
	var _ Throttle = (*TokenBucketThrottle)(nil)
	var _ Throttle = (*NoOpThrottle)(nil)
}
