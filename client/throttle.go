package client

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Throttle is the interface for rate limiting strategies.
type Throttle interface {
	// Acquire blocks until a request slot is available.
	Acquire(ctx context.Context) error
	// GetWindowCount returns the number of requests in the current window.
	GetWindowCount() int
	// GetRemaining returns remaining requests available in the current window.
	GetRemaining() int
	// Reset clears the throttle state.
	Reset()
}

// SlidingWindowThrottle allows at most n requests in any trailing window.
//
// Alert Center quotas are per minute, so the default is 100 requests per
// 60 seconds. Each batch HTTP request counts as one slot.
type SlidingWindowThrottle struct {
	mu         sync.Mutex
	limit      int
	window     time.Duration
	timestamps []time.Time
}

// NewSlidingWindowThrottle creates a new sliding window throttle.
// Non-positive arguments select the defaults (100 requests, one minute).
func NewSlidingWindowThrottle(limit int, window time.Duration) *SlidingWindowThrottle {
	if limit <= 0 {
		limit = 100
	}
	if window <= 0 {
		window = time.Minute
	}
	return &SlidingWindowThrottle{
		limit:      limit,
		window:     window,
		timestamps: make([]time.Time, 0, limit),
	}
}

// Acquire waits until a request slot is available.
func (t *SlidingWindowThrottle) Acquire(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		t.mu.Lock()
		now := time.Now()
		t.prune(now)

		if len(t.timestamps) < t.limit {
			t.timestamps = append(t.timestamps, now)
			t.mu.Unlock()
			return nil
		}

		// Wait until the oldest request leaves the window
		waitTime := t.timestamps[0].Add(t.window).Sub(now)
		t.mu.Unlock()

		if waitTime <= 0 {
			continue
		}

		timer := time.NewTimer(waitTime)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// prune drops timestamps outside the window. Caller holds t.mu.
func (t *SlidingWindowThrottle) prune(now time.Time) {
	windowStart := now.Add(-t.window)
	kept := t.timestamps[:0]
	for _, ts := range t.timestamps {
		if ts.After(windowStart) {
			kept = append(kept, ts)
		}
	}
	t.timestamps = kept
}

// GetWindowCount returns the number of requests in the current window.
func (t *SlidingWindowThrottle) GetWindowCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.prune(time.Now())
	return len(t.timestamps)
}

// GetRemaining returns remaining requests available in the current window.
func (t *SlidingWindowThrottle) GetRemaining() int {
	return max(0, t.limit-t.GetWindowCount())
}

// Reset clears the throttle state.
func (t *SlidingWindowThrottle) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.timestamps = t.timestamps[:0]
}

// TokenBucketThrottle smooths requests to a steady rate with bursts.
type TokenBucketThrottle struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	burst   int
	limit   rate.Limit
}

// NewTokenBucketThrottle allows perSecond requests per second with bursts of burst.
func NewTokenBucketThrottle(perSecond float64, burst int) *TokenBucketThrottle {
	if burst <= 0 {
		burst = 1
	}
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	return &TokenBucketThrottle{
		limiter: rate.NewLimiter(limit, burst),
		burst:   burst,
		limit:   limit,
	}
}

func (t *TokenBucketThrottle) current() *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.limiter
}

// Acquire waits for a token.
func (t *TokenBucketThrottle) Acquire(ctx context.Context) error {
	return t.current().Wait(ctx)
}

// GetWindowCount returns the number of tokens spent from the bucket.
func (t *TokenBucketThrottle) GetWindowCount() int {
	return t.burst - t.GetRemaining()
}

// GetRemaining returns the whole tokens currently available.
func (t *TokenBucketThrottle) GetRemaining() int {
	if t.limit == rate.Inf {
		return t.burst
	}
	return max(0, int(t.current().Tokens()))
}

// Reset refills the bucket.
func (t *TokenBucketThrottle) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.limiter = rate.NewLimiter(t.limit, t.burst)
}

// NoOpThrottle is a throttle that does nothing (for when throttling is disabled).
type NoOpThrottle struct{}

// NewNoOpThrottle creates a no-op throttle.
func NewNoOpThrottle() *NoOpThrottle {
	return &NoOpThrottle{}
}

// Acquire does nothing and returns immediately.
func (t *NoOpThrottle) Acquire(ctx context.Context) error {
	return nil
}

// GetWindowCount always returns 0.
func (t *NoOpThrottle) GetWindowCount() int {
	return 0
}

// GetRemaining always returns a large number.
func (t *NoOpThrottle) GetRemaining() int {
	return 1000000
}

// Reset does nothing.
func (t *NoOpThrottle) Reset() {}
