package httpcore

import (
	"context"
	"sync"
	"time"
)

// RateLimiter enforces a minimum interval between admitted calls. Wait
// holds the limiter's lock across the sleep by design: this serializes
// every caller sharing one limiter instance, trading throughput for a
// simple, provably-correct minimum-interval guarantee (§9 — a
// contention-free token bucket is a deliberate non-goal here).
type RateLimiter struct {
	mu       sync.Mutex
	rate     float64
	interval time.Duration
	last     time.Time
}

// NewRateLimiter returns a limiter admitting at most ratePerSecond calls
// per second.
func NewRateLimiter(ratePerSecond float64) *RateLimiter {
	return &RateLimiter{
		rate:     ratePerSecond,
		interval: intervalFor(ratePerSecond),
		last:     time.Now(),
	}
}

func intervalFor(ratePerSecond float64) time.Duration {
	return time.Duration(1000000/ratePerSecond) * time.Microsecond
}

// Wait blocks until at least one interval has elapsed since the last
// admitted call, then admits this one. It returns early with ctx.Err() if
// ctx is cancelled while waiting.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	elapsed := time.Since(r.last)
	if elapsed < r.interval {
		wait := r.interval - elapsed
		t := time.NewTimer(wait)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	r.last = time.Now()
	return nil
}

// SetRate atomically replaces both the target rate and its derived
// interval.
func (r *RateLimiter) SetRate(ratePerSecond float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rate = ratePerSecond
	r.interval = intervalFor(ratePerSecond)
}

// Rate returns the currently configured rate.
func (r *RateLimiter) Rate() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rate
}
