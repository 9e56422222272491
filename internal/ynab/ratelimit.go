package ynab

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// rateLimiter is a token bucket sized to the API's hourly request allowance.
type rateLimiter struct {
	stopCh     chan struct{}
	interval   time.Duration
	tokens     int
	capacity   int
	mu         sync.Mutex
	closeOnce  sync.Once
	pollPeriod time.Duration
}

// newRateLimiter creates a limiter allowing requestsPerHour requests.
func newRateLimiter(requestsPerHour int) *rateLimiter {
	if requestsPerHour <= 0 {
		requestsPerHour = DefaultRequestsPerHour
	}

	rl := &rateLimiter{
		tokens:     requestsPerHour,
		capacity:   requestsPerHour,
		interval:   time.Hour / time.Duration(requestsPerHour),
		pollPeriod: 100 * time.Millisecond,
		stopCh:     make(chan struct{}),
	}

	go rl.refill()

	return rl
}

// wait blocks until a token is available or the context is canceled.
func (rl *rateLimiter) wait(ctx context.Context) error {
	ticker := time.NewTicker(rl.pollPeriod)
	defer ticker.Stop()

	for {
		if rl.tryAcquire() {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("rate limiter canceled: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

// tryAcquire attempts to acquire a token without blocking.
func (rl *rateLimiter) tryAcquire() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.tokens > 0 {
		rl.tokens--
		return true
	}
	return false
}

// available returns the number of tokens left.
func (rl *rateLimiter) available() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.tokens
}

// refill adds one token per interval up to capacity.
func (rl *rateLimiter) refill() {
	ticker := time.NewTicker(rl.interval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stopCh:
			return
		case <-ticker.C:
			rl.mu.Lock()
			if rl.tokens < rl.capacity {
				rl.tokens++
			}
			rl.mu.Unlock()
		}
	}
}

// Close stops the refill goroutine.
func (rl *rateLimiter) Close() {
	rl.closeOnce.Do(func() { close(rl.stopCh) })
}
