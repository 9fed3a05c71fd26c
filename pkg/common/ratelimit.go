package common

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter wraps a token-bucket limiter for shared use across goroutines.
// Classifier backends are the canonical consumer: every session read loop
// funnels through one limiter so a handful of idle sessions cannot flood the
// backend with classification calls.
type RateLimiter struct {
	limiter *rate.Limiter
	mu      sync.RWMutex
}

// NewRateLimiter creates a RateLimiter allowing rps events per second with
// the given burst allowance.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Wait blocks until the limiter allows an event or the context is canceled.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	return rl.limiter.Wait(ctx)
}
