package worker

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter enforces a minimum delay between successive requests to the
// same source. Keys are independent: waiting on one source never blocks
// another. The first wait for a fresh key returns immediately.
type Limiter struct {
	limiters     map[string]*rate.Limiter
	mu           sync.RWMutex
	defaultDelay time.Duration
}

// NewLimiter creates a limiter with the given default per-source delay
func NewLimiter(defaultDelay time.Duration) *Limiter {
	if defaultDelay <= 0 {
		defaultDelay = time.Second
	}

	return &Limiter{
		limiters:     make(map[string]*rate.Limiter),
		defaultDelay: defaultDelay,
	}
}

// Wait blocks until the source key's delay has elapsed since the
// previous wait for that key.
func (l *Limiter) Wait(ctx context.Context, key string) error {
	return l.getLimiter(key).Wait(ctx)
}

// Allow reports whether a request for the key may proceed without waiting
func (l *Limiter) Allow(key string) bool {
	return l.getLimiter(key).Allow()
}

// SetDelay overrides the delay for one source key without affecting
// others. The existing limiter is retuned in place so tokens already
// consumed keep pacing the next request.
func (l *Limiter) SetDelay(key string, delay time.Duration) {
	if delay <= 0 {
		delay = l.defaultDelay
	}
	l.getLimiter(key).SetLimit(rate.Every(delay))
}

func (l *Limiter) getLimiter(key string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[key]
	l.mu.RUnlock()

	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists := l.limiters[key]; exists {
		return limiter
	}

	// Burst 1 means the first wait never blocks and every subsequent
	// wait observes the full delay.
	limiter = rate.NewLimiter(rate.Every(l.defaultDelay), 1)
	l.limiters[key] = limiter

	return limiter
}
