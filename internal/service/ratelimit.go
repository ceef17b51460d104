package service

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// TokenBucket is an in-memory per-key rate limiter. It is safe for
// concurrent use. Stale keys are dropped by a background sweep until Close.
type TokenBucket struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	rate     rate.Limit
	burst    int

	done chan struct{}
	once sync.Once
}

type limiterEntry struct {
	limiter *rate.Limiter
	last    time.Time
}

const (
	sweepInterval = 5 * time.Minute
	staleAfter    = 10 * time.Minute
)

// NewTokenBucket creates a limiter allowing bursts of capacity per key,
// refilled at rps tokens per second.
func NewTokenBucket(rps, capacity float64) *TokenBucket {
	tb := &TokenBucket{
		limiters: make(map[string]*limiterEntry),
		rate:     rate.Limit(rps),
		burst:    int(capacity),
		done:     make(chan struct{}),
	}
	go tb.cleanup()
	return tb
}

// Allow reports whether key may proceed, consuming one token if so.
func (tb *TokenBucket) Allow(key string) bool {
	tb.mu.Lock()
	e, ok := tb.limiters[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(tb.rate, tb.burst)}
		tb.limiters[key] = e
	}
	e.last = time.Now()
	tb.mu.Unlock()

	return e.limiter.Allow()
}

// Len returns the number of tracked keys.
func (tb *TokenBucket) Len() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return len(tb.limiters)
}

// Close stops the background sweep.
func (tb *TokenBucket) Close() {
	tb.once.Do(func() { close(tb.done) })
}

func (tb *TokenBucket) cleanup() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-tb.done:
			return
		case <-ticker.C:
			tb.sweep(time.Now().Add(-staleAfter))
		}
	}
}

func (tb *TokenBucket) sweep(cutoff time.Time) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	for key, e := range tb.limiters {
		if e.last.Before(cutoff) {
			delete(tb.limiters, key)
		}
	}
}
