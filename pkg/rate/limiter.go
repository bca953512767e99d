package rate

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter limits requests based on a provided key.
type Limiter interface {
	// Allow reports whether a request may happen now without waiting.
	Allow(key string) bool

	// Wait blocks until a request may happen or ctx is done.
	Wait(ctx context.Context, key string) error
}

// LimiterCtor allows the creation of a Limiter using a provided rate.
type LimiterCtor func(rate float64) Limiter

type localRateLimiter struct {
	limit rate.Limit
	burst int

	sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewLocalRateLimiter returns an in memory limiter allowing limit requests
// per second per key, with bursts of the same size.
func NewLocalRateLimiter(limit rate.Limit) Limiter {
	return &localRateLimiter{
		limit:    limit,
		burst:    max(1, int(limit)),
		limiters: make(map[string]*rate.Limiter),
	}
}

// NewLimiter returns a local limiter for positive rates and a NoLimiter
// otherwise.
func NewLimiter(requestsPerSecond float64) Limiter {
	if requestsPerSecond <= 0 {
		return &NoLimiter{}
	}
	return NewLocalRateLimiter(rate.Limit(requestsPerSecond))
}

func (l *localRateLimiter) get(key string) *rate.Limiter {
	l.Lock()
	defer l.Unlock()

	limiter, ok := l.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[key] = limiter
	}
	return limiter
}

// Allow implements Limiter.Allow.
func (l *localRateLimiter) Allow(key string) bool {
	return l.get(key).Allow()
}

// Wait implements Limiter.Wait.
func (l *localRateLimiter) Wait(ctx context.Context, key string) error {
	return l.get(key).Wait(ctx)
}

// NoLimiter never limits requests
type NoLimiter struct {
}

// Allow implements Limiter.Allow.
func (n *NoLimiter) Allow(key string) bool {
	return true
}

// Wait implements Limiter.Wait.
func (n *NoLimiter) Wait(ctx context.Context, key string) error {
	return ctx.Err()
}
