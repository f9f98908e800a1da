package auth

import (
	"context"
	"sync"
	"time"
)

// RateLimiter provides rate limiting functionality
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
}

// TokenBucketLimiter implements token bucket rate limiting per key.
// Buckets hold up to burst tokens and refill at rate tokens per second.
type TokenBucketLimiter struct {
	mu         sync.Mutex
	buckets    map[string]*bucket
	burst      float64
	rate       float64
	idleExpiry time.Duration
	now        func() time.Time
}

type bucket struct {
	tokens   float64
	lastSeen time.Time
}

// NewTokenBucketLimiter creates a new token bucket rate limiter. Idle
// buckets are swept until ctx is cancelled.
func NewTokenBucketLimiter(ctx context.Context, ratePerSecond, burst int) *TokenBucketLimiter {
	limiter := &TokenBucketLimiter{
		buckets:    make(map[string]*bucket),
		burst:      float64(burst),
		rate:       float64(ratePerSecond),
		idleExpiry: 10 * time.Minute,
		now:        time.Now,
	}

	go limiter.cleanup(ctx)

	return limiter
}

// Allow checks if a request is allowed and consumes a token if so
func (l *TokenBucketLimiter) Allow(ctx context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, exists := l.buckets[key]
	if !exists {
		b = &bucket{tokens: l.burst, lastSeen: now}
		l.buckets[key] = b
	}

	elapsed := now.Sub(b.lastSeen).Seconds()
	if elapsed > 0 {
		b.tokens += elapsed * l.rate
		if b.tokens > l.burst {
			b.tokens = l.burst
		}
	}
	b.lastSeen = now

	if b.tokens >= 1 {
		b.tokens--
		return true, nil
	}
	return false, nil
}

// Reset resets the rate limit for a key
func (l *TokenBucketLimiter) Reset(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.buckets, key)
	return nil
}

// cleanup removes idle buckets periodically
func (l *TokenBucketLimiter) cleanup(ctx context.Context) {
	ticker := time.NewTicker(l.idleExpiry / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.mu.Lock()
			now := l.now()
			for key, b := range l.buckets {
				if now.Sub(b.lastSeen) > l.idleExpiry {
					delete(l.buckets, key)
				}
			}
			l.mu.Unlock()
		}
	}
}
