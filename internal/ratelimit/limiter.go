// Package ratelimit bounds registration/authentication attempts per
// identifying key (client address, email) over a configurable window.
package ratelimit

import (
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Decision is the outcome of an admission check. When Allowed is false,
// RetryAfter holds the time until the next attempt would be admitted.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// RetryAfterSeconds returns RetryAfter rounded up to whole seconds,
// suitable for a retry_after response field. Always at least 1 for a
// denied decision.
func (d Decision) RetryAfterSeconds() int {
	if d.Allowed {
		return 0
	}
	secs := int(math.Ceil(d.RetryAfter.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return secs
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter tracks attempts per key with a token bucket sized to admit at
// most `attempts` within `window`. Buckets are created lazily on first
// admission and swept after going idle. Each bucket's limiter is
// internally synchronized, so concurrent admissions for the same key
// cannot both take the last slot.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket

	limit  rate.Limit
	burst  int
	window time.Duration
}

// New creates a Limiter admitting at most attempts per window per key and
// starts the idle-bucket sweeper.
func New(attempts int, window time.Duration) *Limiter {
	l := newLimiter(attempts, window)
	go l.sweepLoop()
	return l
}

func newLimiter(attempts int, window time.Duration) *Limiter {
	if attempts < 1 {
		attempts = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &Limiter{
		buckets: make(map[string]*bucket),
		limit:   rate.Limit(float64(attempts) / window.Seconds()),
		burst:   attempts,
		window:  window,
	}
}

// Admit records an attempt for key and decides whether it may proceed.
// The first attempt for a key is always admitted. A denied attempt
// consumes nothing, so callers can retry after Decision.RetryAfter.
func (l *Limiter) Admit(key string) Decision {
	res := l.getBucket(key).Reserve()
	delay := res.Delay()
	if delay > 0 {
		res.Cancel()
		if delay > l.window {
			delay = l.window
		}
		return Decision{Allowed: false, RetryAfter: delay}
	}
	return Decision{Allowed: true}
}

// Window returns the configured rate-limit window.
func (l *Limiter) Window() time.Duration { return l.window }

func (l *Limiter) getBucket(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, exists := l.buckets[key]
	if !exists {
		b = &bucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = time.Now()
	return b.limiter
}

func (l *Limiter) sweepLoop() {
	for {
		time.Sleep(10 * time.Minute)
		l.removeStale(10 * time.Minute)
	}
}

// removeStale drops buckets not seen within maxIdle. A dropped bucket
// simply refills on its next attempt, which only relaxes the limit.
func (l *Limiter) removeStale(maxIdle time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, b := range l.buckets {
		if time.Since(b.lastSeen) > maxIdle {
			delete(l.buckets, key)
		}
	}
}
