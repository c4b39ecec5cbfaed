package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter hands out an independent token bucket per key. Each bucket allows
// Attempts events per Window with a burst of Attempts.
type Limiter struct {
	attempts int
	window   time.Duration
	limit    rate.Limit

	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func New(attempts int, window time.Duration) *Limiter {
	if attempts <= 0 {
		attempts = 5
	}
	if window <= 0 {
		window = time.Minute
	}
	return &Limiter{
		attempts: attempts,
		window:   window,
		limit:    rate.Limit(float64(attempts) / window.Seconds()),
		buckets:  make(map[string]*bucket),
		now:      time.Now,
	}
}

// Allow consumes one token for key and reports whether the event may proceed.
func (l *Limiter) Allow(key string) bool {
	now := l.now()
	return l.get(key, now).AllowN(now, 1)
}

// RetryAfter reports how long key must wait before its next attempt is allowed.
func (l *Limiter) RetryAfter(key string) time.Duration {
	now := l.now()
	lim := l.get(key, now)
	r := lim.ReserveN(now, 1)
	if !r.OK() {
		return l.window
	}
	delay := r.DelayFrom(now)
	r.CancelAt(now)
	return delay
}

// Run evicts buckets idle for more than two windows until ctx is done.
func (l *Limiter) Run(ctx context.Context) {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.evict(l.now())
		}
	}
}

func (l *Limiter) evict(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) > 2*l.window {
			delete(l.buckets, key)
			removed++
		}
	}
	return removed
}

func (l *Limiter) get(key string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.limit, l.attempts)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	return b.limiter
}

func (l *Limiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
