package auth

import (
	"sync"
	"time"
)

// RateLimiter is a fixed-window counter keyed by client IP, used to slow
// down password guessing on the login route. State is process-local,
// which matches a single-gateway deployment.
type RateLimiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	buckets map[string]*bucket
	now     func() time.Time // overridable in tests
}

type bucket struct {
	count      int
	windowEnds time.Time
}

func NewRateLimiter(max int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		max:     max,
		window:  window,
		buckets: map[string]*bucket{},
		now:     time.Now,
	}
}

// Allow records one attempt for key and reports whether it is within budget.
func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	b, ok := l.buckets[key]
	if !ok || now.After(b.windowEnds) {
		l.buckets[key] = &bucket{count: 1, windowEnds: now.Add(l.window)}
		l.gc(now)
		return true
	}
	b.count++
	return b.count <= l.max
}

// Reset clears the counter for key, called after a successful login.
func (l *RateLimiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.buckets, key)
}

// gc drops expired buckets; called with the lock held.
func (l *RateLimiter) gc(now time.Time) {
	if len(l.buckets) < 1024 {
		return
	}
	for k, b := range l.buckets {
		if now.After(b.windowEnds) {
			delete(l.buckets, k)
		}
	}
}
