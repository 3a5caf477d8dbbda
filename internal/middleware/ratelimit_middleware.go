package middleware

import (
	"sync"
	"time"
)

const (
	invalidAuthLimit  = 5
	invalidAuthWindow = time.Minute
	cleanupInterval   = 5 * time.Minute
)

// InvalidAuthRateLimiter throttles repeated failed authentication attempts
// per source IP. Successful requests are never counted.
type InvalidAuthRateLimiter struct {
	mu       sync.Mutex
	attempts map[string]*attemptWindow
}

type attemptWindow struct {
	count   int
	startAt time.Time
}

func NewInvalidAuthRateLimiter() *InvalidAuthRateLimiter {
	rl := &InvalidAuthRateLimiter{
		attempts: make(map[string]*attemptWindow),
	}
	go rl.cleanupLoop()
	return rl
}

// Allow reports whether the IP may make another authentication attempt
// within the current window.
func (r *InvalidAuthRateLimiter) Allow(ip string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	w, ok := r.attempts[ip]
	if !ok || now.Sub(w.startAt) > invalidAuthWindow {
		r.attempts[ip] = &attemptWindow{count: 1, startAt: now}
		return true
	}

	if w.count >= invalidAuthLimit {
		return false
	}
	w.count++
	return true
}

// cleanupLoop drops expired windows so the map does not grow with every
// IP that ever failed auth.
func (r *InvalidAuthRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	for range ticker.C {
		r.mu.Lock()
		now := time.Now()
		for ip, w := range r.attempts {
			if now.Sub(w.startAt) > invalidAuthWindow {
				delete(r.attempts, ip)
			}
		}
		r.mu.Unlock()
	}
}
