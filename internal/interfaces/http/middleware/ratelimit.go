package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter is an in-memory fixed-window limiter keyed by caller.
// Counters reset when their window elapses; idle keys are reaped in
// the background so the map stays bounded.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	limit   int
	period  time.Duration
}

type window struct {
	count   int
	startAt time.Time
}

// NewRateLimiter allows limit requests per period for each key.
func NewRateLimiter(limit int, period time.Duration) *RateLimiter {
	rl := &RateLimiter{
		windows: make(map[string]*window),
		limit:   limit,
		period:  period,
	}
	go rl.reapIdle()
	return rl
}

func (rl *RateLimiter) reapIdle() {
	ticker := time.NewTicker(rl.period * 2)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-rl.period * 2)
		rl.mu.Lock()
		for key, w := range rl.windows {
			if w.startAt.Before(cutoff) {
				delete(rl.windows, key)
			}
		}
		rl.mu.Unlock()
	}
}

// Allow records a request for key and reports whether it fits in the
// current window.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	w, ok := rl.windows[key]
	if !ok || now.Sub(w.startAt) >= rl.period {
		rl.windows[key] = &window{count: 1, startAt: now}
		return true
	}

	if w.count < rl.limit {
		w.count++
		return true
	}
	return false
}

// Remaining reports how many requests key has left in its window.
func (rl *RateLimiter) Remaining(key string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.windows[key]
	if !ok || time.Since(w.startAt) >= rl.period {
		return rl.limit
	}
	return rl.limit - w.count
}

// RateLimit limits by client IP and advertises the quota in
// X-RateLimit headers.
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()

		if !limiter.Allow(key) {
			rejectRateLimited(c)
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(limiter.Remaining(key)))
		c.Next()
	}
}

// RateLimitByKey limits by a caller-supplied key, e.g. an API key or a
// route name.
func RateLimitByKey(limiter *RateLimiter, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(keyFunc(c)) {
			rejectRateLimited(c)
			return
		}
		c.Next()
	}
}

func rejectRateLimited(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "RATE_LIMIT_EXCEEDED",
			"message": "Too many requests. Please try again later.",
		},
	})
}
