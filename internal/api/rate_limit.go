package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type requestLimiter interface {
	Allow() bool
}

// fixedWindowLimiter admits limit requests per wall-clock minute.
type fixedWindowLimiter struct {
	mu          sync.Mutex
	limit       int
	windowStart time.Time
	count       int
	now         func() time.Time
}

func newFixedWindowLimiter(limit int, now func() time.Time) *fixedWindowLimiter {
	if now == nil {
		now = time.Now
	}

	return &fixedWindowLimiter{
		limit: limit,
		now:   now,
	}
}

func (l *fixedWindowLimiter) Allow() bool {
	currentWindow := l.now().UTC().Truncate(time.Minute)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.windowStart.IsZero() || !l.windowStart.Equal(currentWindow) {
		l.windowStart = currentWindow
		l.count = 0
	}

	if l.count >= l.limit {
		return false
	}

	l.count++
	return true
}

// newAIRateLimiter returns nil, meaning unlimited, for a zero limit.
func newAIRateLimiter(limit int) requestLimiter {
	if limit <= 0 {
		return nil
	}
	return newFixedWindowLimiter(limit, time.Now)
}

func enforceAIRateLimit(c *gin.Context, limiter requestLimiter) bool {
	if limiter == nil || limiter.Allow() {
		return true
	}

	writeError(c, http.StatusTooManyRequests, "ai_rate_limited", "AI request rate limit exceeded")
	return false
}
