package ginserver

import (
	"net/http"
	"sync"

	gin "github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// writeLimiter throttles mutating requests per operator, falling back to the
// client IP for anonymous callers. Reads are never limited.
type writeLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func newWriteLimiter(perSecond float64, burst int) *writeLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &writeLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(perSecond),
		burst:    burst,
	}
}

func (l *writeLimiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	limiter, ok := l.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[key] = limiter
	}
	return limiter
}

func (l *writeLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}
		key, ok := currentOperator(c)
		if !ok {
			key = "ip:" + c.ClientIP()
		}
		if !l.get(key).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded, try again later"})
			return
		}
		c.Next()
	}
}
