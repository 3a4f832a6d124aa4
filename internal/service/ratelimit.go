package service

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"gitlab.com/dirk.krummacker/birthday-assistant/internal/auth"
)

// chatLimiter bounds assistant requests per external identity. Completion
// calls are by far the most expensive operation in the service, so they get
// a limiter of their own while the plain CRUD endpoints stay unthrottled.
type chatLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

func newChatLimiter(perMinute, burst int) *chatLimiter {
	if burst < 1 {
		burst = 1
	}
	return &chatLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(float64(perMinute) / 60.0),
		burst:    burst,
	}
}

func (l *chatLimiter) allow(subject string) bool {
	l.mu.Lock()
	limiter, ok := l.limiters[subject]
	if !ok {
		limiter = rate.NewLimiter(l.rate, l.burst)
		l.limiters[subject] = limiter
	}
	l.mu.Unlock()
	return limiter.Allow()
}

// rateLimitChat is the gin middleware in front of the chat endpoint. It runs
// after the auth middleware, so an identity is always present.
func (s *Server) rateLimitChat() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.limiter == nil {
			c.Next()
			return
		}
		identity, err := auth.IdentityFrom(c.Request.Context())
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		if !s.limiter.allow(identity.Subject) {
			s.logger.Warn("chat rate limit exceeded", "subject", identity.Subject)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			return
		}
		c.Next()
	}
}
