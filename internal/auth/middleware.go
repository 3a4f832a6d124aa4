package auth

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Middleware returns a gin handler that rejects requests without a valid
// bearer token and stores the verified identity on the request context for
// downstream handlers.
func (v *Verifier) Middleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		id, err := v.Verify(token)
		if err != nil {
			logger.Debug("rejected session token", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), id))
		c.Next()
	}
}
