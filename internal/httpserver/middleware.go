package httpserver

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const userIDKey = "userID"

// authRequired validates the Bearer token and stashes the owner id in the
// gin context for downstream handlers.
func authRequired(svc AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		claims, err := svc.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		c.Set(userIDKey, claims.UserID)
		c.Next()
	}
}

func ownerID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// rateLimit applies a fixed-window per-IP counter. Counter store errors
// admit the request: throttling is best-effort, auth must stay reachable.
func rateLimit(limiter RateLimiter, limit int, window time.Duration, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || limit <= 0 || window <= 0 {
			c.Next()
			return
		}
		key := fmt.Sprintf("rl:auth:%s", c.ClientIP())
		count, err := limiter.IncrWithTTL(c.Request.Context(), key, window)
		if err != nil {
			logger.Printf("rate limit store error: %v", err)
			c.Next()
			return
		}
		if count > int64(limit) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests, try again later"})
			return
		}
		c.Next()
	}
}
