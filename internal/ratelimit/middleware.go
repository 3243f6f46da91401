package ratelimit

import (
	"adledger-server/internal/observability"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Middleware creates a Gin middleware that throttles requests per client IP
func (s *Service) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := c.ClientIP()

		result, err := s.CheckRateLimit(ctx, key)
		if err != nil {
			s.logger.Error(ctx, "rate limit check failed", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error", "code": "INTERNAL_ERROR"})
			return
		}

		// Add rate limit headers
		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			retryAfter := (result.RetryAfterMs + 999) / 1000
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			s.logger.Warn(ctx, "rate limit exceeded",
				observability.Field{Key: "client_ip", Value: key},
				observability.Field{Key: "path", Value: c.FullPath()},
				observability.Field{Key: "retry_after_ms", Value: result.RetryAfterMs},
			)

			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"code":        "RATE_LIMIT_EXCEEDED",
				"limit":       result.Limit,
				"retry_after": retryAfter,
				"reset_at":    result.ResetAt.Unix(),
			})
			return
		}

		c.Next()
	}
}
