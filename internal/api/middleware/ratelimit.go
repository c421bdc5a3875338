package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/teamspace/guardrail/internal/metrics"
	"github.com/teamspace/guardrail/internal/ratelimit"
	"github.com/teamspace/guardrail/internal/services"
)

// RateLimit enforces a fixed window of max requests per identifier for one
// action class. The identifier is the authenticated user's UUID, falling
// back to the client IP for unauthenticated callers. Rejections are logged,
// counted, and forwarded to chat-ops when alerts is non-nil.
func RateLimit(limiter *ratelimit.Limiter, alerts *services.AlertService, action string, max int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		identifier := c.ClientIP()
		var email string
		if user, ok := CurrentUser(c); ok {
			identifier = user.UUID
			email = user.Email
		}

		allowed, retryAfter, count := limiter.Allow(action, identifier, max, window)
		if !allowed {
			wait := ratelimit.FormatWait(retryAfter)
			GetRequestLogger(c).WithFields(map[string]interface{}{
				"action":     action,
				"identifier": identifier,
				"email":      email,
				"ip":         c.ClientIP(),
				"attempts":   count,
				"alert_type": "rate_limit_exceeded",
			}).Warn("rate limit exceeded")
			metrics.IncRateLimitRejection(action)
			if alerts != nil {
				alerts.Send(services.AlertEventRateLimit,
					"rate limit exceeded",
					fmt.Sprintf("action=%s identifier=%s email=%s attempts=%d", action, identifier, email, count))
			}

			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": fmt.Sprintf("Too many requests. Please try again in %s.", wait),
			})
			return
		}

		c.Next()
	}
}
