package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Paths polled by infrastructure; logging every probe would drown out the
// signup and moderation traffic the logs exist for.
var quietPaths = map[string]struct{}{
	"/metrics":       {},
	"/api/v1/health": {},
}

// RequestLogger records one line per handled request, carrying the
// request_id set by the RequestID middleware. Server errors are raised to
// warning level so rejected signups stay at info while real failures stand
// out.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.Request.URL.Path
		if _, quiet := quietPaths[path]; quiet {
			return
		}

		status := c.Writer.Status()
		entry := GetRequestLogger(c).WithFields(logrus.Fields{
			"status":  status,
			"method":  c.Request.Method,
			"path":    SanitizePath(path),
			"latency": time.Since(start).String(),
			"client":  c.ClientIP(),
		})
		if status >= 500 {
			entry.Warn("handled request")
			return
		}
		entry.Info("handled request")
	}
}
