package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Recovery converts panics into 500 responses so a bad scan or a malformed
// moderation request cannot take the process down. The route is always
// recorded; verbose mode adds sanitized headers and the stack trace.
func Recovery(verbose bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logPanic(c, r, verbose)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			}
		}()
		c.Next()
	}
}

func logPanic(c *gin.Context, r interface{}, verbose bool) {
	entry := GetRequestLogger(c).WithFields(logrus.Fields{
		"method": c.Request.Method,
		"path":   SanitizePath(c.Request.URL.Path),
	})
	if !verbose {
		entry.Errorf("PANIC: %v", r)
		return
	}
	entry.WithField("headers", SanitizeHeaders(c.Request.Header)).
		Errorf("PANIC: %v\nStacktrace:\n%s", r, debug.Stack())
}
