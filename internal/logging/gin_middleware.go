package logging

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// GinLogger returns a gin.HandlerFunc middleware that logs requests using our logger.
// Server errors log at ERROR, client errors at WARN and everything else at DEBUG.
func GinLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		status := c.Writer.Status()
		msg := fmt.Sprintf("%s %s - %d %dB (%v) - %s",
			c.Request.Method,
			path,
			status,
			c.Writer.Size(),
			time.Since(start).Round(time.Microsecond),
			c.ClientIP(),
		)
		if len(c.Errors) > 0 {
			msg += " - " + c.Errors.String()
		}

		switch {
		case status >= http.StatusInternalServerError:
			Error("%s", msg)
		case status >= http.StatusBadRequest:
			Warn("%s", msg)
		default:
			Debug("%s", msg)
		}
	}
}

// GinRecovery returns a gin.HandlerFunc middleware that recovers from panics
func GinRecovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				Crit("PANIC recovered on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			}
		}()
		c.Next()
	}
}
