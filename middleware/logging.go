package middleware

import (
	"time"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
)

// AccessLog logs one line per request once the handler returns.
func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(log.Fields{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"bytes":       c.Writer.Size(),
			"duration_ms": time.Since(start).Milliseconds(),
			"client_ip":   c.ClientIP(),
		})
		if enc := c.Writer.Header().Get("Content-Encoding"); enc != "" {
			entry = entry.WithField("content_encoding", enc)
		}

		switch {
		case c.Writer.Status() >= 500:
			entry.Error("http.request")
		case c.Writer.Status() >= 400:
			entry.Warn("http.request")
		default:
			entry.Info("http.request")
		}
	}
}
