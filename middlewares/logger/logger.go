package logger

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joy095/venue/logger"
	"github.com/sirupsen/logrus"
)

// GinLogger logs one structured line per request.
func GinLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		fields := logrus.Fields{
			"status":    c.Writer.Status(),
			"method":    c.Request.Method,
			"path":      path,
			"latency":   time.Since(start).String(),
			"client_ip": c.ClientIP(),
		}
		if actor, ok := c.Get("actor_id"); ok {
			fields["actor_id"] = actor
		}

		switch {
		case c.Writer.Status() >= 500:
			logger.ErrorLogger.WithFields(fields).Error(c.Errors.ByType(gin.ErrorTypePrivate).String())
		case c.Writer.Status() >= 400:
			logger.WarnLogger.WithFields(fields).Warn("request completed with client error")
		default:
			logger.InfoLogger.WithFields(fields).Info("request completed")
		}
	}
}
