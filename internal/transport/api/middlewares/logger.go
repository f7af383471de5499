package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	RequestIDHeader = "X-Request-ID"
	RequestIDKey    = "requestID"
)

// Logger пишет в лог каждый запрос. Присваивает запросу id (или берет из заголовка X-Request-ID) и
// возвращает его в ответе.
func Logger(l *logrus.Logger) gin.HandlerFunc {
	entry := l.WithField("component", "http")
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(RequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()

		fields := logrus.Fields{
			"requestID": requestID,
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    c.Writer.Status(),
			"latency":   time.Since(start).String(),
			"clientIP":  c.ClientIP(),
		}
		if userID := CurrentUserID(c); userID != 0 {
			fields["userID"] = userID
		}

		reqEntry := entry.WithFields(fields)
		if len(c.Errors) > 0 {
			reqEntry = reqEntry.WithField("errors", c.Errors.String())
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			reqEntry.Error("request failed")
		case status >= 400:
			reqEntry.Warn("request rejected")
		default:
			reqEntry.Info("request handled")
		}
	}
}
