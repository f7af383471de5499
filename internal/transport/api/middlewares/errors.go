package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

func statusErrorText(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad request"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusPaymentRequired:
		return "payment required"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not found"
	case http.StatusUnprocessableEntity:
		return "unprocessable entity"
	case http.StatusConflict:
		return "conflict"
	case http.StatusTooManyRequests:
		return "too many requests"
	default:
		return "internal server error"
	}
}

// wantsJSON клиент ожидает json: об этом говорит Accept или Content-Type запроса.
func wantsJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "application/json") ||
		strings.Contains(c.GetHeader("Content-Type"), "application/json")
}

// Errors отдает клиенту первую ошибку из контекста gin. Текст публичных ошибок (gin.ErrorTypePublic) отдается
// как есть, для остальных отдается текст статуса. В json ответ добавляется id запроса, если он есть.
func Errors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		// обрабатываем только первую ошибку
		firstErr := c.Errors[0]
		status := c.Writer.Status()
		msg := statusErrorText(status)
		if firstErr.IsType(gin.ErrorTypePublic) {
			msg = firstErr.Error()
		}

		if !wantsJSON(c) {
			c.String(status, msg)
			c.Abort()
			return
		}

		body := gin.H{"error": msg}
		if requestID := c.GetString(RequestIDKey); requestID != "" {
			body["requestId"] = requestID
		}
		c.JSON(status, body)
		c.Abort()
	}
}
