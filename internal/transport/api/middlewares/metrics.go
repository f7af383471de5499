package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
)

type RequestObserver interface {
	ObserveRequest(route, method string, status int, duration time.Duration)
}

// Metrics учитывает запросы в observer. Для маршрутов, которых нет в роутере, route = "unmatched",
// чтоб не плодить метки.
func Metrics(observer RequestObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		observer.ObserveRequest(route, c.Request.Method, c.Writer.Status(), time.Since(start))
	}
}
