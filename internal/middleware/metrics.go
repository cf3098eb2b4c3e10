package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gradebook-api/internal/service"
)

const unmatchedRoute = "unmatched"

// Metrics records every request by method, route template and status.
// Requests to the given routes (typically /metrics and the probes) are not
// recorded.
func Metrics(metrics *service.MetricsService, skip ...string) gin.HandlerFunc {
	ignored := make(map[string]struct{}, len(skip))
	for _, route := range skip {
		ignored[route] = struct{}{}
	}
	return func(c *gin.Context) {
		if metrics == nil {
			c.Next()
			return
		}
		started := time.Now()
		c.Next()

		route := c.FullPath()
		if _, ok := ignored[route]; ok {
			return
		}
		if route == "" {
			route = unmatchedRoute
		}
		metrics.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(started))
	}
}
