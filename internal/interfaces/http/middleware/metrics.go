package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// HTTPRecorder receives one observation per completed request
type HTTPRecorder interface {
	ObserveHTTPRequest(method, route, status string, d time.Duration)
}

// HTTPMetrics records request counts and latency per route pattern.
// A nil recorder yields a pass-through middleware.
func HTTPMetrics(recorder HTTPRecorder) gin.HandlerFunc {
	if recorder == nil {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		recorder.ObserveHTTPRequest(
			c.Request.Method,
			routePattern(c),
			strconv.Itoa(c.Writer.Status()),
			time.Since(start),
		)
	}
}

// routePattern returns the matched route (e.g. "/api/shipping/:reference")
// so that raw paths do not explode label cardinality.
func routePattern(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unmatched"
}
