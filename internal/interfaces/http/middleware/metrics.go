// Package middleware provides HTTP middleware for the shopdesk API.
package middleware

import (
	"github.com/gin-gonic/gin"
)

// RequestRecorder starts a measurement for one HTTP request and returns the
// func that completes it
type RequestRecorder interface {
	RequestStarted() func(method, route string, status int)
}

// HTTPMetrics records request counts and latency by route template. The
// route is gin's full path so ids do not explode label cardinality.
func HTTPMetrics(recorder RequestRecorder, skipPaths ...string) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		done := recorder.RequestStarted()
		c.Next()
		done(c.Request.Method, c.FullPath(), c.Writer.Status())
	}
}
