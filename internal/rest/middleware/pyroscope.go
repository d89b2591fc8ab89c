package middleware

import (
	"context"

	"github.com/flexprice/recurring/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/grafana/pyroscope-go"
)

// PyroscopeMiddleware labels profiling samples taken while serving a request with its route.
// Path parameters are left out so account ids never become label values.
func PyroscopeMiddleware(cfg *config.Configuration) gin.HandlerFunc {
	if !cfg.Pyroscope.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		pyroscope.TagWrapper(c.Request.Context(), pyroscope.Labels(
			"method", c.Request.Method,
			"endpoint", route,
		), func(_ context.Context) {
			c.Next()
		})
	}
}
