package middleware

import (
	"context"
	"strconv"
	"time"

	aws_pkg "bakery-service/pkg/aws"

	"github.com/gin-gonic/gin"
)

// Metrics records request count, latency and errors per route in CloudWatch.
// Nothing is recorded when the client is disabled.
func Metrics(client *aws_pkg.MetricsClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !client.IsEnabled() {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		duration := time.Since(start)
		status := c.Writer.Status()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		dimensions := map[string]string{
			"Service": "bakery-service",
			"Method":  c.Request.Method,
			"Route":   route,
			"Status":  statusRange(status),
		}

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			_ = client.RecordCount(ctx, aws_pkg.MetricHTTPRequests, dimensions)
			_ = client.RecordLatency(ctx, aws_pkg.MetricHTTPLatency, duration, dimensions)
			if status >= 400 {
				_ = client.RecordCount(ctx, aws_pkg.MetricHTTPErrors, dimensions)
			}
		}()
	}
}

func statusRange(status int) string {
	if status < 100 || status > 599 {
		return "unknown"
	}
	return strconv.Itoa(status/100) + "xx"
}
