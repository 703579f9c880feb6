package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "onramp_http_requests_total",
		Help: "HTTP requests by route, method and status.",
	}, []string{"app", "route", "method", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "onramp_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"app", "route", "method"})

	rateLimited = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "onramp_rate_limited_total",
		Help: "Requests rejected by a rate limiter.",
	}, []string{"limiter"})
)

// Metrics records request counts and latency labelled by the matched route
// pattern, so path parameters do not explode cardinality.
func Metrics(app string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
		route := c.Route().Path
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(app, route, c.Method(), strconv.Itoa(status)).Inc()
		httpDuration.WithLabelValues(app, route, c.Method()).Observe(time.Since(start).Seconds())
		return err
	}
}
