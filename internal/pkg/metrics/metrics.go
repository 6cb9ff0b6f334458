package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geovocab",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "route", "status_class"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "geovocab",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "route"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "geovocab",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "route"})

	// Upstream geovocab API
	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geovocab",
		Subsystem: "upstream",
		Name:      "requests_total",
		Help:      "Calls to the geovocab API by operation and outcome",
	}, []string{"operation", "outcome"})

	UpstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "geovocab",
		Subsystem: "upstream",
		Name:      "request_duration_seconds",
		Help:      "Latency of calls to the geovocab API",
		Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"operation"})

	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "geovocab",
		Subsystem: "http",
		Name:      "rate_limited_total",
		Help:      "Requests rejected by the rate limiter",
	})

	// Sessions
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "geovocab",
		Subsystem: "ws",
		Name:      "active_sessions",
		Help:      "Current number of connected map sessions",
	})

	SessionActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geovocab",
		Subsystem: "session",
		Name:      "actions_total",
		Help:      "User actions received from renderers",
	}, []string{"action"})

	SessionsResumed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "geovocab",
		Subsystem: "session",
		Name:      "resumed_total",
		Help:      "Sessions restored from a saved snapshot",
	})

	// Camera animations
	AnimationsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "geovocab",
		Subsystem: "map",
		Name:      "animations_started_total",
		Help:      "Cinematic camera sequences started",
	})

	AnimationsSuperseded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "geovocab",
		Subsystem: "map",
		Name:      "animations_superseded_total",
		Help:      "Camera sequences cancelled before completing",
	})
)

// Middleware records request metrics per route. Status codes are grouped
// by class; scrapes of /metrics are not counted.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Path() == "/metrics" {
			return c.Next()
		}
		start := time.Now()
		err := c.Next()

		route := c.Route().Path
		if route == "" || route == "/" && c.Path() != "/" {
			route = "unmatched"
		}
		method := c.Method()
		class := strconv.Itoa(c.Response().StatusCode()/100) + "xx"

		httpRequestsTotal.WithLabelValues(method, route, class).Inc()
		httpRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		httpResponseSize.WithLabelValues(method, route).Observe(float64(len(c.Response().Body())))
		return err
	}
}

// Handler serves the default registry in the Prometheus text format.
func Handler() fiber.Handler {
	h := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c *fiber.Ctx) error {
		h(c.Context())
		return nil
	}
}
