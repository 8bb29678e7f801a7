package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RunsTotal counts validation runs handled by the server.
	RunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_validator_runs_total",
		Help: "Total number of validation runs",
	})

	// IssuesTotal counts reported issues by category.
	IssuesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_validator_issues_total",
		Help: "Total number of validation issues by category",
	}, []string{"category"})

	// RunDuration tracks how long a validation run takes, dominated by
	// image fetches.
	RunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalog_validator_run_duration_seconds",
		Help:    "Validation run duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_validator_http_requests_total",
		Help: "Total HTTP requests by path and status",
	}, []string{"path", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_validator_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"path"})
)

// Metrics records per-request counters and latency.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequests.WithLabelValues(path, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	}
}
