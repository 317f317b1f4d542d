// Package metrics defines the Prometheus metrics exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "metadata_repository"

var (
	// Submissions counts intake requests by action (insert, update) and
	// outcome (stored, local, error).
	Submissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "submissions_total",
		Help:      "Metadata submissions by action and outcome.",
	}, []string{"action", "outcome"})

	// PrivacyFindings counts classified dictionary entries by level.
	PrivacyFindings = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "privacy_findings_total",
		Help:      "Dictionary entries classified as PII or SPII.",
	}, []string{"level"})

	// Uploads counts object store writes by kind (datalake, logs) and outcome.
	Uploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "archive_uploads_total",
		Help:      "Object store uploads by kind and outcome.",
	}, []string{"kind", "outcome"})

	// ArchivedBytes counts activity log bytes moved to cold storage.
	ArchivedBytes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "archived_log_bytes_total",
		Help:      "Bytes of activity log uploaded to cold storage.",
	})

	// RequestDuration observes HTTP handler latency.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// Middleware records RequestDuration for every routed request.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		RequestDuration.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
