// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RevisionsCreated counts revisions committed to the ledger
	RevisionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gosshub_revisions_created_total",
		Help: "Total revisions written",
	})

	// FingerprintConflicts counts inserts rejected by the fingerprint index
	FingerprintConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gosshub_fingerprint_conflicts_total",
		Help: "Total revision inserts rejected because the fingerprint already existed",
	})

	// Notifications counts delivery attempts by result
	Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gosshub_notifications_total",
		Help: "Total watcher notifications by result",
	}, []string{"result"})

	ActivityEntries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gosshub_activity_entries_total",
		Help: "Total activity log entries by visibility",
	}, []string{"visibility"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gosshub_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
	}, []string{"method", "route", "status"})
)

// Middleware observes request latency per matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		requestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the default registry.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
