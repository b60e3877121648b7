// Package metrics provides Prometheus metrics of the client companion
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector collects client metrics and registers them on a Prometheus registry
type Collector struct {
	sessionChecks    *prometheus.CounterVec
	backendRequests  *prometheus.CounterVec
	backendLatency   *prometheus.HistogramVec
	chapterCompleted prometheus.Counter
	autoplayAdvances prometheus.Counter
}

// NewCollector creates a new Collector and registers its metrics on reg
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		sessionChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "learnsphere_session_checks_total",
			Help: "Number of session checks against the backend by result",
		}, []string{"result"}),
		backendRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "learnsphere_backend_requests_total",
			Help: "Number of backend requests by endpoint and status code",
		}, []string{"endpoint", "status_code"}),
		backendLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "learnsphere_backend_request_duration_seconds",
			Help:    "Latency of backend requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		chapterCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "learnsphere_chapters_completed_total",
			Help: "Number of chapters that played to the end",
		}),
		autoplayAdvances: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "learnsphere_autoplay_advances_total",
			Help: "Number of automatic advances to the next chapter",
		}),
	}

	reg.MustRegister(
		c.sessionChecks,
		c.backendRequests,
		c.backendLatency,
		c.chapterCompleted,
		c.autoplayAdvances,
	)

	return c
}

// RecordSessionCheck records the result of a session check
func (c *Collector) RecordSessionCheck(authenticated bool) {
	result := "unauthenticated"
	if authenticated {
		result = "authenticated"
	}
	c.sessionChecks.WithLabelValues(result).Inc()
}

// RecordBackendRequest records a finished backend request.
// statusCode is 0 when the request failed before a response arrived.
func (c *Collector) RecordBackendRequest(endpoint string, statusCode int, duration time.Duration) {
	c.backendRequests.WithLabelValues(endpoint, strconv.Itoa(statusCode)).Inc()
	c.backendLatency.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordChapterCompleted records a completed chapter and whether playback advanced
func (c *Collector) RecordChapterCompleted(advanced bool) {
	c.chapterCompleted.Inc()
	if advanced {
		c.autoplayAdvances.Inc()
	}
}

// Handler returns the HTTP handler serving the metrics of gatherer
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
