// Package metrics collects and exposes Prometheus metrics for the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orbit_http_requests_total",
			Help: "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "pattern", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "orbit_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "pattern"}),
	}

	reg.MustRegister(c.requests, c.duration)
	return c
}

// Record counts one finished request.
func (c *Collector) Record(method, pattern string, status int, elapsed time.Duration) {
	c.requests.WithLabelValues(method, pattern, strconv.Itoa(status)).Inc()
	c.duration.WithLabelValues(method, pattern).Observe(elapsed.Seconds())
}

// Handler exposes the registry for scraping.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
