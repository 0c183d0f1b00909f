// Package metrics exposes the service's Prometheus instrumentation.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	domevents "mechmarket/internal/domain/events"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry       *prometheus.Registry
	eventsTotal    *prometheus.CounterVec
	requestsTotal  *prometheus.CounterVec
	requestSeconds *prometheus.HistogramVec
	sweepDuration  prometheus.Histogram
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		eventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mechmarket_events_total",
			Help: "Domain events published, by topic.",
		}, []string{"topic"}),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mechmarket_http_requests_total",
			Help: "HTTP requests served, by route and status.",
		}, []string{"method", "route", "status"}),
		requestSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mechmarket_http_request_duration_seconds",
			Help:    "HTTP request latency, by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		sweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "mechmarket_expiration_sweep_duration_seconds",
			Help:    "Duration of expiration sweeps.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	registry.MustRegister(m.eventsTotal, m.requestsTotal, m.requestSeconds, m.sweepDuration)
	return m
}

// EventSubscriber counts every event flowing through the bus by topic.
func (m *Metrics) EventSubscriber() func(domevents.Event) {
	return func(e domevents.Event) {
		m.eventsTotal.WithLabelValues(e.Topic).Inc()
	}
}

// GinMiddleware instruments request counts and latency per route.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestSeconds.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// ObserveSweep records one expiration sweep duration.
func (m *Metrics) ObserveSweep(d time.Duration) {
	m.sweepDuration.Observe(d.Seconds())
}

// Handler serves the scrape endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
