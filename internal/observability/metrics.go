package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes Prometheus instrumentation for the service.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errorsTotal     *prometheus.CounterVec
	sweptTickets    prometheus.Counter
	analyticsHits   prometheus.Counter
	analyticsMisses prometheus.Counter
}

// NewMetrics registers all collectors on a private registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "helpdesk_http_requests_total",
			Help: "Count of HTTP requests by path, method and status.",
		}, []string{"path", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "helpdesk_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"path", "method"}),
		errorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "helpdesk_http_errors_total",
			Help: "Count of failed HTTP requests by error code.",
		}, []string{"path", "method", "code"}),
		sweptTickets: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "helpdesk_sweeper_closed_tickets_total",
			Help: "Tickets closed by the idle-resolution sweeper.",
		}),
		analyticsHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "helpdesk_analytics_cache_hits_total",
			Help: "Analytics report cache hits.",
		}),
		analyticsMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "helpdesk_analytics_cache_misses_total",
			Help: "Analytics report cache misses.",
		}),
	}
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestsTotal,
		m.requestDuration,
		m.errorsTotal,
		m.sweptTickets,
		m.analyticsHits,
		m.analyticsMisses,
	)
	return m
}

// Handler serves the /metrics scrape endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRequest observes a completed HTTP request.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError counts a request rejected with the given error code.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errorsTotal.WithLabelValues(path, method, code).Inc()
}

// RecordSweep counts tickets closed by one sweeper run.
func (m *Metrics) RecordSweep(closed int64) {
	if m == nil || closed <= 0 {
		return
	}
	m.sweptTickets.Add(float64(closed))
}

// RecordAnalyticsCache tracks report cache effectiveness.
func (m *Metrics) RecordAnalyticsCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.analyticsHits.Inc()
		return
	}
	m.analyticsMisses.Inc()
}
