package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all application metrics. Every Record method is safe on a
// nil receiver.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Action metrics
	ActionsTotal    *prometheus.CounterVec
	ActionDuration  *prometheus.HistogramVec
	RejectionsTotal *prometheus.CounterVec
	FallbacksTotal  *prometheus.CounterVec

	// Step metrics
	StepsTotal *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// NewMetrics registers the application metrics on reg. A nil reg uses a
// fresh private registry.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "photoflow"
	}

	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if reg == nil {
		r := prometheus.NewRegistry()
		reg, gatherer = r, r
	} else if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}
	factory := promauto.With(reg)

	return &Metrics{
		// HTTP metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_in_flight",
				Help:      "Current number of HTTP requests being processed",
			},
		),

		// Action metrics
		ActionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "action",
				Name:      "total",
				Help:      "Total number of orchestrated actions",
			},
			[]string{"kind", "strategy", "status"},
		),
		ActionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "action",
				Name:      "duration_seconds",
				Help:      "Action duration in seconds",
				Buckets:   []float64{.1, .5, 1, 2, 5, 10, 30, 60, 120, 300},
			},
			[]string{"kind", "strategy"},
		),
		RejectionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "action",
				Name:      "rejections_total",
				Help:      "Total number of actions rejected before any step ran",
			},
			[]string{"kind", "reason"},
		),
		FallbacksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "action",
				Name:      "fallbacks_total",
				Help:      "Total number of managed executions that fell back to the direct path",
			},
			[]string{"kind", "reason"},
		),

		// Step metrics
		StepsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "step",
				Name:      "total",
				Help:      "Total number of direct-path steps by outcome",
			},
			[]string{"step", "outcome"},
		),

		gatherer: gatherer,
	}
}

// RecordHTTP records one served request
func (m *Metrics) RecordHTTP(method, path, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// RecordAction records a completed action
func (m *Metrics) RecordAction(kind, strategy, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.ActionsTotal.WithLabelValues(kind, strategy, status).Inc()
	m.ActionDuration.WithLabelValues(kind, strategy).Observe(d.Seconds())
}

// RecordRejection records an action rejected before dispatch
func (m *Metrics) RecordRejection(kind, reason string) {
	if m == nil {
		return
	}
	m.RejectionsTotal.WithLabelValues(kind, reason).Inc()
}

// RecordFallback records a switch from the managed to the direct path
func (m *Metrics) RecordFallback(kind, reason string) {
	if m == nil {
		return
	}
	m.FallbacksTotal.WithLabelValues(kind, reason).Inc()
}

// RecordStep records a step outcome on the direct path
func (m *Metrics) RecordStep(step, outcome string) {
	if m == nil {
		return
	}
	m.StepsTotal.WithLabelValues(step, outcome).Inc()
}

// Handler returns the Prometheus HTTP handler for this metrics set
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// HTTPMetricsMiddleware counts requests using the matched route pattern
func (m *Metrics) HTTPMetricsMiddleware(route func(r *http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m == nil {
				next.ServeHTTP(w, r)
				return
			}
			start := time.Now()
			m.HTTPRequestsInFlight.Inc()
			defer m.HTTPRequestsInFlight.Dec()

			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rw, r)

			m.RecordHTTP(r.Method, route(r), strconv.Itoa(rw.statusCode), time.Since(start))
		})
	}
}
