// Package metrics owns the Prometheus collectors for the service: HTTP
// traffic plus a few domain counters (app writes, reactions, answers,
// uploads). Every *Metrics has its own registry, so tests can build as
// many as they like without duplicate-registration panics.
//
// All recording methods are safe on a nil *Metrics, which makes
// instrumentation optional for callers such as unit tests.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "wisdom_share"

type Metrics struct {
	registry *prometheus.Registry

	httpInFlight prometheus.Gauge
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	appWrites *prometheus.CounterVec
	reactions *prometheus.CounterVec
	answers   prometheus.Counter
	uploads   *prometheus.CounterVec
}

// New creates the collectors and registers them, along with the Go and
// process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~2s
		}, []string{"method", "route"}),
		appWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "app",
			Name:      "writes_total",
			Help:      "App writes by operation (add, edit, update, delete).",
		}, []string{"op"}),
		reactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "app",
			Name:      "reactions_total",
			Help:      "Thumb and favour toggles by kind and direction.",
		}, []string{"kind", "direction"}),
		answers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "app",
			Name:      "answers_total",
			Help:      "User answers recorded.",
		}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "file",
			Name:      "uploads_total",
			Help:      "File uploads by business type.",
		}, []string{"biz"}),
	}

	m.registry.MustRegister(
		m.httpInFlight,
		m.httpRequests,
		m.httpDuration,
		m.appWrites,
		m.reactions,
		m.answers,
		m.uploads,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the exposition format for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request count, latency and in-flight requests. The
// route label is chi's matched pattern, so /api/app/get/vo?id=1 and
// ?id=2 share a series; unmatched requests are labelled "unmatched".
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.httpInFlight.Inc()
		defer m.httpInFlight.Dec()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rec, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}

		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		m.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// AppWrite counts one successful app write. op is add, edit, update or delete.
func (m *Metrics) AppWrite(op string) {
	if m == nil {
		return
	}
	m.appWrites.WithLabelValues(op).Inc()
}

// Reaction counts a thumb or favour toggle. delta is +1 or -1.
func (m *Metrics) Reaction(kind string, delta int) {
	if m == nil {
		return
	}
	direction := "add"
	if delta < 0 {
		direction = "remove"
	}
	m.reactions.WithLabelValues(kind, direction).Inc()
}

func (m *Metrics) Answer() {
	if m == nil {
		return
	}
	m.answers.Inc()
}

func (m *Metrics) Upload(biz string) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(biz).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
