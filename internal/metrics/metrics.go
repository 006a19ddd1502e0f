// Package metrics exposes Prometheus metrics for the API client, the query
// cache, the flash center and the HTTP servers.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/learninghub/learninghub/internal/flash"
)

const namespace = "learninghub"

var latencyBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// Metrics owns a registry and every collector registered on it.
type Metrics struct {
	reg *prometheus.Registry

	clientRequests *prometheus.CounterVec
	clientDuration *prometheus.HistogramVec
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	cacheHits      *prometheus.CounterVec
	cacheMisses    *prometheus.CounterVec
	superseded     *prometheus.CounterVec
	notifications  *prometheus.CounterVec
}

// New creates a registry with the Go and process collectors plus the
// Learning Hub metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		reg: reg,
		clientRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "client_requests_total",
			Help:      "Requests sent to the Learning Hub API.",
		}, []string{"method", "route", "status"}),
		clientDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "client_request_duration_seconds",
			Help:      "Latency of requests sent to the Learning Hub API.",
			Buckets:   latencyBuckets,
		}, []string{"method", "route"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Requests served.",
		}, []string{"server", "method", "route", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Latency of served requests.",
			Buckets:   latencyBuckets,
		}, []string{"server", "method", "route"}),
		cacheHits: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_cache_hits_total",
			Help:      "Query cache reads answered from a fresh entry.",
		}, []string{"group"}),
		cacheMisses: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_cache_misses_total",
			Help:      "Query cache reads that needed a fetch.",
		}, []string{"group"}),
		superseded: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_fetches_superseded_total",
			Help:      "In-flight fetches cancelled by a newer fetch of the same key.",
		}, []string{"group"}),
		notifications: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flash_notifications_total",
			Help:      "Flash notifications shown.",
		}, []string{"kind"}),
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// ObserveRequest records one outbound API request. Status 0 means the
// request never got a response.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.clientRequests.WithLabelValues(method, route, statusLabel(status)).Inc()
	m.clientDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) CacheHit(group string)        { m.cacheHits.WithLabelValues(group).Inc() }
func (m *Metrics) CacheMiss(group string)       { m.cacheMisses.WithLabelValues(group).Inc() }
func (m *Metrics) FetchSuperseded(group string) { m.superseded.WithLabelValues(group).Inc() }

// Flash counts shown notifications. Subscribe it to a flash.Center.
func (m *Metrics) Flash(ev flash.Event) {
	if ev.Type == flash.EventShown {
		m.notifications.WithLabelValues(string(ev.Notification.Kind)).Inc()
	}
}

// Middleware records served requests under the chi route pattern, so
// resource IDs do not explode the label space.
func (m *Metrics) Middleware(server string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if p := rctx.RoutePattern(); p != "" {
					route = p
				}
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			m.httpRequests.WithLabelValues(server, r.Method, route, strconv.Itoa(status)).Inc()
			m.httpDuration.WithLabelValues(server, r.Method, route).Observe(time.Since(start).Seconds())
		})
	}
}

func statusLabel(status int) string {
	if status == 0 {
		return "error"
	}
	return strconv.Itoa(status)
}
