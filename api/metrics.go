package api

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
)

// Metrics owns a registry so each server (and each test) gets its own
// collectors.
type Metrics struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec

	mutations      *prometheus.CounterVec
	importedRows   *prometheus.CounterVec
	generations    *prometheus.CounterVec
	documentsDue   prometheus.Gauge
	reviewsStarted prometheus.Counter
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "business",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of API requests broken down by route, method and status.",
		}, []string{"route", "method", "status"}),
		latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "business",
			Subsystem: "http",
			Name:      "latency_seconds",
			Help:      "Latency distribution for API requests.",
			Buckets: []float64{
				0.001, 0.002, 0.005,
				0.01, 0.02, 0.05,
				0.1, 0.2, 0.5,
				1, 2, 5, 10,
			},
		}, []string{"route", "method"}),
		mutations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "business",
			Subsystem: "store",
			Name:      "mutations_total",
			Help:      "Total number of recorded writes broken down by table and action.",
		}, []string{"table", "action"}),
		importedRows: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "business",
			Subsystem: "import",
			Name:      "rows_total",
			Help:      "Total number of employee import rows broken down by result.",
		}, []string{"result"}),
		generations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "business",
			Subsystem: "strategy",
			Name:      "generations_total",
			Help:      "Total number of strategy generations broken down by kind and result.",
		}, []string{"kind", "result"}),
		documentsDue: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "business",
			Subsystem: "quality",
			Name:      "documents_review_due",
			Help:      "Approved documents still past their review date after the last scheduler run.",
		}),
		reviewsStarted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "business",
			Subsystem: "quality",
			Name:      "reviews_started_total",
			Help:      "Total number of documents moved to review by the scheduler.",
		}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware counts requests by route pattern, so /employees/{id} is one
// series regardless of the id.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
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
		m.requests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		m.latency.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) recordMutation(table, action string) {
	m.mutations.WithLabelValues(table, action).Inc()
}

func (m *Metrics) recordImport(imported, rejected int) {
	m.importedRows.WithLabelValues("imported").Add(float64(imported))
	m.importedRows.WithLabelValues("rejected").Add(float64(rejected))
}

func (m *Metrics) recordGeneration(kind string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.generations.WithLabelValues(kind, result).Inc()
}
