package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Store metrics
	StoreQueriesTotal  *prometheus.CounterVec
	StoreQueryDuration *prometheus.HistogramVec
	StoreErrorsTotal   *prometheus.CounterVec

	// Search metrics
	SearchesTotal      *prometheus.CounterVec
	SearchDuration     *prometheus.HistogramVec
	SearchResultsCount *prometheus.HistogramVec
	SuggestionsTotal   *prometheus.CounterVec

	// Business metrics
	SpeciesTotal    prometheus.Gauge
	RegisteredUsers prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wildlife_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wildlife_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		StoreQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wildlife_store_queries_total",
				Help: "Total number of record store queries",
			},
			[]string{"operation", "backend", "status"},
		),
		StoreQueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wildlife_store_query_duration_seconds",
				Help:    "Record store query duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "backend"},
		),
		StoreErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wildlife_store_errors_total",
				Help: "Total number of record store errors",
			},
			[]string{"operation", "backend"},
		),

		SearchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wildlife_searches_total",
				Help: "Total number of species searches",
			},
			[]string{"mode", "status"},
		),
		SearchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wildlife_search_duration_seconds",
				Help:    "Species search duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"mode"},
		),
		SearchResultsCount: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wildlife_search_results",
				Help:    "Number of results returned per search",
				Buckets: []float64{0, 1, 5, 10, 25, 50},
			},
			[]string{"mode"},
		),
		SuggestionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wildlife_suggestions_total",
				Help: "Total number of autocomplete suggestion requests",
			},
			[]string{"mode", "status"},
		),

		SpeciesTotal: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "wildlife_species_total",
				Help: "Number of species records in the store",
			},
		),
		RegisteredUsers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "wildlife_registered_users",
				Help: "Number of registered user accounts",
			},
		),

		registry: registry,
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.StoreQueriesTotal,
		m.StoreQueryDuration,
		m.StoreErrorsTotal,
		m.SearchesTotal,
		m.SearchDuration,
		m.SearchResultsCount,
		m.SuggestionsTotal,
		m.SpeciesTotal,
		m.RegisteredUsers,
	)

	return m
}

// Handler returns an HTTP handler for the /metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveStoreQuery records a store query with duration and outcome
func (m *Metrics) ObserveStoreQuery(operation, backend string, duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
		m.StoreErrorsTotal.WithLabelValues(operation, backend).Inc()
	}
	m.StoreQueriesTotal.WithLabelValues(operation, backend, status).Inc()
	m.StoreQueryDuration.WithLabelValues(operation, backend).Observe(duration.Seconds())
}

// InstrumentHandler wraps an HTTP handler with request metrics
func (m *Metrics) InstrumentHandler(path string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		m.HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(rw.status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration.Seconds())
	})
}

// statusRecorder wraps http.ResponseWriter to capture the status code
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
