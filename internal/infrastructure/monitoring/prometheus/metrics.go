// Package prometheus registers the application metrics.
package prometheus

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector the services report to.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP layer
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Resolution layer
	LookupsTotal    *prometheus.CounterVec
	LookupHitsTotal *prometheus.CounterVec

	// Ingestion layer
	SourceLoadsTotal *prometheus.CounterVec
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// External identity layer
	ExternalRequestsTotal *prometheus.CounterVec

	// Freshness layer
	FreshnessChangesTotal *prometheus.CounterVec
	FreshnessCycleErrors  prometheus.Counter
}

var httpDurationBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector())

	m := &Metrics{
		registry: reg,
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coscheck_http_requests_total",
			Help: "HTTP requests by method, path and status.",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "coscheck_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: httpDurationBuckets,
		}, []string{"method", "path"}),
		LookupsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coscheck_lookups_total",
			Help: "Identifier lookups by kind (cas, name, registry) and mode.",
		}, []string{"kind", "mode"}),
		LookupHitsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coscheck_lookup_hits_total",
			Help: "Lookups that matched at least one row.",
		}, []string{"kind"}),
		SourceLoadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coscheck_source_loads_total",
			Help: "Source load attempts by outcome (ok, cached, error).",
		}, []string{"source", "outcome"}),
		CacheHitsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coscheck_table_cache_hits_total",
			Help: "Table cache hits per source.",
		}, []string{"source"}),
		CacheMissesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coscheck_table_cache_misses_total",
			Help: "Table cache misses per source.",
		}, []string{"source"}),
		ExternalRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coscheck_external_requests_total",
			Help: "External identity resolutions by outcome (found, not_found, service_error).",
		}, []string{"outcome"}),
		FreshnessChangesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coscheck_freshness_changes_total",
			Help: "Detected source version changes per source.",
		}, []string{"source"}),
		FreshnessCycleErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "coscheck_freshness_cycle_errors_total",
			Help: "Freshness cycles that failed to persist state.",
		}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.LookupsTotal,
		m.LookupHitsTotal,
		m.SourceLoadsTotal,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.ExternalRequestsTotal,
		m.FreshnessChangesTotal,
		m.FreshnessCycleErrors,
	)
	return m
}

// Handler exposes the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
