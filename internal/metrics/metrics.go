package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "prepdash_http_requests_total",
		Help: "Total HTTP requests by route and status",
	}, []string{"method", "route", "status"})
	RequestDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "prepdash_http_request_duration_ms",
		Help:    "HTTP request duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	}, []string{"route"})
	CacheHitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "prepdash_cache_hits_total",
		Help: "Key-value cache hits by backend",
	}, []string{"backend"})
	CacheMissesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "prepdash_cache_misses_total",
		Help: "Key-value cache misses by backend",
	}, []string{"backend"})
	FacilitiesAggregated = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "prepdash_facilities_aggregated",
		Help: "Facilities produced by the last aggregation",
	})
	PersonsImportedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "prepdash_persons_imported_total",
		Help: "Person records loaded through CSV import",
	})
	EmailsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "prepdash_emails_total",
		Help: "Email send attempts by result",
	}, []string{"result"})
	GeocodeRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "prepdash_geocode_requests_total",
		Help: "Geocoder lookups by provider and result",
	}, []string{"provider", "result"})
	DashboardRefreshTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "prepdash_dashboard_refresh_total",
		Help: "Dashboard data refreshes by outcome",
	}, []string{"outcome"})
)

func init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDurationMs)
	prometheus.MustRegister(CacheHitsTotal)
	prometheus.MustRegister(CacheMissesTotal)
	prometheus.MustRegister(FacilitiesAggregated)
	prometheus.MustRegister(PersonsImportedTotal)
	prometheus.MustRegister(EmailsTotal)
	prometheus.MustRegister(GeocodeRequestsTotal)
	prometheus.MustRegister(DashboardRefreshTotal)
}

// Handler exposes the default registry for scraping.
func Handler() http.Handler { return promhttp.Handler() }
