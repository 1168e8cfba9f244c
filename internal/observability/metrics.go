package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Upstream service labels.
const (
	UpstreamForecast            = "forecast"
	UpstreamGeocodeReverse      = "geocode_reverse"
	UpstreamGeocodeAutocomplete = "geocode_autocomplete"
	UpstreamGeolocation         = "geolocation"
)

var (
	registry *prometheus.Registry

	// HTTP request rate. Watch for: sudden drops (service down) or spikes (traffic surge).
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTP request latency per request.
	HTTPRequestDuration *prometheus.HistogramVec

	// Concurrent requests in flight.
	HTTPRequestsInFlight prometheus.Gauge

	// Upstream call rate per service (forecast, geocode_reverse, geocode_autocomplete, geolocation).
	UpstreamCallsTotal *prometheus.CounterVec

	// Upstream latency per service. Watch for: p95 > 1s on autocomplete (typing feels laggy).
	UpstreamDuration *prometheus.HistogramVec

	// Upstream failures by category. Every failure is logged and swallowed, so this is the only aggregate view.
	UpstreamErrorsTotal *prometheus.CounterVec

	// Keystroke events received by the search controller.
	SearchKeystrokesTotal prometheus.Counter

	// Autocomplete requests actually issued after debounce.
	AutocompleteRequestsTotal prometheus.Counter

	// Autocomplete completions dropped because a newer query was issued. Watch for: high ratio = slow upstream.
	AutocompleteStaleTotal prometheus.Counter

	// Suggestion selections by result (dispatched, not_found, invalid_geometry).
	SuggestionSelectionsTotal *prometheus.CounterVec

	// Panel updates by panel and field (snapshot, label).
	PanelUpdatesTotal *prometheus.CounterVec

	// Suggestion cache hits/misses by result.
	CacheLookupsTotal *prometheus.CounterVec

	// Suggestion cache backend errors by operation.
	CacheErrorsTotal *prometheus.CounterVec

	// Rate limit denials.
	RateLimitDeniedTotal prometheus.Counter
)

func init() {
	registry = prometheus.NewRegistry()

	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "httpRequestsTotal",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "statusCode"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "httpRequestDurationSeconds",
			Help:    "HTTP request latency in seconds (per request)",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "httpRequestsInFlight",
			Help: "Number of HTTP requests currently being served",
		},
	)
	UpstreamCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstreamCallsTotal",
			Help: "Total number of upstream API calls by service and status",
		},
		[]string{"service", "status"},
	)
	UpstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstreamDurationSeconds",
			Help:    "Upstream API latency in seconds (per request)",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"service", "status"},
	)
	UpstreamErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstreamErrorsTotal",
			Help: "Upstream failures by service and error category",
		},
		[]string{"service", "category"},
	)
	SearchKeystrokesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "searchKeystrokesTotal",
			Help: "Total number of search input events",
		},
	)
	AutocompleteRequestsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "autocompleteRequestsTotal",
			Help: "Total number of debounced autocomplete requests issued",
		},
	)
	AutocompleteStaleTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "autocompleteStaleTotal",
			Help: "Autocomplete completions discarded because a newer query was issued",
		},
	)
	SuggestionSelectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "suggestionSelectionsTotal",
			Help: "Suggestion selections by result",
		},
		[]string{"result"},
	)
	PanelUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "panelUpdatesTotal",
			Help: "Panel updates by panel and field",
		},
		[]string{"panel", "field"},
	)
	CacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cacheLookupsTotal",
			Help: "Suggestion cache lookups by result (hit, miss)",
		},
		[]string{"result"},
	)
	CacheErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cacheErrorsTotal",
			Help: "Suggestion cache backend errors by operation",
		},
		[]string{"operation"},
	)
	RateLimitDeniedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rateLimitDeniedTotal",
			Help: "Total number of requests denied by rate limiter (429)",
		},
	)

	registry.MustRegister(
		HTTPRequestsTotal, HTTPRequestDuration, HTTPRequestsInFlight,
		UpstreamCallsTotal, UpstreamDuration, UpstreamErrorsTotal,
		SearchKeystrokesTotal, AutocompleteRequestsTotal, AutocompleteStaleTotal, SuggestionSelectionsTotal,
		PanelUpdatesTotal,
		CacheLookupsTotal, CacheErrorsTotal,
		RateLimitDeniedTotal,
	)
}

// RecordUpstreamCall records one upstream call outcome and its latency.
func RecordUpstreamCall(service, status string, seconds float64) {
	UpstreamCallsTotal.WithLabelValues(service, status).Inc()
	UpstreamDuration.WithLabelValues(service, status).Observe(seconds)
}

// RecordUpstreamError records a categorized upstream failure.
func RecordUpstreamError(service, category string) {
	UpstreamErrorsTotal.WithLabelValues(service, category).Inc()
}

// MetricsHandler returns an http.Handler that serves application and runtime metrics.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
