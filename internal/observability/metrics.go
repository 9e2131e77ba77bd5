package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Upstream labels used with the Upstream* metrics.
const (
	UpstreamWeather = "weather_api"
	UpstreamGeocode = "geocode"
)

var (
	registry *prometheus.Registry

	// HTTP request rate. Watch for: sudden drops (service down) or spikes (traffic surge).
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTP request latency per request. Watch for: p95/p99 increases; most of it is upstream time.
	HTTPRequestDuration *prometheus.HistogramVec

	// Concurrent requests in flight.
	HTTPRequestsInFlight prometheus.Gauge

	// Outbound calls to OpenWeather and the geocoder, by status label.
	UpstreamCallsTotal *prometheus.CounterVec

	// Outbound latency. Watch for: p99 approaching weather_api.timeout.
	UpstreamDuration *prometheus.HistogramVec

	// Outbound failures by error category (timeout, network, upstream_5xx, parsing, ...).
	UpstreamErrorsTotal *prometheus.CounterVec

	// Lookups per view (current, historical, forecast, graph).
	WeatherQueriesTotal *prometheus.CounterVec

	// PNG chart renders by outcome.
	ChartRendersTotal *prometheus.CounterVec

	// Circuit breaker transitions per upstream.
	CircuitBreakerTransitionsTotal *prometheus.CounterVec
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
			Help: "Total number of outbound calls to the weather API and geocoder",
		},
		[]string{"upstream", "status"},
	)
	UpstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstreamDurationSeconds",
			Help:    "Outbound call latency in seconds (per request)",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"upstream", "status"},
	)
	UpstreamErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstreamErrorsTotal",
			Help: "Outbound call failures by error category",
		},
		[]string{"upstream", "category"},
	)
	WeatherQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherQueriesTotal",
			Help: "Weather lookups by view",
		},
		[]string{"view"},
	)
	ChartRendersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chartRendersTotal",
			Help: "PNG chart renders by outcome",
		},
		[]string{"status"},
	)
	CircuitBreakerTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuitBreakerTransitionsTotal",
			Help: "Circuit breaker state transitions",
		},
		[]string{"upstream", "from", "to"},
	)

	registry.MustRegister(
		HTTPRequestsTotal, HTTPRequestDuration, HTTPRequestsInFlight,
		UpstreamCallsTotal, UpstreamDuration, UpstreamErrorsTotal,
		WeatherQueriesTotal, ChartRendersTotal, CircuitBreakerTransitionsTotal,
	)
}

// RecordUpstreamCall records one outbound call with its status label and duration in seconds.
func RecordUpstreamCall(upstream, status string, seconds float64) {
	UpstreamCallsTotal.WithLabelValues(upstream, status).Inc()
	UpstreamDuration.WithLabelValues(upstream, status).Observe(seconds)
}

// RecordUpstreamError records a failed outbound call under a stable category label.
func RecordUpstreamError(upstream, category string) {
	UpstreamErrorsTotal.WithLabelValues(upstream, category).Inc()
}

// RecordCircuitBreakerTransition records a state change for the named upstream.
func RecordCircuitBreakerTransition(upstream, from, to string) {
	CircuitBreakerTransitionsTotal.WithLabelValues(upstream, from, to).Inc()
}

// StatusLabel maps an HTTP status code to the label used on Upstream* metrics.
func StatusLabel(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return "success"
	case statusCode == http.StatusTooManyRequests:
		return "rate_limited"
	case statusCode >= 400 && statusCode < 500:
		return "client_error"
	case statusCode >= 500:
		return "server_error"
	}
	return "error"
}

// MetricsHandler returns an http.Handler that serves application and runtime metrics.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
