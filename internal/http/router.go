package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/kjstillabower/weather-explorer/internal/observability"
)

// NewRouter wires the routes and the middleware chain. requestTimeout applies to routes that
// call upstream APIs; /, /health and /metrics are not bounded.
func NewRouter(h *Handler, logger *zap.Logger, inflight *InFlightTracker, requestTimeout time.Duration) *mux.Router {
	r := mux.NewRouter()
	r.Use(CorrelationIDMiddleware(logger))
	r.Use(MetricsMiddleware(inflight))
	r.Use(TracingMiddleware)

	r.HandleFunc("/", h.Home).Methods(http.MethodGet)
	r.HandleFunc("/health", h.GetHealth).Methods(http.MethodGet)
	r.Handle("/metrics", observability.MetricsHandler()).Methods(http.MethodGet)

	weather := r.NewRoute().Subrouter()
	weather.Use(TimeoutMiddleware(requestTimeout))
	weather.HandleFunc("/results", h.Results).Methods(http.MethodGet)
	weather.HandleFunc("/historical_results", h.HistoricalResults).Methods(http.MethodGet)
	weather.HandleFunc("/forecast_results", h.ForecastResults).Methods(http.MethodGet)
	weather.HandleFunc("/graph/{lat}/{lon}/{units}/{date}", h.Graph).Methods(http.MethodGet)

	return r
}
