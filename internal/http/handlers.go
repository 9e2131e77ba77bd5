package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/kjstillabower/weather-explorer/internal/chart"
	"github.com/kjstillabower/weather-explorer/internal/lifecycle"
	"github.com/kjstillabower/weather-explorer/internal/models"
	"github.com/kjstillabower/weather-explorer/internal/observability"
	"github.com/kjstillabower/weather-explorer/internal/traffic"
	"github.com/kjstillabower/weather-explorer/internal/units"
	"github.com/kjstillabower/weather-explorer/internal/validation"
	"github.com/kjstillabower/weather-explorer/internal/views"
)

// WeatherService is the subset of service.WeatherService the handlers use.
type WeatherService interface {
	Current(ctx context.Context, city string, system units.System) (models.CurrentConditions, error)
	Historical(ctx context.Context, city string, date time.Time, system units.System) (models.DaySummary, error)
	Forecast(ctx context.Context, city string, date time.Time, system units.System) (models.DaySummary, error)
	HourlyTemperatures(ctx context.Context, loc models.Location, system units.System, date time.Time) ([]float64, error)
}

// HealthConfig holds the thresholds for the health handler.
type HealthConfig struct {
	// Window and ErrorPct define "degraded": at least ErrorPct percent of upstream calls
	// in the last Window failed.
	Window   time.Duration
	ErrorPct int
	// BreakerState, when set, reports the weather API circuit breaker state.
	BreakerState func() string
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	weather  WeatherService
	upstream *traffic.Tracker
	state    *lifecycle.State
	health   HealthConfig
	logger   *zap.Logger
	now      func() time.Time

	healthStatusMu   sync.Mutex
	healthStatusPrev string
}

// NewHandler returns a new Handler.
func NewHandler(
	weather WeatherService,
	upstream *traffic.Tracker,
	state *lifecycle.State,
	health HealthConfig,
	logger *zap.Logger,
) *Handler {
	if upstream == nil {
		upstream = &traffic.Tracker{}
	}
	if state == nil {
		state = lifecycle.New()
	}
	if health.Window <= 0 {
		health.Window = time.Minute
	}
	if health.ErrorPct <= 0 {
		health.ErrorPct = 50
	}
	return &Handler{
		weather:  weather,
		upstream: upstream,
		state:    state,
		health:   health,
		logger:   logger,
		now:      time.Now,
	}
}

// Home handles GET /.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	h.renderHTML(w, r, func(buf io.Writer) error {
		return views.RenderHome(buf, views.NewHomePage(h.now()))
	})
}

// Results handles GET /results?city&units.
func (h *Handler) Results(w http.ResponseWriter, r *http.Request) {
	req, err := validation.ParseCurrent(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}

	cur, err := h.weather.Current(r.Context(), req.City, req.Units)
	h.recordOutcome(err)
	if err != nil {
		writeError(w, r, err)
		return
	}

	page := views.CurrentPage{
		Date:        h.now(),
		City:        cur.City,
		Description: cur.Reading.Description,
		Temperature: cur.Reading.Temperature,
		Humidity:    cur.Reading.Humidity,
		WindSpeed:   cur.Reading.WindSpeed,
		Sunrise:     cur.Sunrise,
		Sunset:      cur.Sunset,
		UnitsLetter: req.Units.Letter(),
	}
	h.renderHTML(w, r, func(buf io.Writer) error { return views.RenderCurrent(buf, page) })
}

// HistoricalResults handles GET /historical_results?city&date&units.
func (h *Handler) HistoricalResults(w http.ResponseWriter, r *http.Request) {
	req, err := validation.ParseDay(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}

	summary, err := h.weather.Historical(r.Context(), req.City, req.Date, req.Units)
	h.recordOutcome(err)
	if err != nil {
		writeError(w, r, err)
		return
	}
	page := dayPage(summary)
	h.renderHTML(w, r, func(buf io.Writer) error { return views.RenderHistorical(buf, page) })
}

// ForecastResults handles GET /forecast_results?city&date&units.
func (h *Handler) ForecastResults(w http.ResponseWriter, r *http.Request) {
	req, err := validation.ParseDay(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}

	summary, err := h.weather.Forecast(r.Context(), req.City, req.Date, req.Units)
	h.recordOutcome(err)
	if err != nil {
		writeError(w, r, err)
		return
	}
	page := dayPage(summary)
	h.renderHTML(w, r, func(buf io.Writer) error { return views.RenderForecast(buf, page) })
}

// Graph handles GET /graph/{lat}/{lon}/{units}/{date} and returns a PNG of the day's hourly temperatures.
func (h *Handler) Graph(w http.ResponseWriter, r *http.Request) {
	req, err := validation.ParseGraph(mux.Vars(r))
	if err != nil {
		writePlainError(w, r, err)
		return
	}

	temps, err := h.weather.HourlyTemperatures(r.Context(), req.Location, req.Units, req.Date)
	h.recordOutcome(err)
	if err != nil {
		writePlainError(w, r, err)
		return
	}

	png, err := RenderHourlyChart(temps, req.Units)
	if err != nil {
		observability.ChartRendersTotal.WithLabelValues("error").Inc()
		writePlainError(w, r, err)
		return
	}
	observability.ChartRendersTotal.WithLabelValues("success").Inc()

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// RenderHourlyChart plots temps against their hour index with the unit letter on the y axis.
func RenderHourlyChart(temps []float64, system units.System) ([]byte, error) {
	hours := make([]float64, len(temps))
	for i := range hours {
		hours[i] = float64(i)
	}
	return chart.RenderLineChart(hours, temps, "Hour", fmt.Sprintf("Temperature (%s)", system.Letter()))
}

// healthResult holds the computed health status and metadata for logging.
type healthResult struct {
	status     string
	statusCode int
	reason     string
}

// GetHealth handles GET /health.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	result := h.computeHealthStatus()

	h.healthStatusMu.Lock()
	prev := h.healthStatusPrev
	if prev != "" && prev != result.status {
		h.logger.Info("health status transition",
			zap.String("previous_status", prev),
			zap.String("current_status", result.status),
			zap.String("reason", result.reason))
	}
	h.healthStatusPrev = result.status
	h.healthStatusMu.Unlock()

	checks := map[string]string{"weatherApi": "healthy"}
	if result.reason == "error_rate_breach" {
		checks["weatherApi"] = "unhealthy"
	}
	if h.health.BreakerState != nil {
		checks["circuitBreaker"] = h.health.BreakerState()
	}
	writeJSON(w, result.statusCode, map[string]interface{}{
		"status":    result.status,
		"service":   "weather-explorer",
		"version":   "dev",
		"checks":    checks,
		"uptime":    h.state.Uptime().Round(time.Second).String(),
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}

// computeHealthStatus evaluates, in order: shutting-down > degraded > healthy.
func (h *Handler) computeHealthStatus() healthResult {
	if h.state.IsShuttingDown() {
		return healthResult{"shutting-down", http.StatusServiceUnavailable, "signal"}
	}
	if h.upstream.Status(h.health.Window, h.health.ErrorPct) == traffic.StatusDegraded {
		return healthResult{traffic.StatusDegraded, http.StatusServiceUnavailable, "error_rate_breach"}
	}
	return healthResult{traffic.StatusHealthy, http.StatusOK, ""}
}

// recordOutcome feeds the upstream health window. Caller mistakes are not recorded.
func (h *Handler) recordOutcome(err error) {
	if err == nil {
		h.upstream.RecordSuccess()
		return
	}
	if status, _ := statusForError(err); isUpstreamFault(status) {
		h.upstream.RecordError()
	}
}

// renderHTML renders into a buffer first so a template failure becomes a clean 500 page.
func (h *Handler) renderHTML(w http.ResponseWriter, r *http.Request, render func(io.Writer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func dayPage(s models.DaySummary) views.DayPage {
	return views.DayPage{
		City:        s.City,
		Date:        s.Date,
		Lat:         s.Location.Lat,
		Lon:         s.Location.Lon,
		Units:       string(s.Units),
		UnitsLetter: s.Units.Letter(),
		Description: s.Description,
		Temperature: s.Temperature,
		Min:         s.Min,
		Max:         s.Max,
	}
}

// writeJSON writes a JSON response with the specified HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
