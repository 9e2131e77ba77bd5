package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"

	"github.com/kjstillabower/weather-explorer/internal/circuitbreaker"
	"github.com/kjstillabower/weather-explorer/internal/models"
	"github.com/kjstillabower/weather-explorer/internal/observability"
	"github.com/kjstillabower/weather-explorer/internal/units"
)

// WeatherClient fetches data from the three OpenWeather endpoints the app renders.
type WeatherClient interface {
	Current(ctx context.Context, city string, system units.System) (models.CurrentConditions, error)
	TimeMachine(ctx context.Context, loc models.Location, system units.System, day time.Time) (models.TimeMachine, error)
	HourlyForecast(ctx context.Context, loc models.Location, system units.System) ([]models.ForecastEntry, error)
}

const (
	endpointCurrent     = "weather"
	endpointTimeMachine = "onecall/timemachine"
	endpointForecast    = "forecast/hourly"
)

// Config configures an OpenWeatherClient.
type Config struct {
	APIKey  string
	BaseURL string // e.g. https://api.openweathermap.org/data/2.5
	Timeout time.Duration
	Breaker *circuitbreaker.Breaker // optional
}

type OpenWeatherClient struct {
	apiKey  string
	baseURL *url.URL
	timeout time.Duration
	client  *http.Client
	breaker *circuitbreaker.Breaker
}

func NewOpenWeatherClient(cfg Config) (*OpenWeatherClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: API key is required", ErrInvalidAPIKey)
	}
	if len(cfg.APIKey) < 10 {
		return nil, fmt.Errorf("%w: API key appears invalid (too short)", ErrInvalidAPIKey)
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid API URL %q", cfg.BaseURL)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	return &OpenWeatherClient{
		apiKey:  cfg.APIKey,
		baseURL: base,
		timeout: cfg.Timeout,
		breaker: cfg.Breaker,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}, nil
}

type weatherDescription struct {
	Main        string `json:"main"`
	Description string `json:"description"`
}

type currentResponse struct {
	Name    string               `json:"name"`
	Dt      int64                `json:"dt"`
	Weather []weatherDescription `json:"weather"`
	Main    *struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Sys struct {
		Sunrise int64 `json:"sunrise"`
		Sunset  int64 `json:"sunset"`
	} `json:"sys"`
}

type oneCallReading struct {
	Dt        int64                `json:"dt"`
	Temp      float64              `json:"temp"`
	Humidity  int                  `json:"humidity"`
	WindSpeed float64              `json:"wind_speed"`
	Weather   []weatherDescription `json:"weather"`
}

type timeMachineResponse struct {
	Current *oneCallReading  `json:"current"`
	Hourly  []oneCallReading `json:"hourly"`
}

type forecastResponse struct {
	List []struct {
		Dt    int64  `json:"dt"`
		DtTxt string `json:"dt_txt"`
		Main  struct {
			Temp     float64 `json:"temp"`
			TempMin  float64 `json:"temp_min"`
			TempMax  float64 `json:"temp_max"`
			Humidity int     `json:"humidity"`
		} `json:"main"`
		Weather []weatherDescription `json:"weather"`
		Wind    struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
	} `json:"list"`
}

// Current fetches current conditions for a free-text city name.
func (c *OpenWeatherClient) Current(ctx context.Context, city string, system units.System) (models.CurrentConditions, error) {
	params := url.Values{}
	params.Set("q", city)
	params.Set("units", string(system))

	var apiResp currentResponse
	if err := c.get(ctx, endpointCurrent, params, &apiResp, notFoundAsLocation(city)); err != nil {
		return models.CurrentConditions{}, err
	}
	if apiResp.Main == nil || len(apiResp.Weather) == 0 {
		return models.CurrentConditions{}, fmt.Errorf("%w: current response missing main or weather", ErrInvalidResponse)
	}

	name := apiResp.Name
	if name == "" {
		name = city
	}
	return models.CurrentConditions{
		City: name,
		Reading: models.Reading{
			Time:        unixOrZero(apiResp.Dt),
			Description: describe(apiResp.Weather),
			Temperature: apiResp.Main.Temp,
			Humidity:    apiResp.Main.Humidity,
			WindSpeed:   apiResp.Wind.Speed,
		},
		Sunrise: unixOrZero(apiResp.Sys.Sunrise),
		Sunset:  unixOrZero(apiResp.Sys.Sunset),
	}, nil
}

// TimeMachine fetches historical data for the day containing the given instant.
func (c *OpenWeatherClient) TimeMachine(ctx context.Context, loc models.Location, system units.System, day time.Time) (models.TimeMachine, error) {
	params := coordParams(loc, system)
	params.Set("dt", strconv.FormatInt(day.Unix(), 10))

	var apiResp timeMachineResponse
	if err := c.get(ctx, endpointTimeMachine, params, &apiResp, nil); err != nil {
		return models.TimeMachine{}, err
	}
	if apiResp.Current == nil || len(apiResp.Current.Weather) == 0 {
		return models.TimeMachine{}, fmt.Errorf("%w: timemachine response missing current conditions", ErrInvalidResponse)
	}

	out := models.TimeMachine{
		Current: apiResp.Current.reading(),
		Hourly:  make([]models.Reading, 0, len(apiResp.Hourly)),
	}
	for _, h := range apiResp.Hourly {
		out.Hourly = append(out.Hourly, h.reading())
	}
	return out, nil
}

// HourlyForecast fetches the hourly forecast list. The endpoint needs a paid OpenWeather plan,
// so this path has only been exercised against stubs.
func (c *OpenWeatherClient) HourlyForecast(ctx context.Context, loc models.Location, system units.System) ([]models.ForecastEntry, error) {
	var apiResp forecastResponse
	if err := c.get(ctx, endpointForecast, coordParams(loc, system), &apiResp, nil); err != nil {
		return nil, err
	}
	if apiResp.List == nil {
		return nil, fmt.Errorf("%w: forecast response missing list", ErrInvalidResponse)
	}

	entries := make([]models.ForecastEntry, 0, len(apiResp.List))
	for _, e := range apiResp.List {
		entries = append(entries, models.ForecastEntry{
			DateText: e.DtTxt,
			Reading: models.Reading{
				Time:        unixOrZero(e.Dt),
				Description: describe(e.Weather),
				Temperature: e.Main.Temp,
				TempMin:     e.Main.TempMin,
				TempMax:     e.Main.TempMax,
				Humidity:    e.Main.Humidity,
				WindSpeed:   e.Wind.Speed,
			},
		})
	}
	return entries, nil
}

// FilterByDate keeps forecast entries whose dt_txt contains date (YYYY-MM-DD).
func FilterByDate(entries []models.ForecastEntry, date string) []models.ForecastEntry {
	var out []models.ForecastEntry
	for _, e := range entries {
		if strings.Contains(e.DateText, date) {
			out = append(out, e)
		}
	}
	return out
}

// Readings extracts the readings from forecast entries, preserving order.
func Readings(entries []models.ForecastEntry) []models.Reading {
	out := make([]models.Reading, len(entries))
	for i, e := range entries {
		out[i] = e.Reading
	}
	return out
}

// get runs one call through the breaker. mapErr, when set, reclassifies the call's error
// before the breaker sees it, so a caller-side miss does not count as an upstream failure.
func (c *OpenWeatherClient) get(ctx context.Context, endpoint string, params url.Values, out interface{}, mapErr func(error) error) error {
	ctx, span := observability.Tracer().Start(ctx, "openweather "+endpoint)
	defer span.End()
	span.SetAttributes(attribute.String("weather.endpoint", endpoint))

	err := c.breaker.Call(func() error {
		err := c.callAPI(ctx, endpoint, params, out)
		if err != nil && mapErr != nil {
			return mapErr(err)
		}
		return err
	})
	if errors.Is(err, circuitbreaker.ErrOpen) {
		err = fmt.Errorf("%w: %w", ErrUpstreamFailure, err)
	}
	if err != nil {
		category := CategorizeError(err)
		observability.RecordUpstreamError(observability.UpstreamWeather, string(category))
		span.RecordError(err)
		span.SetStatus(codes.Error, string(category))
		observability.LoggerFromContext(ctx).Debug("weather api call failed",
			zap.String("endpoint", endpoint), zap.String("category", string(category)), zap.Error(err))
	}
	return err
}

func (c *OpenWeatherClient) callAPI(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	start := time.Now()

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := c.buildRequest(reqCtx, endpoint, params)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	if corrID := observability.CorrelationIDFromContext(ctx); corrID != "" {
		req.Header.Set("X-Correlation-ID", corrID)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.client.Do(req)
	if err != nil {
		observability.RecordUpstreamCall(observability.UpstreamWeather, "error", time.Since(start).Seconds())
		return ClassifyTransportError(err)
	}
	defer resp.Body.Close()

	observability.RecordUpstreamCall(observability.UpstreamWeather, observability.StatusLabel(resp.StatusCode), time.Since(start).Seconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &UpstreamError{Upstream: "openweather " + endpoint, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ClassifyTransportError(fmt.Errorf("read response body: %w", err))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: parse response: %v", ErrInvalidResponse, err)
	}
	return nil
}

func (c *OpenWeatherClient) buildRequest(ctx context.Context, endpoint string, params url.Values) (*http.Request, error) {
	u := *c.baseURL
	u.Path = u.Path + "/" + endpoint

	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set("appid", c.apiKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// ClassifyTransportError wraps a failed round trip as ErrUpstreamTimeout or ErrNetwork.
func ClassifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrUpstreamTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrUpstreamTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrNetwork, err)
}

func coordParams(loc models.Location, system units.System) url.Values {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(loc.Lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(loc.Lon, 'f', -1, 64))
	params.Set("units", string(system))
	return params
}

func (r oneCallReading) reading() models.Reading {
	return models.Reading{
		Time:        unixOrZero(r.Dt),
		Description: describe(r.Weather),
		Temperature: r.Temp,
		Humidity:    r.Humidity,
		WindSpeed:   r.WindSpeed,
	}
}

func describe(items []weatherDescription) string {
	if len(items) == 0 {
		return ""
	}
	if items[0].Description != "" {
		return items[0].Description
	}
	return items[0].Main
}

func unixOrZero(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}
