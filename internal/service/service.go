package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/weather-explorer/internal/client"
	"github.com/kjstillabower/weather-explorer/internal/geocode"
	"github.com/kjstillabower/weather-explorer/internal/models"
	"github.com/kjstillabower/weather-explorer/internal/observability"
	"github.com/kjstillabower/weather-explorer/internal/stats"
	"github.com/kjstillabower/weather-explorer/internal/units"
)

// ErrNoReadings is returned when the upstream answered but had nothing for the requested day.
var ErrNoReadings = errors.New("no readings for the requested day")

// Views reported on the weatherQueriesTotal metric.
const (
	ViewCurrent    = "current"
	ViewHistorical = "historical"
	ViewForecast   = "forecast"
	ViewGraph      = "graph"
)

// WeatherService glues the geocoder, the weather client and the aggregate statistics into
// the view models the handlers render. It keeps no state between calls.
type WeatherService struct {
	client   client.WeatherClient
	geocoder geocode.Geocoder
}

func NewWeatherService(c client.WeatherClient, g geocode.Geocoder) *WeatherService {
	return &WeatherService{client: c, geocoder: g}
}

// Current returns current conditions for a city name.
func (s *WeatherService) Current(ctx context.Context, city string, system units.System) (models.CurrentConditions, error) {
	observability.WeatherQueriesTotal.WithLabelValues(ViewCurrent).Inc()
	start := time.Now()

	cur, err := s.client.Current(ctx, city, system)
	if err != nil {
		return models.CurrentConditions{}, fmt.Errorf("current weather for %s: %w", city, err)
	}
	observability.LoggerFromContext(ctx).Debug("weather served",
		zap.String("view", ViewCurrent), zap.String("city", city), zap.Duration("duration", time.Since(start)))
	return cur, nil
}

// Historical summarizes one past day: conditions at the requested instant plus the low and
// high over the hourly readings.
func (s *WeatherService) Historical(ctx context.Context, city string, date time.Time, system units.System) (models.DaySummary, error) {
	observability.WeatherQueriesTotal.WithLabelValues(ViewHistorical).Inc()

	loc, err := s.resolve(ctx, city)
	if err != nil {
		return models.DaySummary{}, err
	}

	tm, err := s.client.TimeMachine(ctx, loc, system, date)
	if err != nil {
		return models.DaySummary{}, fmt.Errorf("historical weather for %s on %s: %w", city, date.Format("2006-01-02"), err)
	}
	if len(tm.Hourly) == 0 {
		return models.DaySummary{}, fmt.Errorf("historical weather for %s: %w", city, ErrNoReadings)
	}

	low, err := stats.MinTemperature(tm.Hourly)
	if err != nil {
		return models.DaySummary{}, err
	}
	high, err := stats.MaxTemperature(tm.Hourly)
	if err != nil {
		return models.DaySummary{}, err
	}

	return models.DaySummary{
		City:        city,
		Date:        date,
		Location:    loc,
		Units:       system,
		Description: tm.Current.Description,
		Temperature: tm.Current.Temperature,
		Min:         low,
		Max:         high,
	}, nil
}

// Forecast summarizes one future day from the hourly forecast: average temperature, the lowest
// temp_min, the highest temp_max, and the first entry's description. The upstream endpoint
// needs a paid plan, so this path is best-effort.
func (s *WeatherService) Forecast(ctx context.Context, city string, date time.Time, system units.System) (models.DaySummary, error) {
	observability.WeatherQueriesTotal.WithLabelValues(ViewForecast).Inc()

	loc, err := s.resolve(ctx, city)
	if err != nil {
		return models.DaySummary{}, err
	}

	entries, err := s.client.HourlyForecast(ctx, loc, system)
	if err != nil {
		return models.DaySummary{}, fmt.Errorf("forecast for %s: %w", city, err)
	}

	day := client.FilterByDate(entries, date.Format("2006-01-02"))
	if len(day) == 0 {
		return models.DaySummary{}, fmt.Errorf("forecast for %s on %s: %w", city, date.Format("2006-01-02"), ErrNoReadings)
	}
	readings := client.Readings(day)

	avg, err := stats.AverageTemperature(readings)
	if err != nil {
		return models.DaySummary{}, err
	}
	low, err := stats.MinBy(readings, func(r models.Reading) float64 { return r.TempMin })
	if err != nil {
		return models.DaySummary{}, err
	}
	high, err := stats.MaxBy(readings, func(r models.Reading) float64 { return r.TempMax })
	if err != nil {
		return models.DaySummary{}, err
	}

	return models.DaySummary{
		City:        city,
		Date:        date,
		Location:    loc,
		Units:       system,
		Description: readings[0].Description,
		Temperature: avg,
		Min:         low,
		Max:         high,
	}, nil
}

// HourlyTemperatures returns the hourly temperatures for the day at loc, in upstream order.
func (s *WeatherService) HourlyTemperatures(ctx context.Context, loc models.Location, system units.System, date time.Time) ([]float64, error) {
	observability.WeatherQueriesTotal.WithLabelValues(ViewGraph).Inc()

	tm, err := s.client.TimeMachine(ctx, loc, system, date)
	if err != nil {
		return nil, fmt.Errorf("hourly temperatures at %v,%v: %w", loc.Lat, loc.Lon, err)
	}
	if len(tm.Hourly) == 0 {
		return nil, ErrNoReadings
	}
	temps := make([]float64, len(tm.Hourly))
	for i, r := range tm.Hourly {
		temps[i] = r.Temperature
	}
	return temps, nil
}

func (s *WeatherService) resolve(ctx context.Context, city string) (models.Location, error) {
	loc, err := s.geocoder.Resolve(ctx, city)
	if err != nil {
		return models.Location{}, fmt.Errorf("geocode %s: %w", city, err)
	}
	if !loc.Resolved {
		// Product decision: the geocoder's (0,0) sentinel is never sent upstream as a real
		// coordinate. A genuine equator/meridian hit comes back with Resolved set.
		return models.Location{}, fmt.Errorf("geocode %s: %w", city, client.ErrLocationNotFound)
	}
	return loc, nil
}
