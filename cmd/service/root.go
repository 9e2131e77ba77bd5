package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kjstillabower/weather-explorer/internal/circuitbreaker"
	"github.com/kjstillabower/weather-explorer/internal/client"
	"github.com/kjstillabower/weather-explorer/internal/config"
	"github.com/kjstillabower/weather-explorer/internal/geocode"
	"github.com/kjstillabower/weather-explorer/internal/observability"
	"github.com/kjstillabower/weather-explorer/internal/service"
)

// loadConfig is swapped in tests.
var loadConfig = config.Load

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "weather-explorer",
		Short:         "Current, historical and forecast weather pages backed by OpenWeather",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newGraphCmd())
	return root
}

// app is the wiring shared by serve and graph.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	breaker *circuitbreaker.Breaker
	weather *service.WeatherService
}

func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	logger, err := observability.NewLogger()
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	var breaker *circuitbreaker.Breaker
	if cfg.CircuitBreakerEnabled {
		breaker = circuitbreaker.New(circuitbreaker.Config{
			Name:             observability.UpstreamWeather,
			FailureThreshold: cfg.CircuitBreakerFailureThreshold,
			SuccessThreshold: cfg.CircuitBreakerSuccessThreshold,
			Timeout:          cfg.CircuitBreakerTimeout,
			IsSuccessful: func(err error) bool {
				return err == nil || client.IsClientError(err)
			},
			OnStateChange: func(from, to string) {
				observability.RecordCircuitBreakerTransition(observability.UpstreamWeather, from, to)
				logger.Warn("circuit breaker state change", zap.String("from", from), zap.String("to", to))
			},
		})
		logger.Info("circuit breaker enabled",
			zap.Int("failure_threshold", cfg.CircuitBreakerFailureThreshold),
			zap.Duration("timeout", cfg.CircuitBreakerTimeout))
	}

	weatherClient, err := client.NewOpenWeatherClient(client.Config{
		APIKey:  cfg.WeatherAPIKey,
		BaseURL: cfg.WeatherAPIURL,
		Timeout: cfg.WeatherAPITimeout,
		Breaker: breaker,
	})
	if err != nil {
		return nil, fmt.Errorf("weather client: %w", err)
	}
	geocoder, err := geocode.NewNominatimGeocoder(geocode.Config{
		BaseURL:   cfg.GeocoderURL,
		UserAgent: cfg.GeocoderUserAgent,
		Timeout:   cfg.GeocoderTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("geocoder: %w", err)
	}

	return &app{
		cfg:     cfg,
		logger:  logger,
		breaker: breaker,
		weather: service.NewWeatherService(weatherClient, geocoder),
	}, nil
}
