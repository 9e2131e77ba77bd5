//go:build integration
// +build integration

package testhelpers

import (
	"os"
	"testing"
	"time"

	"github.com/kjstillabower/weather-explorer/internal/service"
)

// GetIntegrationConfig loads live upstream settings from the environment.
// Skips the test if WEATHER_API_KEY is not set.
func GetIntegrationConfig(t *testing.T) StackConfig {
	apiKey := os.Getenv("WEATHER_API_KEY")
	if apiKey == "" {
		t.Skip("WEATHER_API_KEY not set, skipping integration test")
	}

	weatherURL := os.Getenv("WEATHER_API_URL")
	if weatherURL == "" {
		weatherURL = "https://api.openweathermap.org/data/2.5"
	}
	geocoderURL := os.Getenv("GEOCODER_URL")
	if geocoderURL == "" {
		geocoderURL = "https://nominatim.openstreetmap.org/search"
	}

	return StackConfig{
		APIKey:      apiKey,
		WeatherURL:  weatherURL,
		GeocoderURL: geocoderURL,
		Timeout:     10 * time.Second,
	}
}

// SetupIntegrationService creates a service talking to the live OpenWeather and Nominatim APIs.
func SetupIntegrationService(t *testing.T) *service.WeatherService {
	return NewService(t, GetIntegrationConfig(t))
}
