package testhelpers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kjstillabower/weather-explorer/internal/client"
	"github.com/kjstillabower/weather-explorer/internal/geocode"
	"github.com/kjstillabower/weather-explorer/internal/service"
)

// StackConfig points a real client and geocoder at a pair of upstreams.
type StackConfig struct {
	APIKey      string
	WeatherURL  string
	GeocoderURL string
	Timeout     time.Duration
}

// NewService builds the production WeatherService over cfg, failing the test on bad config.
func NewService(t *testing.T, cfg StackConfig) *service.WeatherService {
	t.Helper()
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	weatherClient, err := client.NewOpenWeatherClient(client.Config{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.WeatherURL,
		Timeout: cfg.Timeout,
	})
	if err != nil {
		t.Fatalf("NewOpenWeatherClient() error = %v", err)
	}
	geocoder, err := geocode.NewNominatimGeocoder(geocode.Config{
		BaseURL:   cfg.GeocoderURL,
		UserAgent: "weather-explorer-tests",
		Timeout:   cfg.Timeout,
	})
	if err != nil {
		t.Fatalf("NewNominatimGeocoder() error = %v", err)
	}
	return service.NewWeatherService(weatherClient, geocoder)
}

// NewJSONStub serves canned JSON bodies keyed by path suffix, e.g. "/weather" or
// "/onecall/timemachine". Unknown paths get a 404 with an OpenWeather style body.
// Every request is appended to *seen when seen is non-nil.
func NewJSONStub(t *testing.T, bodies map[string]string, seen *[]*http.Request) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			*seen = append(*seen, r.Clone(r.Context()))
		}
		w.Header().Set("Content-Type", "application/json")
		for suffix, body := range bodies {
			if strings.HasSuffix(r.URL.Path, suffix) {
				_, _ = w.Write([]byte(body))
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"cod":"404","message":"city not found"}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}
