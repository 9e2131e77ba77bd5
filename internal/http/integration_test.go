//go:build integration
// +build integration

package http

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/weather-explorer/internal/observability"
	"github.com/kjstillabower/weather-explorer/internal/testhelpers"
)

func setupIntegrationRouter(t *testing.T) http.Handler {
	loadViews(t)
	logger, err := observability.NewLogger()
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	h := NewHandler(testhelpers.SetupIntegrationService(t), nil, nil, HealthConfig{}, logger)
	return NewRouter(h, logger, &InFlightTracker{}, 20*time.Second)
}

// TestIntegration_Results hits the live current weather endpoint.
func TestIntegration_Results(t *testing.T) {
	router := setupIntegrationRouter(t)

	w := get(router, "/results?city=London&units=metric")

	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d. Body: %s", w.Code, http.StatusOK, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "London") {
		t.Error("response missing city name")
	}
}

// TestIntegration_HistoricalAndGraph geocodes a city, fetches yesterday and renders its chart.
func TestIntegration_HistoricalAndGraph(t *testing.T) {
	router := setupIntegrationRouter(t)
	day := time.Now().UTC().AddDate(0, 0, -1).Format("2006-01-02")

	w := get(router, "/historical_results?city=Paris&date="+day+"&units=metric")
	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d. Body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	body := w.Body.String()
	start := strings.Index(body, `src="/graph/`)
	if start < 0 {
		t.Fatal("response missing graph link")
	}
	link := body[start+len(`src="`):]
	link = link[:strings.Index(link, `"`)]

	g := get(router, link)
	if g.Code != http.StatusOK {
		t.Fatalf("graph Status = %d, want %d", g.Code, http.StatusOK)
	}
	if ct := g.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("graph Content-Type = %q, want image/png", ct)
	}
}

// TestIntegration_UnknownCity expects a 404 from the live current weather endpoint.
func TestIntegration_UnknownCity(t *testing.T) {
	router := setupIntegrationRouter(t)

	w := get(router, "/results?city=Qwxzzyv&units=metric")

	if w.Code != http.StatusNotFound {
		t.Errorf("Status = %d, want %d", w.Code, http.StatusNotFound)
	}
}
