package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/kjstillabower/weather-explorer/internal/lifecycle"
	"github.com/kjstillabower/weather-explorer/internal/traffic"
)

func newTestModeRouter(t *testing.T) (*mux.Router, *traffic.Tracker, *lifecycle.State) {
	t.Helper()
	loadViews(t)
	upstream := &traffic.Tracker{}
	state := lifecycle.New()
	h := NewHandler(&mockWeatherService{}, upstream, state, HealthConfig{Window: time.Minute, ErrorPct: 50}, zap.NewNop())
	router := NewRouter(h, zap.NewNop(), &InFlightTracker{}, time.Second)
	MountTestRoutes(router, h)
	return router, upstream, state
}

func post(router http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestPostTestAction_ErrorDegradesHealth(t *testing.T) {
	router, _, _ := newTestModeRouter(t)

	w := post(router, "/test/error", `{"count": 5}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["status"] != "degraded" {
		t.Errorf("status = %v, want degraded", resp["status"])
	}

	if h := get(router, "/health"); h.Code != http.StatusServiceUnavailable {
		t.Errorf("/health status = %d, want 503", h.Code)
	}
}

func TestPostTestAction_LoadAndReset(t *testing.T) {
	router, upstream, _ := newTestModeRouter(t)

	post(router, "/test/load", "")
	if _, total := upstream.ErrorRate(time.Minute); total != 10 {
		t.Errorf("total = %d, want 10 (default count)", total)
	}

	post(router, "/test/reset", "")
	if _, total := upstream.ErrorRate(time.Minute); total != 0 {
		t.Errorf("total after reset = %d, want 0", total)
	}
}

func TestPostTestAction_Shutdown(t *testing.T) {
	router, _, state := newTestModeRouter(t)

	post(router, "/test/shutdown", "")

	if !state.IsShuttingDown() {
		t.Error("IsShuttingDown() = false, want true")
	}
}

func TestPostTestAction_Unknown(t *testing.T) {
	router, _, _ := newTestModeRouter(t)

	if w := post(router, "/test/explode", ""); w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestGetTestStatus(t *testing.T) {
	router, upstream, _ := newTestModeRouter(t)
	upstream.RecordError()
	upstream.RecordSuccess()

	w := get(router, "/test")

	var resp map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["upstream_calls_in_window"] != float64(2) || resp["upstream_errors_in_window"] != float64(1) {
		t.Errorf("counts = %v/%v, want 2/1", resp["upstream_calls_in_window"], resp["upstream_errors_in_window"])
	}
}
