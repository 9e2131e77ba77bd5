package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

var errUnknownTestAction = errors.New("unknown test action")

// MountTestRoutes exposes GET /test and POST /test/{action} for driving /health by hand.
// Only mounted when testing_mode is on.
func MountTestRoutes(r *mux.Router, h *Handler) {
	r.HandleFunc("/test", h.GetTestStatus).Methods(http.MethodGet)
	r.HandleFunc("/test/{action}", h.PostTestAction).Methods(http.MethodPost)
}

// GetTestStatus handles GET /test.
func (h *Handler) GetTestStatus(w http.ResponseWriter, r *http.Request) {
	errs, total := h.upstream.ErrorRate(h.health.Window)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"upstream_calls_in_window":  total,
		"upstream_errors_in_window": errs,
		"window_length":             h.health.Window.String(),
		"shutting_down":             h.state.IsShuttingDown(),
		"config": map[string]interface{}{
			"degraded_error_pct": h.health.ErrorPct,
		},
	})
}

// PostTestAction handles POST /test/{action} for load, error, reset and shutdown.
// load and error accept {"count": n}, defaulting to 10.
func (h *Handler) PostTestAction(w http.ResponseWriter, r *http.Request) {
	action := mux.Vars(r)["action"]
	var message string
	switch action {
	case "load":
		n := testCount(r)
		for i := 0; i < n; i++ {
			h.upstream.RecordSuccess()
		}
		message = "Recorded " + strconv.Itoa(n) + " upstream successes"
	case "error":
		n := testCount(r)
		for i := 0; i < n; i++ {
			h.upstream.RecordError()
		}
		message = "Recorded " + strconv.Itoa(n) + " upstream errors"
	case "reset":
		h.upstream.Reset()
		message = "Upstream window cleared"
	case "shutdown":
		h.state.BeginShutdown()
		message = "Shutdown flag set; process keeps serving"
	default:
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"ok": false, "error": errUnknownTestAction.Error() + ": " + action})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":      true,
		"action":  action,
		"message": message,
		"status":  h.computeHealthStatus().status,
	})
}

func testCount(r *http.Request) int {
	var body struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Count <= 0 {
		return 10
	}
	return body.Count
}
