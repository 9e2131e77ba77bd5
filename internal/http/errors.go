package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kjstillabower/weather-explorer/internal/chart"
	"github.com/kjstillabower/weather-explorer/internal/client"
	"github.com/kjstillabower/weather-explorer/internal/observability"
	"github.com/kjstillabower/weather-explorer/internal/service"
	"github.com/kjstillabower/weather-explorer/internal/stats"
	"github.com/kjstillabower/weather-explorer/internal/validation"
	"github.com/kjstillabower/weather-explorer/internal/views"
)

// statusForError maps an error to the response status and a user-facing message.
// Order matters: an OpenWeather 404 is both an UpstreamError and LocationNotFound.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, validation.ErrInvalidRequest):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, client.ErrLocationNotFound):
		return http.StatusNotFound, "We could not find that location."
	case errors.Is(err, service.ErrNoReadings), errors.Is(err, stats.ErrEmptyInput):
		return http.StatusNotFound, "No weather data is available for that day."
	case errors.Is(err, client.ErrUpstreamTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "The weather service took too long to respond."
	case errors.Is(err, client.ErrUpstreamFailure),
		errors.Is(err, client.ErrNetwork),
		errors.Is(err, client.ErrInvalidResponse),
		errors.Is(err, client.ErrInvalidAPIKey):
		return http.StatusBadGateway, "The weather service is unavailable right now."
	case errors.Is(err, chart.ErrEmptyInput), errors.Is(err, chart.ErrLengthMismatch), errors.Is(err, views.ErrNotLoaded):
		return http.StatusInternalServerError, "Something went wrong rendering this page."
	}
	return http.StatusInternalServerError, "Something went wrong."
}

// isUpstreamFault reports whether status reflects upstream health rather than caller input.
func isUpstreamFault(status int) bool {
	return status == http.StatusBadGateway || status == http.StatusGatewayTimeout
}

// writeError logs err with the request's correlation ID and renders error.html with the mapped status.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := logError(r, err)

	page := views.ErrorPage{
		Status:        status,
		Title:         http.StatusText(status),
		Message:       message,
		CorrelationID: observability.CorrelationIDFromContext(r.Context()),
	}
	var buf bytes.Buffer
	if renderErr := views.RenderError(&buf, page); renderErr != nil {
		observability.LoggerFromContext(r.Context()).Error("render error page failed", zap.Error(renderErr))
		http.Error(w, message, status)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// writePlainError is writeError for non-HTML routes such as /graph.
func writePlainError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := logError(r, err)
	http.Error(w, message, status)
}

func logError(r *http.Request, err error) (int, string) {
	status, message := statusForError(err)
	logger := observability.LoggerFromContext(r.Context())
	fields := []zap.Field{zap.Int("status", status), zap.String("path", r.URL.Path), zap.Error(err)}
	if status >= http.StatusInternalServerError {
		logger.Warn("request failed", fields...)
	} else {
		logger.Info("request rejected", fields...)
	}
	return status, message
}
