package client

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/kjstillabower/weather-explorer/internal/circuitbreaker"
)

// TestCategorizeError verifies that CategorizeError maps errors to the correct ErrorCategory
// for metrics labeling, including sentinel errors, wrapped errors and typed upstream errors.
func TestCategorizeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCategory
	}{
		{"nil", nil, ""},
		{"timeout context", context.DeadlineExceeded, ErrorCategoryTimeout},
		{"upstream timeout", fmt.Errorf("%w: slow", ErrUpstreamTimeout), ErrorCategoryTimeout},
		{"canceled context", context.Canceled, ErrorCategoryNetwork},
		{"network", fmt.Errorf("%w: connection refused", ErrNetwork), ErrorCategoryNetwork},
		{"invalid API key", &UpstreamError{StatusCode: 401}, ErrorCategoryInvalidAPIKey},
		{"wrapped invalid API key", fmt.Errorf("auth: %w", ErrInvalidAPIKey), ErrorCategoryInvalidAPIKey},
		{"location not found", notFoundAsLocation("Atlantis")(&UpstreamError{StatusCode: 404}), ErrorCategoryLocationNotFound},
		{"bare 404", &UpstreamError{StatusCode: 404}, ErrorCategoryUpstream4xx},
		{"rate limited", &UpstreamError{StatusCode: 429}, ErrorCategoryRateLimited},
		{"bad request", &UpstreamError{StatusCode: 400}, ErrorCategoryUpstream4xx},
		{"server error", &UpstreamError{StatusCode: 503}, ErrorCategoryUpstream5xx},
		{"bare upstream failure", ErrUpstreamFailure, ErrorCategoryUpstream5xx},
		{"parse", fmt.Errorf("%w: bad json", ErrInvalidResponse), ErrorCategoryParsing},
		{"circuit open", fmt.Errorf("%w: %w", ErrUpstreamFailure, circuitbreaker.ErrOpen), ErrorCategoryCircuitOpen},
		{"unknown", errors.New("something else"), ErrorCategoryUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CategorizeError(tt.err)
			if got != tt.want {
				t.Errorf("CategorizeError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUpstreamError_Is(t *testing.T) {
	err := fmt.Errorf("fetch: %w", &UpstreamError{Upstream: "openweather weather", StatusCode: 404})
	if !errors.Is(err, ErrUpstreamFailure) {
		t.Error("404 UpstreamError should match ErrUpstreamFailure")
	}
	if errors.Is(err, ErrLocationNotFound) {
		t.Error("bare 404 UpstreamError should not match ErrLocationNotFound")
	}
	if errors.Is(err, ErrInvalidAPIKey) {
		t.Error("404 UpstreamError should not match ErrInvalidAPIKey")
	}

	var upErr *UpstreamError
	if !errors.As(err, &upErr) || upErr.StatusCode != 404 {
		t.Errorf("errors.As() = %v, want StatusCode 404", upErr)
	}
}

func TestIsClientError(t *testing.T) {
	if !IsClientError(nil) {
		t.Error("IsClientError(nil) = false, want true")
	}
	if !IsClientError(notFoundAsLocation("Atlantis")(&UpstreamError{StatusCode: 404})) {
		t.Error("IsClientError(not found) = false, want true")
	}
	if IsClientError(&UpstreamError{StatusCode: 404}) {
		t.Error("IsClientError(bare 404) = true, want false")
	}
	if IsClientError(&UpstreamError{StatusCode: 500}) {
		t.Error("IsClientError(500) = true, want false")
	}
}

func TestNotFoundAsLocation(t *testing.T) {
	wrap := notFoundAsLocation("Atlantis")

	err := wrap(&UpstreamError{Upstream: "openweather weather", StatusCode: 404})
	if !errors.Is(err, ErrLocationNotFound) || !errors.Is(err, ErrUpstreamFailure) {
		t.Errorf("wrap(404) = %v, want ErrLocationNotFound and ErrUpstreamFailure", err)
	}

	other := &UpstreamError{StatusCode: 500}
	if got := wrap(other); got != other {
		t.Errorf("wrap(500) = %v, want unchanged", got)
	}
	if got := wrap(ErrNetwork); got != ErrNetwork {
		t.Errorf("wrap(ErrNetwork) = %v, want unchanged", got)
	}
}
