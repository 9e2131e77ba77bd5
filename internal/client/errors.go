package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInvalidAPIKey    = errors.New("invalid API key")
	ErrLocationNotFound = errors.New("location not found")
	ErrUpstreamFailure  = errors.New("upstream failure")
	ErrUpstreamTimeout  = errors.New("upstream timeout")
	ErrNetwork          = errors.New("network error")
	ErrInvalidResponse  = errors.New("invalid response shape")
)

// UpstreamError is a non-2xx response from an upstream API. It matches ErrUpstreamFailure,
// and additionally ErrInvalidAPIKey for 401. A 404 only means "location not found" on lookups
// by name, so callers that know that wrap it with ErrLocationNotFound themselves.
type UpstreamError struct {
	Upstream   string
	StatusCode int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %s returned HTTP %d", ErrUpstreamFailure, e.Upstream, e.StatusCode)
}

// Is reports whether target is one of the sentinels this status maps to.
func (e *UpstreamError) Is(target error) bool {
	switch target {
	case ErrUpstreamFailure:
		return true
	case ErrInvalidAPIKey:
		return e.StatusCode == http.StatusUnauthorized
	}
	return false
}

// IsClientError reports whether err is caused by the caller's input rather than upstream health.
// Used to keep "city not found" from tripping the circuit breaker.
func IsClientError(err error) bool {
	return err == nil || errors.Is(err, ErrLocationNotFound)
}

// notFoundAsLocation wraps a 404 UpstreamError with ErrLocationNotFound. Other errors pass through.
func notFoundAsLocation(query string) func(error) error {
	return func(err error) error {
		var upErr *UpstreamError
		if errors.As(err, &upErr) && upErr.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: %q: %w", ErrLocationNotFound, query, err)
		}
		return err
	}
}
