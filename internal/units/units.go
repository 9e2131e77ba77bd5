// Package units maps OpenWeather unit-system tokens to display letters.
package units

import (
	"errors"
	"fmt"
	"strings"
)

// System is an OpenWeather unit system token.
type System string

const (
	Imperial System = "imperial"
	Metric   System = "metric"
	Standard System = "standard"
)

// ErrUnknownSystem is returned by Parse for tokens other than imperial, metric or standard.
var ErrUnknownSystem = errors.New("unknown unit system")

// Letter returns the temperature letter for a unit token: F for imperial, C for metric, K otherwise.
func Letter(token string) string {
	switch System(token) {
	case Imperial:
		return "F"
	case Metric:
		return "C"
	default:
		// Product decision: standard and anything unrecognized display as Kelvin,
		// which is what OpenWeather returns when units is omitted or unknown.
		return "K"
	}
}

// Letter returns the temperature letter for s.
func (s System) Letter() string {
	return Letter(string(s))
}

// Parse normalizes a unit token. Empty input is Standard (the upstream default).
func Parse(token string) (System, error) {
	t := strings.ToLower(strings.TrimSpace(token))
	switch System(t) {
	case "":
		return Standard, nil
	case Imperial, Metric, Standard:
		return System(t), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSystem, token)
}
