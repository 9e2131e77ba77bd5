// Package stats computes temperature aggregates over a day's readings.
package stats

import (
	"errors"

	"github.com/kjstillabower/weather-explorer/internal/models"
)

// ErrEmptyInput is returned when an aggregate is requested over no readings.
var ErrEmptyInput = errors.New("no readings to aggregate")

func temperature(r models.Reading) float64 { return r.Temperature }

// MinTemperature returns the smallest Temperature in readings.
func MinTemperature(readings []models.Reading) (float64, error) {
	return MinBy(readings, temperature)
}

// MaxTemperature returns the largest Temperature in readings.
func MaxTemperature(readings []models.Reading) (float64, error) {
	return MaxBy(readings, temperature)
}

// AverageTemperature returns the arithmetic mean of Temperature across readings.
func AverageTemperature(readings []models.Reading) (float64, error) {
	if len(readings) == 0 {
		return 0, ErrEmptyInput
	}
	var sum float64
	for _, r := range readings {
		sum += r.Temperature
	}
	return sum / float64(len(readings)), nil
}

// MinBy returns the smallest value of field across readings.
func MinBy(readings []models.Reading, field func(models.Reading) float64) (float64, error) {
	if len(readings) == 0 {
		return 0, ErrEmptyInput
	}
	min := field(readings[0])
	for _, r := range readings[1:] {
		if v := field(r); v < min {
			min = v
		}
	}
	return min, nil
}

// MaxBy returns the largest value of field across readings.
func MaxBy(readings []models.Reading, field func(models.Reading) float64) (float64, error) {
	if len(readings) == 0 {
		return 0, ErrEmptyInput
	}
	max := field(readings[0])
	for _, r := range readings[1:] {
		if v := field(r); v > max {
			max = v
		}
	}
	return max, nil
}
