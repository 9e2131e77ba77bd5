package stats

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kjstillabower/weather-explorer/internal/models"
)

func readings(temps ...float64) []models.Reading {
	out := make([]models.Reading, len(temps))
	for i, t := range temps {
		out[i] = models.Reading{Temperature: t}
	}
	return out
}

func TestMinMaxAverage(t *testing.T) {
	rs := readings(30, 50, 40)

	min, err := MinTemperature(rs)
	require.NoError(t, err)
	assert.Equal(t, 30.0, min)

	max, err := MaxTemperature(rs)
	require.NoError(t, err)
	assert.Equal(t, 50.0, max)

	avg, err := AverageTemperature(rs)
	require.NoError(t, err)
	assert.InDelta(t, 40.0, avg, 1e-9)
}

func TestSingleReading(t *testing.T) {
	rs := readings(-4.5)
	min, _ := MinTemperature(rs)
	max, _ := MaxTemperature(rs)
	avg, _ := AverageTemperature(rs)
	assert.Equal(t, -4.5, min)
	assert.Equal(t, -4.5, max)
	assert.Equal(t, -4.5, avg)
}

func TestEmptyInput(t *testing.T) {
	_, err := MinTemperature(nil)
	assert.ErrorIs(t, err, ErrEmptyInput)
	_, err = MaxTemperature([]models.Reading{})
	assert.ErrorIs(t, err, ErrEmptyInput)
	_, err = AverageTemperature(nil)
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestMinByMaxBy_ForecastFields(t *testing.T) {
	rs := []models.Reading{
		{Temperature: 10, TempMin: 8, TempMax: 12},
		{Temperature: 14, TempMin: 11, TempMax: 17},
		{Temperature: 9, TempMin: 6, TempMax: 10},
	}
	min, err := MinBy(rs, func(r models.Reading) float64 { return r.TempMin })
	require.NoError(t, err)
	assert.Equal(t, 6.0, min)

	max, err := MaxBy(rs, func(r models.Reading) float64 { return r.TempMax })
	require.NoError(t, err)
	assert.Equal(t, 17.0, max)
}

// TestBounds checks min <= t <= max for every reading and min <= avg <= max on random input.
func TestBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		n := 1 + rng.Intn(48)
		temps := make([]float64, n)
		for j := range temps {
			temps[j] = rng.Float64()*120 - 40
		}
		rs := readings(temps...)

		min, err := MinTemperature(rs)
		require.NoError(t, err)
		max, err := MaxTemperature(rs)
		require.NoError(t, err)
		avg, err := AverageTemperature(rs)
		require.NoError(t, err)

		for _, v := range temps {
			assert.LessOrEqual(t, min, v)
			assert.GreaterOrEqual(t, max, v)
		}
		assert.LessOrEqual(t, min, avg+1e-9)
		assert.GreaterOrEqual(t, max, avg-1e-9)
	}
}
