package validation

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kjstillabower/weather-explorer/internal/units"
)

func TestParseCurrent(t *testing.T) {
	req, err := ParseCurrent(url.Values{"city": {" Boston "}, "units": {"Metric"}})
	require.NoError(t, err)
	assert.Equal(t, "Boston", req.City)
	assert.Equal(t, units.Metric, req.Units)

	req, err = ParseCurrent(url.Values{"city": {"Boston"}})
	require.NoError(t, err)
	assert.Equal(t, units.Standard, req.Units, "missing units defaults to standard")
}

func TestParseCurrent_Invalid(t *testing.T) {
	tests := []struct {
		name string
		q    url.Values
		msg  string
	}{
		{name: "missing city", q: url.Values{"units": {"metric"}}, msg: "city is required"},
		{name: "unknown units", q: url.Values{"city": {"Boston"}, "units": {"rankine"}}, msg: "rankine"},
		{name: "bad characters", q: url.Values{"city": {"Bos/ton"}}, msg: "invalid characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCurrent(tt.q)
			require.ErrorIs(t, err, ErrInvalidRequest)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestParseDay(t *testing.T) {
	req, err := ParseDay(url.Values{"city": {"Boston"}, "date": {"2023-01-01"}, "units": {"imperial"}})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), req.Date)
	assert.Equal(t, int64(1672531200), req.Date.Unix())
	assert.Equal(t, units.Imperial, req.Units)
}

func TestParseDay_MalformedDate(t *testing.T) {
	for _, date := range []string{"2023-13-01", "01/02/2023", "", "2023-1-1"} {
		t.Run(date, func(t *testing.T) {
			_, err := ParseDay(url.Values{"city": {"Boston"}, "date": {date}, "units": {"metric"}})
			assert.ErrorIs(t, err, ErrInvalidRequest)
		})
	}
}

func TestParseGraph(t *testing.T) {
	req, err := ParseGraph(map[string]string{"lat": "42.36", "lon": "-71.06", "units": "imperial", "date": "2023-01-01"})
	require.NoError(t, err)
	assert.Equal(t, 42.36, req.Location.Lat)
	assert.Equal(t, -71.06, req.Location.Lon)
	assert.True(t, req.Location.Resolved)
	assert.Equal(t, units.Imperial, req.Units)
}

func TestParseGraph_Invalid(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
	}{
		{name: "latitude out of range", vars: map[string]string{"lat": "91", "lon": "0", "units": "metric", "date": "2023-01-01"}},
		{name: "longitude not a number", vars: map[string]string{"lat": "0", "lon": "east", "units": "metric", "date": "2023-01-01"}},
		{name: "bad units", vars: map[string]string{"lat": "0", "lon": "0", "units": "kelvin", "date": "2023-01-01"}},
		{name: "bad date", vars: map[string]string{"lat": "0", "lon": "0", "units": "metric", "date": "yesterday"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseGraph(tt.vars)
			assert.ErrorIs(t, err, ErrInvalidRequest)
		})
	}
}

func TestParseCoordinate(t *testing.T) {
	v, err := ParseCoordinate("-90", 90)
	require.NoError(t, err)
	assert.Equal(t, -90.0, v)

	_, err = ParseCoordinate("180.5", 180)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}
