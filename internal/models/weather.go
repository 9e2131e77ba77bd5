package models

import (
	"time"

	"github.com/kjstillabower/weather-explorer/internal/units"
)

// Reading is one timestamped observation returned by the weather API.
// TempMin/TempMax are only set for forecast entries; Humidity and WindSpeed only for current conditions.
type Reading struct {
	Time        time.Time `json:"time"`
	Description string    `json:"description"`
	Temperature float64   `json:"temperature"`
	TempMin     float64   `json:"tempMin,omitempty"`
	TempMax     float64   `json:"tempMax,omitempty"`
	Humidity    int       `json:"humidity,omitempty"`
	WindSpeed   float64   `json:"windSpeed,omitempty"`
}

// Location is a latitude/longitude pair. The zero value is the (0,0) sentinel for
// "could not resolve"; Resolved is true only when coordinates came from the caller or a geocoder hit.
type Location struct {
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Name     string  `json:"name,omitempty"`
	Resolved bool    `json:"resolved"`
}

// CurrentConditions is the parsed payload of the current weather endpoint.
type CurrentConditions struct {
	City    string
	Reading Reading
	Sunrise time.Time
	Sunset  time.Time
}

// TimeMachine is the parsed payload of the historical endpoint: a current reading plus the day's hourly series.
type TimeMachine struct {
	Current Reading
	Hourly  []Reading
}

// ForecastEntry is one entry of the hourly forecast list, tagged with the upstream dt_txt string.
type ForecastEntry struct {
	DateText string
	Reading  Reading
}

// DaySummary is the aggregate for a single calendar day, used by the historical and forecast views.
type DaySummary struct {
	City        string
	Date        time.Time
	Location    Location
	Units       units.System
	Description string
	Temperature float64
	Min         float64
	Max         float64
}
