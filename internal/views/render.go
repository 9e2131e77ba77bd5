// Package views renders the HTML pages. Templates are embedded and must be loaded once at
// startup with Load before any Render call.
package views

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"math"
	"strconv"
	"time"
)

//go:embed templates/*.html
var viewsFS embed.FS

const layoutFile = "layout.html"

const (
	pageHome       = "home.html"
	pageResults    = "results.html"
	pageHistorical = "historical_results.html"
	pageForecast   = "forecast_results.html"
	pageError      = "error.html"
)

var pageFiles = []string{pageHome, pageResults, pageHistorical, pageForecast, pageError}

// ErrNotLoaded is returned by Render functions called before Load.
var ErrNotLoaded = errors.New("templates not loaded: call views.Load during startup")

var pages map[string]*template.Template

var funcs = template.FuncMap{
	"isoDate":  func(t time.Time) string { return t.Format("2006-01-02") },
	"longDate": func(t time.Time) string { return t.Format("Monday, January 2, 2006") },
	"clock":    clock,
	"temp":     formatTemperature,
}

// Load parses the embedded templates. If it returns an error, do not start the server.
func Load() error {
	return loadFromFS(viewsFS, "templates")
}

// loadFromFS parses layout plus one page per template set. Each page gets its own clone of
// the layout because every page defines "title" and "content".
func loadFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	layout, err := template.New(layoutFile).Funcs(funcs).ParseFS(sub, layoutFile)
	if err != nil {
		return fmt.Errorf("parse %s: %w", layoutFile, err)
	}

	parsed := make(map[string]*template.Template, len(pageFiles))
	for _, name := range pageFiles {
		base, err := layout.Clone()
		if err != nil {
			return err
		}
		t, err := base.ParseFS(sub, name)
		if err != nil {
			return fmt.Errorf("parse %s: %w", name, err)
		}
		parsed[name] = t
	}
	pages = parsed
	return nil
}

func render(w io.Writer, page string, data interface{}) error {
	t, ok := pages[page]
	if !ok {
		return fmt.Errorf("%w (%s)", ErrNotLoaded, page)
	}
	return t.ExecuteTemplate(w, "layout", data)
}

// HomePage carries the date bounds for the historical and forecast pickers.
type HomePage struct {
	MinDate     time.Time
	MaxDate     time.Time
	FutureStart time.Time
	FutureEnd   time.Time
}

// NewHomePage derives the picker bounds from now: five days back, four days ahead.
func NewHomePage(now time.Time) HomePage {
	return HomePage{
		MinDate:     now.AddDate(0, 0, -5),
		MaxDate:     now,
		FutureStart: now.AddDate(0, 0, 1),
		FutureEnd:   now.AddDate(0, 0, 4),
	}
}

type CurrentPage struct {
	Date        time.Time
	City        string
	Description string
	Temperature float64
	Humidity    int
	WindSpeed   float64
	Sunrise     time.Time
	Sunset      time.Time
	UnitsLetter string
}

// DayPage is shared by the historical and forecast results.
type DayPage struct {
	City        string
	Date        time.Time
	Lat         float64
	Lon         float64
	Units       string
	UnitsLetter string
	Description string
	Temperature float64
	Min         float64
	Max         float64
}

// GraphURL points at the hourly chart for this day.
func (p DayPage) GraphURL() string {
	return fmt.Sprintf("/graph/%s/%s/%s/%s",
		strconv.FormatFloat(p.Lat, 'f', -1, 64),
		strconv.FormatFloat(p.Lon, 'f', -1, 64),
		p.Units,
		p.Date.Format("2006-01-02"))
}

type ErrorPage struct {
	Status        int
	Title         string
	Message       string
	CorrelationID string
}

func RenderHome(w io.Writer, data HomePage) error {
	return render(w, pageHome, data)
}

func RenderCurrent(w io.Writer, data CurrentPage) error {
	return render(w, pageResults, data)
}

func RenderHistorical(w io.Writer, data DayPage) error {
	return render(w, pageHistorical, data)
}

func RenderForecast(w io.Writer, data DayPage) error {
	return render(w, pageForecast, data)
}

func RenderError(w io.Writer, data ErrorPage) error {
	return render(w, pageError, data)
}

func clock(t time.Time) string {
	if t.IsZero() {
		return "n/a"
	}
	return t.Format("15:04:05")
}

// formatTemperature drops trailing zeros: 18 -> "18", 18.456 -> "18.46".
func formatTemperature(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
