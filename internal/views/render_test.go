package views

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/fstest"
	"time"
)

func mustLoad(t *testing.T) {
	t.Helper()
	if err := Load(); err != nil {
		t.Fatalf("Load(): %v", err)
	}
}

func TestLoad_success(t *testing.T) {
	mustLoad(t)
	for _, name := range pageFiles {
		if pages[name] == nil {
			t.Errorf("Load() left %s unparsed", name)
		}
	}
}

func TestLoadFromFS_failure(t *testing.T) {
	tests := []struct {
		name string
		fsys fstest.MapFS
	}{
		{name: "missing layout", fsys: fstest.MapFS{"templates/home.html": {Data: []byte(`{{define "content"}}{{end}}`)}}},
		{name: "bad syntax", fsys: fstest.MapFS{
			"templates/layout.html": {Data: []byte(`{{define "layout"}}{{template "content" .}}{{end}}`)},
			"templates/home.html":   {Data: []byte("{{ .")},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := pages
			t.Cleanup(func() { pages = prev })

			if err := loadFromFS(tt.fsys, "templates"); err == nil {
				t.Fatal("loadFromFS() = nil; want error")
			}
		})
	}
}

func TestRender_notLoaded(t *testing.T) {
	prev := pages
	pages = nil
	t.Cleanup(func() { pages = prev })

	var buf bytes.Buffer
	err := RenderHome(&buf, HomePage{})
	if !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("RenderHome() = %v; want ErrNotLoaded", err)
	}
}

func TestRenderHome(t *testing.T) {
	mustLoad(t)

	now := time.Date(2023, 6, 10, 12, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	if err := RenderHome(&buf, NewHomePage(now)); err != nil {
		t.Fatalf("RenderHome() = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"<!DOCTYPE html>", `min="2023-06-05"`, `max="2023-06-10"`, `min="2023-06-11"`, `max="2023-06-14"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestRenderCurrent(t *testing.T) {
	mustLoad(t)

	var buf bytes.Buffer
	err := RenderCurrent(&buf, CurrentPage{
		Date:        time.Date(2023, 6, 10, 0, 0, 0, 0, time.UTC),
		City:        "Boston",
		Description: "clear sky",
		Temperature: 18,
		Humidity:    40,
		WindSpeed:   5,
		UnitsLetter: "C",
	})
	if err != nil {
		t.Fatalf("RenderCurrent() = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Boston", "clear sky", "18 &deg;C", "40%", "n/a"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q; got %q", want, out)
		}
	}
}

func TestRenderHistorical_graphLink(t *testing.T) {
	mustLoad(t)

	var buf bytes.Buffer
	err := RenderHistorical(&buf, DayPage{
		City:        "Boston",
		Date:        time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		Lat:         42.36,
		Lon:         -71.06,
		Units:       "imperial",
		UnitsLetter: "F",
		Description: "light snow",
		Temperature: 35,
		Min:         30,
		Max:         50,
	})
	if err != nil {
		t.Fatalf("RenderHistorical() = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"/graph/42.36/-71.06/imperial/2023-01-01", "30 &deg;F", "50 &deg;F", "light snow"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q; got %q", want, out)
		}
	}
}

func TestRenderForecast(t *testing.T) {
	mustLoad(t)

	var buf bytes.Buffer
	err := RenderForecast(&buf, DayPage{City: "Oslo", UnitsLetter: "K", Temperature: 272.456})
	if err != nil {
		t.Fatalf("RenderForecast() = %v", err)
	}
	if !strings.Contains(buf.String(), "272.46") {
		t.Errorf("temperature not rounded to two places; got %q", buf.String())
	}
}

func TestRenderError(t *testing.T) {
	mustLoad(t)

	var buf bytes.Buffer
	err := RenderError(&buf, ErrorPage{Status: 404, Title: "Not Found", Message: "no such <city>", CorrelationID: "abc-123"})
	if err != nil {
		t.Fatalf("RenderError() = %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "404 Not Found") || !strings.Contains(out, "abc-123") {
		t.Errorf("output missing status or reference; got %q", out)
	}
	if strings.Contains(out, "<city>") {
		t.Error("message was not HTML-escaped")
	}
}

func TestRender_writeError(t *testing.T) {
	mustLoad(t)

	w := &failingWriter{err: io.ErrClosedPipe}
	if err := RenderHome(w, HomePage{}); err == nil {
		t.Fatal("RenderHome(failingWriter) = nil; want error")
	}
}

type failingWriter struct{ err error }

func (f *failingWriter) Write([]byte) (int, error) { return 0, f.err }
