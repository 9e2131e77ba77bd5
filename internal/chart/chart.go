// Package chart renders temperature series as PNG line charts.
package chart

import (
	"bytes"
	"errors"
	"fmt"

	gochart "github.com/wcharczuk/go-chart"
	"github.com/wcharczuk/go-chart/drawing"
)

var (
	ErrEmptyInput     = errors.New("chart: empty series")
	ErrLengthMismatch = errors.New("chart: x and y lengths differ")
)

const (
	width  = 800
	height = 400
)

var lineStyle = gochart.Style{
	Show:        true,
	StrokeColor: drawing.ColorFromHex("1f77b4"),
	StrokeWidth: 2,
}

// RenderLineChart draws y against x as a single line with named axes and returns PNG bytes.
func RenderLineChart(x, y []float64, xLabel, yLabel string) ([]byte, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(x), len(y))
	}
	if len(x) == 0 {
		return nil, ErrEmptyInput
	}

	graph := gochart.Chart{
		Width:  width,
		Height: height,
		XAxis: gochart.XAxis{
			Name:      xLabel,
			NameStyle: gochart.StyleShow(),
			Style:     gochart.StyleShow(),
			Range:     paddedRange(x),
		},
		YAxis: gochart.YAxis{
			Name:      yLabel,
			NameStyle: gochart.StyleShow(),
			Style:     gochart.StyleShow(),
			Range:     paddedRange(y),
		},
		Series: []gochart.Series{
			gochart.ContinuousSeries{
				Name:    yLabel,
				Style:   lineStyle,
				XValues: x,
				YValues: y,
			},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(gochart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	return buf.Bytes(), nil
}

// paddedRange widens a zero-width range (one point, or a flat line) so the renderer accepts it.
// Nil lets go-chart derive the range from the data.
func paddedRange(values []float64) gochart.Range {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if lo != hi {
		return nil
	}
	return &gochart.ContinuousRange{Min: lo - 1, Max: hi + 1}
}
