// Package render draws a waveform and its fiducial markers as a PNG chart.
package render

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/himanishpuri/EKGLab/pkg/ekglab/model"
	"github.com/himanishpuri/EKGLab/pkg/ekglab/plot"
)

const (
	DefaultWidth  = 1100
	DefaultHeight = 500

	// labelOffset moves a marker label off the curve, in millivolts.
	labelOffset = 0.15
)

var ErrEmptySeries = errors.New("nothing to render")

type Options struct {
	Title     string
	Width     int
	Height    int
	LineColor string // #rrggbb
	LineWidth float64
	Viewport  model.Viewport
}

// Title formats the heading of a synthetic waveform chart.
func Title(rateHz float64, samplingMs float64) string {
	return fmt.Sprintf("EKG (f = %s Hz, TS = %s ms)",
		strconv.FormatFloat(rateHz, 'f', -1, 64), strconv.FormatFloat(samplingMs, 'f', -1, 64))
}

func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeColor: drawing.ColorTransparent,
		DotWidth:    4,
		DotColor:    col,
	}
}

// PNG renders samples as a line on the viewport grid and overlays markers.
// Markers whose side is "below" get their label under the curve.
func PNG(w io.Writer, samples []model.SamplePoint, markers []model.Fiducial, opts Options) error {
	if len(samples) < 2 {
		return ErrEmptySeries
	}
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}
	if opts.LineWidth <= 0 {
		opts.LineWidth = 2
	}
	lineColor := chart.ColorBlue
	if opts.LineColor != "" {
		lineColor = drawing.ColorFromHex(strings.TrimPrefix(opts.LineColor, "#"))
	}

	xs := make([]float64, len(samples))
	ys := make([]float64, len(samples))
	for i, s := range samples {
		xs[i], ys[i] = s.Time, s.Voltage
	}

	series := []chart.Series{
		chart.ContinuousSeries{
			Name:    "EKG",
			XValues: xs,
			YValues: ys,
			Style:   chart.Style{StrokeColor: lineColor, StrokeWidth: opts.LineWidth},
		},
	}

	if len(markers) > 0 {
		mx := make([]float64, len(markers))
		my := make([]float64, len(markers))
		notes := make([]chart.Value2, len(markers))
		for i, m := range markers {
			mx[i], my[i] = m.Time, m.Voltage
			y := m.Voltage + labelOffset
			if m.Side == model.SideBelow {
				y = m.Voltage - labelOffset
			}
			notes[i] = chart.Value2{XValue: m.Time, YValue: y, Label: string(m.Label)}
		}
		series = append(series,
			chart.ContinuousSeries{Name: "Fiducials", XValues: mx, YValues: my, Style: pointStyle(chart.ColorRed)},
			chart.AnnotationSeries{Annotations: notes},
		)
	}

	vp := opts.Viewport
	times, voltages := plot.Ticks(vp)

	ch := chart.Chart{
		Title:      opts.Title,
		Width:      opts.Width,
		Height:     opts.Height,
		Background: chart.Style{Padding: chart.Box{Top: 30, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:  "Time (s)",
			Range: &chart.ContinuousRange{Min: 0, Max: vp.MaxTime},
			Ticks: ticks(times, "%.1f"),
		},
		YAxis: chart.YAxis{
			Name:  "Voltage (mV)",
			Range: &chart.ContinuousRange{Min: vp.MinVoltage, Max: vp.MaxVoltage},
			Ticks: ticks(voltages, "%.1f"),
		},
		Series: series,
	}

	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

func ticks(values []float64, format string) []chart.Tick {
	out := make([]chart.Tick, len(values))
	for i, v := range values {
		out[i] = chart.Tick{Value: v, Label: fmt.Sprintf(format, v)}
	}
	return out
}
