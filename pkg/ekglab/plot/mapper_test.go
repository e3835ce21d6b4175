package plot

import (
	"math"
	"testing"

	"github.com/himanishpuri/EKGLab/pkg/ekglab/model"
)

const tolerance = 1e-9

func TestScales(t *testing.T) {
	m := NewMapper(model.DefaultViewport(), Surface{Width: 1100, Height: 500, Margin: DefaultMargin})

	ppmv, pps := m.Scales()
	if math.Abs(ppmv-100) > tolerance {
		t.Errorf("Expected 100 px/mV, got %f", ppmv)
	}
	if math.Abs(pps-500) > tolerance {
		t.Errorf("Expected 500 px/s, got %f", pps)
	}
}

func TestToPlotCorners(t *testing.T) {
	m := NewMapper(model.DefaultViewport(), Surface{Width: 1100, Height: 500, Margin: DefaultMargin})

	tests := []struct {
		name    string
		pixel   model.PixelPoint
		time    float64
		voltage float64
	}{
		{"top-left", model.PixelPoint{X: 50, Y: 50}, 0, 3},
		{"bottom-left", model.PixelPoint{X: 50, Y: 450}, 0, -1},
		{"bottom-right", model.PixelPoint{X: 1050, Y: 450}, 2, -1},
		{"zero line", model.PixelPoint{X: 300, Y: 350}, 0.5, 0},
	}

	for _, tt := range tests {
		got := m.ToPlot(tt.pixel)
		if math.Abs(got.Time-tt.time) > tolerance || math.Abs(got.Voltage-tt.voltage) > tolerance {
			t.Errorf("%s: ToPlot(%v) = %+v, expected (%f, %f)", tt.name, tt.pixel, got, tt.time, tt.voltage)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	viewports := []model.Viewport{
		model.DefaultViewport(),
		{MinVoltage: -2.5, MaxVoltage: 0.5, MaxTime: 10, TimeInterval: 1},
		{MinVoltage: 0.1, MaxVoltage: 0.2, MaxTime: 0.05, TimeInterval: 0.01},
	}
	surfaces := []Surface{
		{Width: 1100, Height: 500, Margin: 50},
		{Width: 333, Height: 171, Margin: 7},
	}

	for _, vp := range viewports {
		for _, s := range surfaces {
			m := NewMapper(vp, s)
			for x := s.Margin + 1; x < s.Width-s.Margin; x += 13.7 {
				for y := s.Margin + 1; y < s.Height-s.Margin; y += 9.3 {
					p := model.PixelPoint{X: x, Y: y}
					back := m.ToPixel(m.ToPlot(p))
					if math.Abs(back.X-x) > 1e-6 || math.Abs(back.Y-y) > 1e-6 {
						t.Fatalf("Round trip drifted for %v in %+v: got %v", p, vp, back)
					}
				}
			}
		}
	}
}

func TestContains(t *testing.T) {
	m := NewMapper(model.DefaultViewport(), Surface{Width: 200, Height: 100, Margin: 10})

	inside := []model.PixelPoint{{X: 10, Y: 10}, {X: 190, Y: 90}, {X: 100, Y: 50}}
	outside := []model.PixelPoint{{X: 9.9, Y: 50}, {X: 190.1, Y: 50}, {X: 100, Y: 9}, {X: 100, Y: 91}}

	for _, p := range inside {
		if !m.Contains(p) {
			t.Errorf("Expected %v inside the plot area", p)
		}
	}
	for _, p := range outside {
		if m.Contains(p) {
			t.Errorf("Expected %v outside the plot area", p)
		}
	}
}

func TestMapPolylineSkipsOutOfBounds(t *testing.T) {
	m := NewMapper(model.DefaultViewport(), Surface{Width: 1100, Height: 500, Margin: DefaultMargin})

	points := []model.PixelPoint{
		{X: 60, Y: 100},
		{X: 20, Y: 100}, // left margin
		{X: 70, Y: 100},
		{X: 80, Y: math.NaN()},
		{X: 90, Y: 480}, // bottom margin
		{X: 100, Y: 100},
	}

	got := m.MapPolyline(points)
	if len(got) != 3 {
		t.Fatalf("Expected 3 mapped points, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Time <= got[i-1].Time {
			t.Errorf("Expected input order preserved, got %v", got)
		}
	}
}

func TestTicks(t *testing.T) {
	times, voltages := Ticks(model.DefaultViewport())

	if len(times) != 11 {
		t.Errorf("Expected 11 time ticks, got %d: %v", len(times), times)
	}
	if math.Abs(times[len(times)-1]-2) > tolerance {
		t.Errorf("Expected last time tick at 2, got %f", times[len(times)-1])
	}
	if len(voltages) != 9 {
		t.Errorf("Expected 9 voltage ticks, got %d: %v", len(voltages), voltages)
	}
	if voltages[0] != -1 || voltages[len(voltages)-1] != 3 {
		t.Errorf("Expected voltage ticks from -1 to 3, got %v", voltages)
	}
}
