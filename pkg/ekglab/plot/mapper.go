package plot

import (
	"math"

	"github.com/himanishpuri/EKGLab/pkg/ekglab/model"
)

// DefaultMargin is the padding, in pixels, between the surface edge and the plot area.
const DefaultMargin = 50

// VoltageTick is the spacing of horizontal grid lines in millivolts.
const VoltageTick = 0.5

// MaxGridLines bounds the tick count along either axis.
const MaxGridLines = 10_000

// Surface describes the drawing surface in device pixels.
type Surface struct {
	Width  float64
	Height float64
	Margin float64
}

// Mapper converts between surface pixels and (seconds, millivolts) plot space.
// The mapping is affine; ToPixel is the exact inverse of ToPlot.
type Mapper struct {
	Viewport model.Viewport
	Surface  Surface
}

// NewMapper returns a mapper for the given viewport and surface.
func NewMapper(vp model.Viewport, s Surface) Mapper {
	return Mapper{Viewport: vp, Surface: s}
}

// Scales returns pixels per millivolt and pixels per second.
func (m Mapper) Scales() (pixelsPerMillivolt, pixelsPerSecond float64) {
	pixelsPerMillivolt = (m.Surface.Height - 2*m.Surface.Margin) / (m.Viewport.MaxVoltage - m.Viewport.MinVoltage)
	pixelsPerSecond = (m.Surface.Width - 2*m.Surface.Margin) / m.Viewport.MaxTime
	return pixelsPerMillivolt, pixelsPerSecond
}

// ToPlot maps a pixel coordinate to plot space. No clamping is applied.
func (m Mapper) ToPlot(p model.PixelPoint) model.SamplePoint {
	ppmv, pps := m.Scales()
	return model.SamplePoint{
		Time:    (p.X - m.Surface.Margin) / pps,
		Voltage: m.Viewport.MaxVoltage - (p.Y-m.Surface.Margin)/ppmv,
	}
}

// ToPixel maps a plot-space point back to surface pixels.
func (m Mapper) ToPixel(s model.SamplePoint) model.PixelPoint {
	ppmv, pps := m.Scales()
	return model.PixelPoint{
		X: m.Surface.Margin + s.Time*pps,
		Y: m.Surface.Margin + (m.Viewport.MaxVoltage-s.Voltage)*ppmv,
	}
}

// Contains reports whether p lies inside the margins on both axes.
func (m Mapper) Contains(p model.PixelPoint) bool {
	s := m.Surface
	return p.X >= s.Margin && p.X <= s.Width-s.Margin &&
		p.Y >= s.Margin && p.Y <= s.Height-s.Margin
}

// MapPolyline converts a captured polyline to plot space, skipping points that
// fall outside the plot area. Order is preserved.
func (m Mapper) MapPolyline(points []model.PixelPoint) []model.SamplePoint {
	out := make([]model.SamplePoint, 0, len(points))
	for _, p := range points {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || !m.Contains(p) {
			continue
		}
		out = append(out, m.ToPlot(p))
	}
	return out
}

// Ticks returns the grid positions for a viewport: time ticks every
// TimeInterval seconds from 0 to MaxTime and voltage ticks every VoltageTick
// millivolts from MinVoltage to MaxVoltage.
func Ticks(vp model.Viewport) (times, voltages []float64) {
	if vp.TimeInterval > 0 {
		n := int(math.Floor(vp.MaxTime/vp.TimeInterval + 1e-9))
		for i := 0; i <= n; i++ {
			times = append(times, float64(i)*vp.TimeInterval)
		}
	}
	n := int(math.Floor((vp.MaxVoltage-vp.MinVoltage)/VoltageTick + 1e-9))
	for i := 0; i <= n; i++ {
		voltages = append(voltages, vp.MinVoltage+float64(i)*VoltageTick)
	}
	return times, voltages
}
