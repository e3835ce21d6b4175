// Package settings holds the user-editable settings document: the display
// viewport, the synthesizer knobs and the classifier's reference ranges.
package settings

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"time"

	"github.com/himanishpuri/EKGLab/pkg/ekglab/model"
	"github.com/himanishpuri/EKGLab/pkg/ekglab/plot"
	"github.com/himanishpuri/EKGLab/pkg/ekglab/synth"
)

const EnvPrefix = "EKGLAB"

const (
	MinWaveSpeed = 50
	MaxWaveSpeed = 1000
)

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Settings is the flat settings document. SamplingPeriod is in milliseconds.
type Settings struct {
	MinVoltage     float64 `json:"minVoltage" mapstructure:"minVoltage"`
	MaxVoltage     float64 `json:"maxVoltage" mapstructure:"maxVoltage"`
	MaxTime        float64 `json:"maxTime" mapstructure:"maxTime"`
	TimeInterval   float64 `json:"timeInterval" mapstructure:"timeInterval"`
	Frequency      float64 `json:"frequency" mapstructure:"frequency"`
	SamplingPeriod float64 `json:"samplingPeriod" mapstructure:"samplingPeriod"`
	WaveSpeed      float64 `json:"waveSpeed" mapstructure:"waveSpeed"`
	LineWidth      float64 `json:"lineWidth" mapstructure:"lineWidth"`
	LineColor      string  `json:"lineColor" mapstructure:"lineColor"`

	model.ReferenceRanges `mapstructure:",squash"`
}

// ValidationError names the first field that failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid settings: %s %s", e.Field, e.Message)
}

func Defaults() Settings {
	return Settings{
		MinVoltage:      -1,
		MaxVoltage:      3,
		MaxTime:         2,
		TimeInterval:    0.2,
		Frequency:       1,
		SamplingPeriod:  1,
		WaveSpeed:       synth.DefaultWaveSpeed,
		LineWidth:       2,
		LineColor:       "#1a73e8",
		ReferenceRanges: model.DefaultReferenceRanges(),
	}
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Validate checks the document and returns a *ValidationError for the first
// violation, in field declaration order.
func (s Settings) Validate() error {
	for _, f := range s.numbers() {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return invalid(f.name, "must be a finite number")
		}
	}

	switch {
	case s.MinVoltage >= s.MaxVoltage:
		return invalid("minVoltage", "must be less than maxVoltage (%v >= %v)", s.MinVoltage, s.MaxVoltage)
	case (s.MaxVoltage-s.MinVoltage)/plot.VoltageTick > plot.MaxGridLines:
		return invalid("maxVoltage", "spans more than %d grid lines from minVoltage", plot.MaxGridLines)
	case s.MaxTime <= 0:
		return invalid("maxTime", "must be greater than 0")
	case s.TimeInterval <= 0 || s.TimeInterval > s.MaxTime:
		return invalid("timeInterval", "must be greater than 0 and at most maxTime")
	case s.MaxTime/s.TimeInterval > plot.MaxGridLines:
		return invalid("timeInterval", "gives more than %d grid lines over maxTime", plot.MaxGridLines)
	case s.Frequency <= 0:
		return invalid("frequency", "must be greater than 0")
	case s.SamplingPeriod <= 0 || s.SamplingDuration() <= 0:
		return invalid("samplingPeriod", "must be at least 1ns (0.000001 ms), got %v", s.SamplingPeriod)
	case synth.SampleCount(s.MaxTime, s.SamplingDuration()) > synth.MaxSamples:
		return invalid("samplingPeriod", "gives more than %d samples over maxTime", synth.MaxSamples)
	case s.WaveSpeed < MinWaveSpeed || s.WaveSpeed > MaxWaveSpeed:
		return invalid("waveSpeed", "must be between %d and %d", MinWaveSpeed, MaxWaveSpeed)
	case s.LineWidth <= 0:
		return invalid("lineWidth", "must be greater than 0")
	case !colorPattern.MatchString(s.LineColor):
		return invalid("lineColor", "must be a #rrggbb color, got %q", s.LineColor)
	}

	return validateRanges(s.ReferenceRanges)
}

func validateRanges(r model.ReferenceRanges) error {
	for _, f := range rangeFields(r) {
		if f.v < 0 {
			return invalid(f.name, "must not be negative")
		}
	}

	pairs := []struct {
		min, max string
		lo, hi   float64
	}{
		{"freqMin", "freqMax", r.FreqMin, r.FreqMax},
		{"pMin", "pMax", r.PMin, r.PMax},
		{"qrsMin", "qrsMax", r.QRSMin, r.QRSMax},
		{"qrsMax", "qrsMaxLimit", r.QRSMax, r.QRSMaxLimit},
		{"tMin", "tMax", r.TMin, r.TMax},
		{"prMin", "prMax", r.PRMin, r.PRMax},
		{"qtMin", "qtMax", r.QTMin, r.QTMax},
	}
	for _, p := range pairs {
		if p.lo >= p.hi {
			return invalid(p.min, "must be less than %s (%v >= %v)", p.max, p.lo, p.hi)
		}
	}
	return nil
}

type field struct {
	name string
	v    float64
}

func (s Settings) numbers() []field {
	return append([]field{
		{"minVoltage", s.MinVoltage},
		{"maxVoltage", s.MaxVoltage},
		{"maxTime", s.MaxTime},
		{"timeInterval", s.TimeInterval},
		{"frequency", s.Frequency},
		{"samplingPeriod", s.SamplingPeriod},
		{"waveSpeed", s.WaveSpeed},
		{"lineWidth", s.LineWidth},
	}, rangeFields(s.ReferenceRanges)...)
}

func rangeFields(r model.ReferenceRanges) []field {
	return []field{
		{"freqMin", r.FreqMin},
		{"freqMax", r.FreqMax},
		{"pMin", r.PMin},
		{"pMax", r.PMax},
		{"qrsMin", r.QRSMin},
		{"qrsMax", r.QRSMax},
		{"qrsMaxLimit", r.QRSMaxLimit},
		{"tMin", r.TMin},
		{"tMax", r.TMax},
		{"prMin", r.PRMin},
		{"prMax", r.PRMax},
		{"qrsDurationMax", r.QRSDurationMax},
		{"qtMin", r.QTMin},
		{"qtMax", r.QTMax},
	}
}

func (s Settings) Viewport() model.Viewport {
	return model.Viewport{
		MinVoltage:   s.MinVoltage,
		MaxVoltage:   s.MaxVoltage,
		MaxTime:      s.MaxTime,
		TimeInterval: s.TimeInterval,
	}
}

func (s Settings) Ranges() model.ReferenceRanges {
	return s.ReferenceRanges
}

func (s Settings) SamplingDuration() time.Duration {
	return time.Duration(s.SamplingPeriod * float64(time.Millisecond))
}

func (s Settings) SynthConfig() synth.Config {
	return synth.Config{
		HeartRateHz:    s.Frequency,
		MaxTime:        s.MaxTime,
		SamplingPeriod: s.SamplingDuration(),
		WaveSpeed:      s.WaveSpeed,
	}
}

// Parse decodes a JSON settings document over the defaults and validates it.
// Missing keys keep their default value.
func Parse(data []byte) (Settings, error) {
	s := Defaults()
	if err := json.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("failed to decode settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}
