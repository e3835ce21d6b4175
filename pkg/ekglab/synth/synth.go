package synth

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/himanishpuri/EKGLab/pkg/ekglab/model"
)

const (
	// ProgressScale compresses one cycle into normalized progress [0, 0.8).
	ProgressScale = 0.8
	// FiducialTolerance is the half-width, in progress units, of the window
	// around a wave center in which fiducial candidates are considered.
	FiducialTolerance = 0.005
	// MaxLabeledCycles caps how many cycles carry fiducial labels on a chart.
	MaxLabeledCycles = 5
	// DefaultWaveSpeed is the spread of the R bump.
	DefaultWaveSpeed = 100
	// MaxSamples bounds the length of one synthesized waveform.
	MaxSamples = 5_000_000
)

var ErrInvalidConfig = errors.New("invalid synthesizer config")

// Config holds the synthesizer inputs.
type Config struct {
	HeartRateHz    float64
	MaxTime        float64 // seconds
	SamplingPeriod time.Duration
	WaveSpeed      float64
}

// Validate rejects configurations that would produce no samples or a
// degenerate cycle length.
func (c Config) Validate() error {
	switch {
	case !(c.HeartRateHz > 0) || math.IsInf(c.HeartRateHz, 0):
		return fmt.Errorf("%w: heart rate must be positive, got %v", ErrInvalidConfig, c.HeartRateHz)
	case !(c.MaxTime > 0) || math.IsInf(c.MaxTime, 0):
		return fmt.Errorf("%w: max time must be positive, got %v", ErrInvalidConfig, c.MaxTime)
	case c.SamplingPeriod <= 0:
		return fmt.Errorf("%w: sampling period must be positive, got %v", ErrInvalidConfig, c.SamplingPeriod)
	case !(c.WaveSpeed > 0):
		return fmt.Errorf("%w: wave speed must be positive, got %v", ErrInvalidConfig, c.WaveSpeed)
	case SampleCount(c.MaxTime, c.SamplingPeriod) > MaxSamples:
		return fmt.Errorf("%w: %v over %vs exceeds %d samples", ErrInvalidConfig, c.SamplingPeriod, c.MaxTime, MaxSamples)
	}
	return nil
}

// SampleCount is the number of samples in [0, maxTime] at the given step.
// It is computed in floating point so huge ratios do not overflow.
func SampleCount(maxTime float64, step time.Duration) float64 {
	return math.Floor(maxTime/step.Seconds()+1e-9) + 1
}

// Wave is one Gaussian bump of the PQRST template:
// Amplitude * exp(-((u - Center) * Spread)^2).
type Wave struct {
	Label     model.Label
	Amplitude float64
	Center    float64
	Spread    float64
}

// At evaluates the bump at normalized progress u.
func (w Wave) At(u float64) float64 {
	d := (u - w.Center) * w.Spread
	return w.Amplitude * math.Exp(-d*d)
}

// Template returns the five bumps of one cycle. waveSpeed sets the R spread.
func Template(waveSpeed float64) []Wave {
	return []Wave{
		{Label: model.LabelP, Amplitude: 0.20, Center: 0.20, Spread: 35},
		{Label: model.LabelQ, Amplitude: -0.15, Center: 0.30, Spread: 80},
		{Label: model.LabelR, Amplitude: 1.50, Center: 0.35, Spread: waveSpeed},
		{Label: model.LabelS, Amplitude: -0.50, Center: 0.375, Spread: 150},
		{Label: model.LabelT, Amplitude: 0.45, Center: 0.60, Spread: 30},
	}
}

// Cycle is one cardiac cycle: samples with Start <= time < End.
type Cycle struct {
	Index int     `json:"index"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	first int     // index of the first sample in the cycle
	last  int     // index one past the last sample
}

// Waveform is the synthesizer output. Fiducials covers every cycle and is the
// set feature extraction must use; DisplayFiducials thins it for labeling.
type Waveform struct {
	Config    Config
	Samples   []model.SamplePoint
	Fiducials []model.Fiducial
	Cycles    []Cycle
}

// Synthesize generates a periodic PQRST waveform over [0, MaxTime] and the
// ground-truth fiducial of each label in each cycle.
func Synthesize(cfg Config) (*Waveform, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	period := 1 / cfg.HeartRateHz
	step := cfg.SamplingPeriod.Seconds()
	n := int(SampleCount(cfg.MaxTime, cfg.SamplingPeriod))

	samples := make([]model.SamplePoint, n)
	for i := range samples {
		samples[i].Time = float64(i) * step
	}

	cycles := cycleBounds(samples, period, cfg.MaxTime)
	waves := Template(cfg.WaveSpeed)

	// Widen the window on coarse grids so every center has a sample within reach.
	tol := math.Max(FiducialTolerance, ProgressScale*step/period/2+1e-9)

	fiducials := make([]model.Fiducial, 0, len(cycles)*len(waves))
	for _, c := range cycles {
		for i := c.first; i < c.last; i++ {
			u := progress(samples[i].Time, c.Start, period)
			var v float64
			for _, w := range waves {
				v += w.At(u)
			}
			samples[i].Voltage = v
		}
		for _, w := range waves {
			if f, ok := bestCandidate(samples, c, w, period, tol); ok {
				fiducials = append(fiducials, f)
			}
		}
	}

	return &Waveform{
		Config:    cfg,
		Samples:   samples,
		Fiducials: fiducials,
		Cycles:    cycles,
	}, nil
}

// cycleBounds finds the cycle start times: the samples where a reference
// square wave with the cycle period goes from its low half to its high half.
// A start at or beyond maxTime would hold no samples and is dropped.
func cycleBounds(samples []model.SamplePoint, period, maxTime float64) []Cycle {
	var cycles []Cycle
	high := false
	for i, s := range samples {
		phase := math.Mod(s.Time, period) / period
		nowHigh := phase < 0.5
		if nowHigh && !high && s.Time < maxTime {
			if len(cycles) > 0 {
				cycles[len(cycles)-1].End = s.Time
				cycles[len(cycles)-1].last = i
			}
			cycles = append(cycles, Cycle{Index: len(cycles), Start: s.Time, End: maxTime, first: i})
		}
		high = nowHigh
	}
	if len(cycles) > 0 {
		last := &cycles[len(cycles)-1]
		last.last = len(samples)
		for last.last > last.first && samples[last.last-1].Time >= last.End {
			last.last--
		}
	}
	return cycles
}

func progress(t, start, period float64) float64 {
	return (t - start) / period * ProgressScale
}

// bestCandidate folds the samples of a cycle that lie within tol of the wave
// center down to the one whose voltage is closest to the wave amplitude.
// Ties keep the earlier sample.
func bestCandidate(samples []model.SamplePoint, c Cycle, w Wave, period, tol float64) (model.Fiducial, bool) {
	best, bestDist := -1, math.Inf(1)
	for i := c.first; i < c.last; i++ {
		if math.Abs(progress(samples[i].Time, c.Start, period)-w.Center) >= tol {
			continue
		}
		if d := math.Abs(samples[i].Voltage - w.Amplitude); d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return model.Fiducial{}, false
	}
	return model.Fiducial{
		Time:    samples[best].Time,
		Voltage: samples[best].Voltage,
		Label:   w.Label,
		Side:    model.SideOf(w.Label),
		Cycle:   c.Index,
	}, true
}

// DisplayFiducials returns the fiducials to label on a chart. Cycles are
// partitioned into ceil(len(Cycles)/maxCycles)-sized groups and fiducials of
// cycles in the first maxCycles groups keep their labels. The full Fiducials
// slice is left untouched.
func (w *Waveform) DisplayFiducials(maxCycles int) []model.Fiducial {
	if maxCycles <= 0 || len(w.Cycles) == 0 {
		return nil
	}
	group := (len(w.Cycles) + maxCycles - 1) / maxCycles

	out := make([]model.Fiducial, 0, len(w.Fiducials))
	for _, f := range w.Fiducials {
		if f.Cycle/group < maxCycles {
			out = append(out, f)
		}
	}
	return out
}

// ByLabel returns the fiducials carrying the given label, in time order.
func ByLabel(fiducials []model.Fiducial, l model.Label) []model.Fiducial {
	var out []model.Fiducial
	for _, f := range fiducials {
		if f.Label == l {
			out = append(out, f)
		}
	}
	return out
}
