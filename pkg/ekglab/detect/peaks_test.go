package detect

import (
	"testing"
	"time"

	"github.com/himanishpuri/EKGLab/pkg/ekglab/model"
	"github.com/himanishpuri/EKGLab/pkg/ekglab/synth"
)

func series(voltages ...float64) []model.SamplePoint {
	out := make([]model.SamplePoint, len(voltages))
	for i, v := range voltages {
		out[i] = model.SamplePoint{Time: float64(i) * 0.01, Voltage: v}
	}
	return out
}

func TestDetectPeaksFlatSeries(t *testing.T) {
	flat := make([]float64, 200)
	for i := range flat {
		flat[i] = 0.15
	}

	peaks := DetectPeaks(series(flat...), model.DefaultReferenceRanges())

	if !peaks.Empty() {
		t.Errorf("Expected no peaks from a flat series, got %+v", peaks)
	}
}

func TestDetectPeaksShortSeries(t *testing.T) {
	r := model.DefaultReferenceRanges()

	if got := DetectPeaks(nil, r); !got.Empty() {
		t.Error("Expected no peaks from empty input")
	}
	if got := DetectPeaks(series(0, 1), r); !got.Empty() {
		t.Error("Expected no peaks from two samples")
	}
}

func TestDetectPeaksBands(t *testing.T) {
	// P (0.15), QRS (1.2), T (0.3), out of band (5.0), plateau (0.15, 0.15)
	s := series(0, 0.15, 0, 1.2, 0, 0.3, 0, 5.0, 0, 0.15, 0.15, 0)

	peaks := DetectPeaks(s, model.DefaultReferenceRanges())

	if len(peaks.P) != 1 || peaks.P[0].Voltage != 0.15 || peaks.P[0].Index != 1 {
		t.Errorf("Unexpected P peaks: %+v", peaks.P)
	}
	if len(peaks.QRS) != 1 || peaks.QRS[0].Voltage != 1.2 {
		t.Errorf("Unexpected QRS peaks: %+v", peaks.QRS)
	}
	if len(peaks.T) != 1 || peaks.T[0].Voltage != 0.3 {
		t.Errorf("Unexpected T peaks: %+v", peaks.T)
	}
}

func TestDetectPeaksEndpointsIgnored(t *testing.T) {
	peaks := DetectPeaks(series(1.2, 0, 0, 1.2), model.DefaultReferenceRanges())
	if !peaks.Empty() {
		t.Errorf("Endpoints must never be peaks, got %+v", peaks)
	}
}

func TestClassifyPriority(t *testing.T) {
	r := model.DefaultReferenceRanges()
	// Overlapping bands: P and T share [0.1, 0.2], QRS and T share nothing by default.
	r.TMax = 0.6
	r.QRSMin = 0.5

	tests := []struct {
		voltage  float64
		expected Band
	}{
		{0.15, BandP},   // P wins over T
		{0.55, BandQRS}, // QRS wins over T
		{0.3, BandT},
		{3.0, BandQRS},
		{3.01, BandNone},
		{0.05, BandNone},
		{-0.4, BandNone},
	}

	for _, tt := range tests {
		if got := Classify(tt.voltage, r); got != tt.expected {
			t.Errorf("Classify(%f) = %s, expected %s", tt.voltage, got, tt.expected)
		}
	}
}

func TestDetectPeaksExclusive(t *testing.T) {
	wf, err := synth.Synthesize(synth.Config{HeartRateHz: 1.2, MaxTime: 4, SamplingPeriod: time.Millisecond, WaveSpeed: 100})
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}

	peaks := DetectPeaks(wf.Samples, model.DefaultReferenceRanges())

	seen := map[int]string{}
	for name, set := range map[string][]model.Peak{"P": peaks.P, "QRS": peaks.QRS, "T": peaks.T} {
		for i, p := range set {
			if prev, dup := seen[p.Index]; dup {
				t.Errorf("Sample %d classified as both %s and %s", p.Index, prev, name)
			}
			seen[p.Index] = name
			if i > 0 && p.Time <= set[i-1].Time {
				t.Errorf("%s peaks not in time order", name)
			}
		}
	}

	if len(peaks.QRS) == 0 || len(peaks.P) == 0 || len(peaks.T) == 0 {
		t.Errorf("Expected P, QRS and T peaks on a synthetic waveform, got %d/%d/%d",
			len(peaks.P), len(peaks.QRS), len(peaks.T))
	}
}
