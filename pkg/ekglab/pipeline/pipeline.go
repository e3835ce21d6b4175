// Package pipeline chains the pure stages of an analysis: synthesis or
// coordinate mapping, peak detection, feature extraction and classification.
// It has no storage or I/O so browser builds can run it directly.
package pipeline

import (
	"fmt"

	"github.com/himanishpuri/EKGLab/pkg/ekglab/classify"
	"github.com/himanishpuri/EKGLab/pkg/ekglab/detect"
	"github.com/himanishpuri/EKGLab/pkg/ekglab/features"
	"github.com/himanishpuri/EKGLab/pkg/ekglab/model"
	"github.com/himanishpuri/EKGLab/pkg/ekglab/plot"
	"github.com/himanishpuri/EKGLab/pkg/ekglab/render"
	"github.com/himanishpuri/EKGLab/pkg/ekglab/settings"
	"github.com/himanishpuri/EKGLab/pkg/ekglab/synth"
)

// Result is one pipeline run. Features, Verdict and Report are unset when
// Insufficient is true.
type Result struct {
	Title        string
	Samples      []model.SamplePoint
	Markers      []model.Fiducial
	Peaks        *model.PeakSet
	Features     *model.FeatureSummary
	Verdict      *model.Verdict
	Report       string
	Insufficient bool
}

// Synthetic generates a waveform from st and classifies it from its
// ground-truth fiducials.
func Synthetic(st settings.Settings) (*Result, error) {
	wf, err := synth.Synthesize(st.SynthConfig())
	if err != nil {
		return nil, fmt.Errorf("synthesis failed: %w", err)
	}

	fs := features.Extract(features.Synthetic{Fiducials: wf.Fiducials, HeartRateHz: st.Frequency})
	v := classify.Classify(fs, st.Ranges())

	return &Result{
		Title:    render.Title(st.Frequency, st.SamplingPeriod),
		Samples:  wf.Samples,
		Markers:  wf.DisplayFiducials(synth.MaxLabeledCycles),
		Features: &fs,
		Verdict:  &v,
		Report:   classify.Report(fs, st.Ranges(), v),
	}, nil
}

// Drawn maps raw surface points into plot space and classifies the trace
// from its detected peaks. Fewer than minSamples mapped samples yields an
// Insufficient result.
func Drawn(st settings.Settings, surface plot.Surface, points []model.PixelPoint, minSamples int) *Result {
	samples := plot.NewMapper(st.Viewport(), surface).MapPolyline(points)
	res := &Result{Samples: samples}
	if len(samples) < minSamples {
		res.Insufficient = true
		return res
	}

	peaks := detect.DetectPeaks(samples, st.Ranges())
	fs := features.Extract(features.Drawn{Peaks: peaks})
	v := classify.Classify(fs, st.Ranges())

	res.Peaks = &peaks
	res.Features = &fs
	res.Verdict = &v
	res.Report = classify.Report(fs, st.Ranges(), v)
	return res
}
