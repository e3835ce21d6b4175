// Package features turns detected peaks or ground-truth fiducials into a
// FeatureSummary.
//
// Drawn input only carries positive peaks, so its interval formulas are
// peak-based approximations; synthetic input measures QRS width and QT from
// the Q fiducial. The two sets of formulas differ on purpose and must stay
// that way.
package features

import (
	"github.com/himanishpuri/EKGLab/pkg/ekglab/model"
)

// Input is either Drawn or Synthetic.
type Input interface {
	isInput()
}

// Drawn carries peaks found by the detector on a freehand waveform.
type Drawn struct {
	Peaks model.PeakSet
}

// Synthetic carries the synthesizer's fiducials for every cycle and the
// configured heart rate, which is reported as-is.
type Synthetic struct {
	Fiducials   []model.Fiducial
	HeartRateHz float64
}

func (Drawn) isInput()     {}
func (Synthetic) isInput() {}

// Extract computes the feature summary for either input mode.
func Extract(in Input) model.FeatureSummary {
	switch v := in.(type) {
	case Drawn:
		return fromPeaks(v.Peaks)
	case Synthetic:
		return fromFiducials(v.Fiducials, v.HeartRateHz)
	default:
		return model.FeatureSummary{}
	}
}

func fromPeaks(ps model.PeakSet) model.FeatureSummary {
	var fs model.FeatureSummary

	if len(ps.QRS) >= 2 {
		var sum float64
		for i := 1; i < len(ps.QRS); i++ {
			sum += ps.QRS[i].Time - ps.QRS[i-1].Time
		}
		// A trace drawn right to left has a negative mean and a negative rate.
		if mean := sum / float64(len(ps.QRS)-1); mean != 0 {
			fs.HeartRateHz = 1 / mean
			fs.HeartRateBpm = fs.HeartRateHz * 60
		}
	}

	fs.PAmplitudeAvg = meanPeakVoltage(ps.P)
	fs.QRSAmplitudeAvg = meanPeakVoltage(ps.QRS)
	fs.TAmplitudeAvg = meanPeakVoltage(ps.T)

	if len(ps.P) > 0 && len(ps.QRS) > 0 && len(ps.T) > 0 {
		fs.PRInterval = ps.QRS[0].Time - ps.P[0].Time
		if len(ps.QRS) > 1 {
			fs.QRSDuration = ps.QRS[1].Time - ps.QRS[0].Time
		}
		fs.QTInterval = ps.T[0].Time - ps.QRS[0].Time
	}

	return fs
}

func fromFiducials(fids []model.Fiducial, rateHz float64) model.FeatureSummary {
	byLabel := make(map[model.Label][]model.Fiducial, len(model.Labels))
	for _, f := range fids {
		byLabel[f.Label] = append(byLabel[f.Label], f)
	}
	p, q, r, s, t := byLabel[model.LabelP], byLabel[model.LabelQ], byLabel[model.LabelR], byLabel[model.LabelS], byLabel[model.LabelT]

	fs := model.FeatureSummary{
		HeartRateHz:     rateHz,
		HeartRateBpm:    rateHz * 60,
		PAmplitudeAvg:   meanFiducialVoltage(p),
		QRSAmplitudeAvg: meanFiducialVoltage(r),
		TAmplitudeAvg:   meanFiducialVoltage(t),
	}

	if len(p) > 0 && len(q) > 0 && len(r) > 0 && len(s) > 0 && len(t) > 0 {
		fs.PRInterval = r[0].Time - p[0].Time
		fs.QRSDuration = s[0].Time - q[0].Time
		fs.QTInterval = t[0].Time - q[0].Time
	}

	return fs
}

func meanPeakVoltage(peaks []model.Peak) float64 {
	if len(peaks) == 0 {
		return 0
	}
	var sum float64
	for _, p := range peaks {
		sum += p.Voltage
	}
	return sum / float64(len(peaks))
}

func meanFiducialVoltage(fids []model.Fiducial) float64 {
	if len(fids) == 0 {
		return 0
	}
	var sum float64
	for _, f := range fids {
		sum += f.Voltage
	}
	return sum / float64(len(fids))
}
