package detect

import (
	"github.com/himanishpuri/EKGLab/pkg/ekglab/model"
)

// Band identifies which amplitude band a peak was classified into.
type Band int

const (
	BandNone Band = iota
	BandQRS
	BandP
	BandT
)

func (b Band) String() string {
	switch b {
	case BandQRS:
		return "QRS"
	case BandP:
		return "P"
	case BandT:
		return "T"
	default:
		return "none"
	}
}

// Classify assigns a peak voltage to a band. Bands are tested in priority
// order QRS [qrsMin, qrsMaxLimit], then P [pMin, pMax], then T [tMin, tMax],
// so a voltage lands in at most one band.
func Classify(voltage float64, r model.ReferenceRanges) Band {
	switch {
	case voltage >= r.QRSMin && voltage <= r.QRSMaxLimit:
		return BandQRS
	case voltage >= r.PMin && voltage <= r.PMax:
		return BandP
	case voltage >= r.TMin && voltage <= r.TMax:
		return BandT
	default:
		return BandNone
	}
}

// DetectPeaks scans samples for strict interior local maxima and sorts them
// into P, QRS and T sets by amplitude. Only positive-going deflections are
// found, so Q and S never appear. Each set keeps the input order.
func DetectPeaks(samples []model.SamplePoint, r model.ReferenceRanges) model.PeakSet {
	var peaks model.PeakSet
	if len(samples) < 3 {
		return peaks
	}

	for i := 1; i < len(samples)-1; i++ {
		v := samples[i].Voltage
		if !(v > samples[i-1].Voltage && v > samples[i+1].Voltage) {
			continue
		}

		p := model.Peak{Index: i, Time: samples[i].Time, Voltage: v}
		switch Classify(v, r) {
		case BandQRS:
			peaks.QRS = append(peaks.QRS, p)
		case BandP:
			peaks.P = append(peaks.P, p)
		case BandT:
			peaks.T = append(peaks.T, p)
		}
	}

	return peaks
}
