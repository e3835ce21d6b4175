package model

// SamplePoint is one point of a waveform in plot space.
// Time is in seconds, Voltage in millivolts.
type SamplePoint struct {
	Time    float64 `json:"time"`
	Voltage float64 `json:"voltage"`
}

// PixelPoint is a raw coordinate on the drawing surface, in device pixels.
type PixelPoint struct {
	X float64
	Y float64
}

// Label names one of the five canonical deflections of a cardiac cycle.
type Label string

const (
	LabelP Label = "P"
	LabelQ Label = "Q"
	LabelR Label = "R"
	LabelS Label = "S"
	LabelT Label = "T"
)

// Labels lists the deflections in the order they occur within a cycle.
var Labels = []Label{LabelP, LabelQ, LabelR, LabelS, LabelT}

// Side tells the renderer where to place a fiducial's label relative to the curve.
type Side string

const (
	SideAbove Side = "above"
	SideBelow Side = "below"
)

// SideOf returns the placement side for a label: P, R and T go above the
// curve, Q and S below.
func SideOf(l Label) Side {
	if l == LabelQ || l == LabelS {
		return SideBelow
	}
	return SideAbove
}

// Fiducial is the clinically named extremum of a single cardiac cycle.
type Fiducial struct {
	Time    float64 `json:"time"`
	Voltage float64 `json:"voltage"`
	Label   Label   `json:"label"`
	Side    Side    `json:"side"`
	Cycle   int     `json:"cycle"` // index of the cycle the point belongs to, -1 when unknown
}

// Peak is a positive local maximum found in an arbitrary series.
type Peak struct {
	Index   int     `json:"index"`
	Time    float64 `json:"time"`
	Voltage float64 `json:"voltage"`
}

// PeakSet holds amplitude-banded peaks, each slice in ascending time order.
type PeakSet struct {
	P   []Peak `json:"p"`
	QRS []Peak `json:"qrs"`
	T   []Peak `json:"t"`
}

// Empty reports whether no peak was classified into any band.
func (ps PeakSet) Empty() bool {
	return len(ps.P) == 0 && len(ps.QRS) == 0 && len(ps.T) == 0
}

// FeatureSummary holds the clinically meaningful measurements of a waveform.
// Amplitudes are in millivolts, intervals in seconds.
type FeatureSummary struct {
	HeartRateHz     float64 `json:"heart_rate_hz"`
	HeartRateBpm    float64 `json:"heart_rate_bpm"`
	PAmplitudeAvg   float64 `json:"p_amplitude_avg"`
	QRSAmplitudeAvg float64 `json:"qrs_amplitude_avg"`
	TAmplitudeAvg   float64 `json:"t_amplitude_avg"`
	PRInterval      float64 `json:"pr_interval"`
	QRSDuration     float64 `json:"qrs_duration"`
	QTInterval      float64 `json:"qt_interval"`
}

// Verdict is the outcome of classifying a FeatureSummary.
type Verdict struct {
	IsNormal bool     `json:"is_normal"`
	Reasons  []string `json:"reasons"`
}

// ReferenceRanges is the table of normal ranges the classifier compares against.
// QRSMax is kept for the settings document; the classifier and detector use
// QRSMaxLimit as the QRS upper bound.
type ReferenceRanges struct {
	FreqMin        float64 `json:"freqMin" mapstructure:"freqMin"`
	FreqMax        float64 `json:"freqMax" mapstructure:"freqMax"`
	PMin           float64 `json:"pMin" mapstructure:"pMin"`
	PMax           float64 `json:"pMax" mapstructure:"pMax"`
	QRSMin         float64 `json:"qrsMin" mapstructure:"qrsMin"`
	QRSMax         float64 `json:"qrsMax" mapstructure:"qrsMax"`
	QRSMaxLimit    float64 `json:"qrsMaxLimit" mapstructure:"qrsMaxLimit"`
	TMin           float64 `json:"tMin" mapstructure:"tMin"`
	TMax           float64 `json:"tMax" mapstructure:"tMax"`
	PRMin          float64 `json:"prMin" mapstructure:"prMin"`
	PRMax          float64 `json:"prMax" mapstructure:"prMax"`
	QRSDurationMax float64 `json:"qrsDurationMax" mapstructure:"qrsDurationMax"`
	QTMin          float64 `json:"qtMin" mapstructure:"qtMin"`
	QTMax          float64 `json:"qtMax" mapstructure:"qtMax"`
}

// DefaultReferenceRanges returns the normal-sinus reference table.
func DefaultReferenceRanges() ReferenceRanges {
	return ReferenceRanges{
		FreqMin:        1,
		FreqMax:        1.67,
		PMin:           0.1,
		PMax:           0.2,
		QRSMin:         0.5,
		QRSMax:         1.5,
		QRSMaxLimit:    3,
		TMin:           0.1,
		TMax:           0.5,
		PRMin:          0.12,
		PRMax:          0.20,
		QRSDurationMax: 0.12,
		QTMin:          0.36,
		QTMax:          0.44,
	}
}

// Viewport is the visible plot window.
type Viewport struct {
	MinVoltage   float64 `json:"minVoltage"`
	MaxVoltage   float64 `json:"maxVoltage"`
	MaxTime      float64 `json:"maxTime"`
	TimeInterval float64 `json:"timeInterval"`
}

// DefaultViewport returns a -1..3 mV by 2 s window with a 0.2 s grid.
func DefaultViewport() Viewport {
	return Viewport{
		MinVoltage:   -1,
		MaxVoltage:   3,
		MaxTime:      2,
		TimeInterval: 0.2,
	}
}
