package ekglab

import (
	"time"

	"github.com/himanishpuri/EKGLab/pkg/ekglab/model"
	"github.com/himanishpuri/EKGLab/pkg/ekglab/settings"
)

// Status tells whether an analysis produced features.
type Status string

const (
	StatusOK Status = "ok"
	// StatusInsufficientData means the input had too few samples; no
	// features or verdict were computed.
	StatusInsufficientData Status = "insufficient_data"
)

type Mode string

const (
	ModeSynthetic Mode = "synthetic"
	ModeDrawn     Mode = "drawn"
)

// Analysis is the outcome of one pipeline run.
type Analysis struct {
	Mode     Mode                  `json:"mode"`
	Status   Status                `json:"status"`
	Title    string                `json:"title,omitempty"`
	Samples  []model.SamplePoint   `json:"samples"`
	Markers  []model.Fiducial      `json:"markers,omitempty"` // fiducials to label on a chart
	Peaks    *model.PeakSet        `json:"peaks,omitempty"`   // drawn mode only
	Features *model.FeatureSummary `json:"features,omitempty"`
	Verdict  *model.Verdict        `json:"verdict,omitempty"`
	Report   string                `json:"report,omitempty"`
	Settings settings.Settings     `json:"settings"`
}

// Drawing is a saved freehand polyline.
type Drawing struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Key       string             `json:"key"`
	Points    []model.PixelPoint `json:"points,omitempty"`
	UpdatedAt time.Time          `json:"updated_at"`
}
