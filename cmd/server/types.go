package main

import (
	"fmt"
	"time"

	"github.com/himanishpuri/EKGLab/pkg/ekglab"
	"github.com/himanishpuri/EKGLab/pkg/ekglab/model"
)

// MaxPoints caps a single drawing upload (a full-width stroke at 1 px is ~1000).
const MaxPoints = 20000

// PointsRequest is the body for POST /api/analyze and POST /api/drawings.
type PointsRequest struct {
	// Name is only used when saving a drawing
	Name   string       `json:"name,omitempty"`
	Points [][2]float64 `json:"points"`
}

// Validate checks the point count
func (r *PointsRequest) Validate() error {
	if len(r.Points) > MaxPoints {
		return fmt.Errorf("too many points: %d (maximum: %d)", len(r.Points), MaxPoints)
	}
	return nil
}

func (r *PointsRequest) PixelPoints() []model.PixelPoint {
	out := make([]model.PixelPoint, len(r.Points))
	for i, p := range r.Points {
		out[i] = model.PixelPoint{X: p[0], Y: p[1]}
	}
	return out
}

// SendRequest is the body for POST /api/device/send
type SendRequest struct {
	// URL is the websocket endpoint of the device (ws:// or wss://)
	URL string `json:"url"`

	// Mode is "synthetic" to send a freshly generated waveform or "drawn"
	// to send the mapped samples of a saved drawing.
	Mode string `json:"mode"`

	// Drawing names the saved drawing in drawn mode
	Drawing string `json:"drawing,omitempty"`
}

func (r *SendRequest) Validate() error {
	if r.URL == "" {
		return fmt.Errorf("url is required")
	}
	switch ekglab.Mode(r.Mode) {
	case ekglab.ModeSynthetic:
	case ekglab.ModeDrawn:
		if r.Drawing == "" {
			return fmt.Errorf("drawing is required in drawn mode")
		}
	default:
		return fmt.Errorf("mode must be %q or %q", ekglab.ModeSynthetic, ekglab.ModeDrawn)
	}
	return nil
}

// SendResponse reports a completed device stream
type SendResponse struct {
	Message string `json:"message"`
	Lines   int    `json:"lines"`
}

// AnalysisResponse wraps an analysis; the sample list is dropped when the
// client asks for samples=false and only wants the verdict.
type AnalysisResponse struct {
	*ekglab.Analysis
	SampleCount int `json:"sample_count"`
}

func newAnalysisResponse(a *ekglab.Analysis, withSamples bool) AnalysisResponse {
	resp := AnalysisResponse{SampleCount: len(a.Samples)}
	cp := *a
	if !withSamples {
		cp.Samples = nil
	}
	resp.Analysis = &cp
	return resp
}

// DrawingDTO represents a drawing in API responses
type DrawingDTO struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Key       string       `json:"key"`
	Points    [][2]float64 `json:"points,omitempty"`
	UpdatedAt string       `json:"updated_at"`
}

func toDrawingDTO(d ekglab.Drawing) DrawingDTO {
	dto := DrawingDTO{
		ID:        d.ID,
		Name:      d.Name,
		Key:       d.Key,
		UpdatedAt: d.UpdatedAt.Format(time.RFC3339),
	}
	if len(d.Points) > 0 {
		dto.Points = make([][2]float64, len(d.Points))
		for i, p := range d.Points {
			dto.Points[i] = [2]float64{p.X, p.Y}
		}
	}
	return dto
}

// ListDrawingsResponse is the response for GET /api/drawings
type ListDrawingsResponse struct {
	Drawings []DrawingDTO `json:"drawings"`
	Count    int          `json:"count"`
}

// DeleteDrawingResponse is the response for DELETE /api/drawings/{name}
type DeleteDrawingResponse struct {
	Message string `json:"message"`
	Name    string `json:"name"`
}

// ErrorResponse is the standard error response format
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}
