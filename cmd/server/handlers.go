package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"

	"github.com/himanishpuri/EKGLab/pkg/ekglab"
	"github.com/himanishpuri/EKGLab/pkg/ekglab/settings"
	"github.com/himanishpuri/EKGLab/pkg/ekglab/transport"
	"github.com/himanishpuri/EKGLab/pkg/logger"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 4 << 20

// Server encapsulates the HTTP server and its dependencies
type Server struct {
	service   ekglab.Service
	config    *ServerConfig
	log       ekglab.Logger
	metrics   *Metrics
	accessLog io.Writer

	// dial opens the device connection; replaced in tests
	dial func(ctx context.Context, url string) (transport.Sink, error)
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	DBPath         string
	AllowedOrigins []string
	SendTimeout    time.Duration
}

// NewServer creates a new server instance
func NewServer(service ekglab.Service, config *ServerConfig) *Server {
	if config.SendTimeout <= 0 {
		config.SendTimeout = 5 * time.Minute
	}
	return &Server{
		service:   service,
		config:    config,
		log:       logger.GetLogger().WithPrefix("http"),
		metrics:   NewMetrics(),
		accessLog: os.Stdout,
		dial: func(ctx context.Context, url string) (transport.Sink, error) {
			return transport.DialWebSocket(ctx, url)
		},
	}
}

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Errorf("Failed to encode JSON response: %v", err)
	}
}

// respondError writes an error response
func (s *Server) respondError(w http.ResponseWriter, statusCode int, message string) {
	s.respondJSON(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	})
}

// respondServiceError maps service errors onto status codes
func (s *Server) respondServiceError(w http.ResponseWriter, err error, what string) {
	var verr *settings.ValidationError
	switch {
	case errors.As(err, &verr):
		s.respondError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, ekglab.ErrNotFound):
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("%s not found", what))
	case errors.Is(err, ekglab.ErrInvalidName):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		s.respondError(w, http.StatusGatewayTimeout, err.Error())
	default:
		s.log.Errorf("%s: %v", what, err)
		s.respondError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to process %s", what))
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.log.Warnf("Failed to decode request: %v", err)
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// handleRoot handles GET /
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{
		"service": "EKGLab API",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"health":         "GET /health",
			"metrics":        "GET /metrics",
			"settings":       "GET|PUT|DELETE /api/settings",
			"generate":       "POST /api/generate",
			"generateChart":  "GET /api/generate/chart.png",
			"analyze":        "POST /api/analyze",
			"drawings":       "GET|POST /api/drawings",
			"drawing":        "GET|DELETE /api/drawings/{name}",
			"analyzeDrawing": "POST /api/drawings/{name}/analyze",
			"deviceSend":     "POST /api/device/send",
		},
	})
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// handleGetSettings handles GET /api/settings
func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.service.Settings())
}

// handlePutSettings handles PUT /api/settings. Fields absent from the body
// keep their current values.
func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	st := s.service.Settings()
	if !s.decode(w, r, &st) {
		return
	}
	if err := s.service.UpdateSettings(r.Context(), st); err != nil {
		s.respondServiceError(w, err, "settings")
		return
	}
	s.respondJSON(w, http.StatusOK, s.service.Settings())
}

// handleResetSettings handles DELETE /api/settings
func (s *Server) handleResetSettings(w http.ResponseWriter, r *http.Request) {
	if err := s.service.ResetSettings(r.Context()); err != nil {
		s.respondServiceError(w, err, "settings")
		return
	}
	s.respondJSON(w, http.StatusOK, s.service.Settings())
}

func wantSamples(r *http.Request) bool {
	return r.URL.Query().Get("samples") != "false"
}

// handleGenerate handles POST /api/generate
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	a, err := s.service.Generate(r.Context())
	if err != nil {
		s.respondServiceError(w, err, "generation")
		return
	}
	s.metrics.Verdict(string(a.Mode), a.Verdict.IsNormal)
	s.respondJSON(w, http.StatusOK, newAnalysisResponse(a, wantSamples(r)))
}

// handleGenerateChart handles GET /api/generate/chart.png
func (s *Server) handleGenerateChart(w http.ResponseWriter, r *http.Request) {
	a, err := s.service.Generate(r.Context())
	if err != nil {
		s.respondServiceError(w, err, "generation")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if err := s.service.RenderChart(w, a); err != nil {
		// headers are already out, nothing more to send
		s.log.Errorf("Failed to render chart: %v", err)
	}
}

func (s *Server) respondAnalysis(w http.ResponseWriter, r *http.Request, a *ekglab.Analysis) {
	if a.Verdict != nil {
		s.metrics.Verdict(string(a.Mode), a.Verdict.IsNormal)
	}
	s.respondJSON(w, http.StatusOK, newAnalysisResponse(a, wantSamples(r)))
}

// handleAnalyze handles POST /api/analyze
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req PointsRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	a, err := s.service.AnalyzeDrawing(r.Context(), req.PixelPoints())
	if err != nil {
		s.respondServiceError(w, err, "analysis")
		return
	}
	s.respondAnalysis(w, r, a)
}

// handleListDrawings handles GET /api/drawings
func (s *Server) handleListDrawings(w http.ResponseWriter, r *http.Request) {
	drawings, err := s.service.ListDrawings(r.Context())
	if err != nil {
		s.respondServiceError(w, err, "drawings")
		return
	}

	dtos := make([]DrawingDTO, len(drawings))
	for i, d := range drawings {
		dtos[i] = toDrawingDTO(d)
	}
	s.respondJSON(w, http.StatusOK, ListDrawingsResponse{Drawings: dtos, Count: len(dtos)})
}

// handleSaveDrawing handles POST /api/drawings
func (s *Server) handleSaveDrawing(w http.ResponseWriter, r *http.Request) {
	var req PointsRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == "" {
		s.respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	d, err := s.service.SaveDrawing(r.Context(), req.Name, req.PixelPoints())
	if err != nil {
		s.respondServiceError(w, err, "drawing")
		return
	}
	s.respondJSON(w, http.StatusCreated, toDrawingDTO(*d))
}

// handleGetDrawing handles GET /api/drawings/{name}
func (s *Server) handleGetDrawing(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	d, err := s.service.GetDrawing(r.Context(), name)
	if err != nil {
		s.respondServiceError(w, err, fmt.Sprintf("drawing %q", name))
		return
	}
	s.respondJSON(w, http.StatusOK, toDrawingDTO(*d))
}

// handleDeleteDrawing handles DELETE /api/drawings/{name}
func (s *Server) handleDeleteDrawing(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if err := s.service.DeleteDrawing(r.Context(), name); err != nil {
		s.respondServiceError(w, err, fmt.Sprintf("drawing %q", name))
		return
	}
	s.respondJSON(w, http.StatusOK, DeleteDrawingResponse{
		Message: "Drawing deleted successfully",
		Name:    name,
	})
}

// handleAnalyzeDrawing handles POST /api/drawings/{name}/analyze
func (s *Server) handleAnalyzeDrawing(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	a, err := s.service.AnalyzeSavedDrawing(r.Context(), name)
	if err != nil {
		s.respondServiceError(w, err, fmt.Sprintf("drawing %q", name))
		return
	}
	s.respondAnalysis(w, r, a)
}

// handleDeviceSend handles POST /api/device/send. The request blocks until
// the whole waveform and END have been written.
func (s *Server) handleDeviceSend(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.config.SendTimeout)
	defer cancel()

	var req SendRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var a *ekglab.Analysis
	var err error
	if ekglab.Mode(req.Mode) == ekglab.ModeDrawn {
		a, err = s.service.AnalyzeSavedDrawing(ctx, req.Drawing)
	} else {
		a, err = s.service.Generate(ctx)
	}
	if err != nil {
		s.respondServiceError(w, err, "waveform")
		return
	}
	if len(a.Samples) == 0 {
		s.respondError(w, http.StatusBadRequest, "waveform has no samples")
		return
	}

	sink, err := s.dial(ctx, req.URL)
	if err != nil {
		s.log.Warnf("Device dial failed: %v", err)
		s.respondError(w, http.StatusBadGateway, fmt.Sprintf("Failed to reach device: %v", err))
		return
	}
	defer sink.Close()

	if err := s.service.SendSamples(ctx, sink, a.Samples); err != nil {
		s.log.Errorf("Device stream failed: %v", err)
		s.respondError(w, http.StatusBadGateway, err.Error())
		return
	}

	lines := len(a.Samples) + 1
	s.metrics.DeviceLines(lines)
	s.respondJSON(w, http.StatusOK, SendResponse{
		Message: "Waveform sent",
		Lines:   lines,
	})
}
