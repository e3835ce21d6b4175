package ekglab

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/himanishpuri/EKGLab/pkg/ekglab/model"
	"github.com/himanishpuri/EKGLab/pkg/ekglab/pipeline"
	"github.com/himanishpuri/EKGLab/pkg/ekglab/render"
	"github.com/himanishpuri/EKGLab/pkg/ekglab/settings"
	"github.com/himanishpuri/EKGLab/pkg/ekglab/transport"
	"github.com/himanishpuri/EKGLab/pkg/logger"
)

var ErrNoSamples = errors.New("no samples")

// ekgService is the default implementation of the Service interface.
type ekgService struct {
	storage Storage
	log     Logger
	config  *Config
	current atomic.Pointer[settings.Settings]
}

func NewService(opts ...Option) (Service, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	// Set default logger if none provided
	if cfg.Logger == nil {
		cfg.Logger = logger.GetLogger()
	}
	if cfg.MinSamples <= 0 {
		cfg.MinSamples = DefaultMinSamples
	}

	// Create or use provided storage
	var stor Storage
	var err error
	if cfg.Storage != nil {
		stor = cfg.Storage
	} else {
		stor, err = NewSQLiteStorage(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage: %w", err)
		}
	}

	s := &ekgService{
		storage: stor,
		log:     cfg.Logger,
		config:  cfg,
	}
	initial := s.loadStoredSettings()
	s.current.Store(&initial)

	return s, nil
}

// loadStoredSettings returns the persisted settings, or the defaults when
// none are stored or the stored document does not validate.
func (s *ekgService) loadStoredSettings() settings.Settings {
	body, err := s.storage.LoadSettings()
	if errors.Is(err, ErrNotFound) {
		return settings.Defaults()
	}
	if err != nil {
		s.log.Warnf("Failed to load settings, using defaults: %v", err)
		return settings.Defaults()
	}

	st, err := settings.Parse(body)
	if err != nil {
		s.log.Warnf("Stored settings rejected, using defaults: %v", err)
		return settings.Defaults()
	}
	return st
}

// Settings returns the live settings snapshot.
func (s *ekgService) Settings() settings.Settings {
	return *s.current.Load()
}

// UpdateSettings validates, persists and then swaps in new settings. An
// invalid document leaves the live settings untouched.
func (s *ekgService) UpdateSettings(ctx context.Context, st settings.Settings) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := st.Validate(); err != nil {
		return err
	}

	body, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := s.storage.SaveSettings(body); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	s.current.Store(&st)
	s.log.Infof("Settings updated (f=%.2f Hz, TS=%v ms)", st.Frequency, st.SamplingPeriod)
	return nil
}

func (s *ekgService) ResetSettings(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.storage.DeleteSettings(); err != nil {
		return fmt.Errorf("failed to delete settings: %w", err)
	}
	d := settings.Defaults()
	s.current.Store(&d)
	s.log.Infof("Settings reset to defaults")
	return nil
}

// Generate synthesizes a waveform from the current settings and classifies
// it from its ground-truth fiducials.
func (s *ekgService) Generate(ctx context.Context) (*Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snap := s.Settings()

	res, err := pipeline.Synthetic(snap)
	if err != nil {
		return nil, err
	}
	s.log.Debugf("Synthesized %d samples, %d markers", len(res.Samples), len(res.Markers))
	return newAnalysis(ModeSynthetic, snap, res), nil
}

// AnalyzeDrawing maps raw surface points into plot space and classifies the
// drawn waveform from its detected peaks.
func (s *ekgService) AnalyzeDrawing(ctx context.Context, points []model.PixelPoint) (*Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snap := s.Settings()

	res := pipeline.Drawn(snap, s.config.Surface, points, s.config.MinSamples)
	if res.Insufficient {
		s.log.Debugf("Drawing has %d samples, need %d", len(res.Samples), s.config.MinSamples)
	}
	return newAnalysis(ModeDrawn, snap, res), nil
}

func newAnalysis(mode Mode, snap settings.Settings, res *pipeline.Result) *Analysis {
	a := &Analysis{
		Mode:     mode,
		Status:   StatusOK,
		Title:    res.Title,
		Samples:  res.Samples,
		Markers:  res.Markers,
		Peaks:    res.Peaks,
		Features: res.Features,
		Verdict:  res.Verdict,
		Report:   res.Report,
		Settings: snap,
	}
	if res.Insufficient {
		a.Status = StatusInsufficientData
	}
	return a
}

func (s *ekgService) AnalyzeSavedDrawing(ctx context.Context, name string) (*Analysis, error) {
	d, err := s.GetDrawing(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.AnalyzeDrawing(ctx, d.Points)
}

// RenderChart draws the analysis samples and markers with the line style of
// the settings it was computed with.
func (s *ekgService) RenderChart(w io.Writer, a *Analysis) error {
	if a == nil || len(a.Samples) == 0 {
		return ErrNoSamples
	}
	return render.PNG(w, a.Samples, a.Markers, render.Options{
		Title:     a.Title,
		Width:     int(s.config.Surface.Width),
		Height:    int(s.config.Surface.Height),
		LineColor: a.Settings.LineColor,
		LineWidth: a.Settings.LineWidth,
		Viewport:  a.Settings.Viewport(),
	})
}

func (s *ekgService) SaveDrawing(ctx context.Context, name string, points []model.PixelPoint) (*Drawing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d, err := s.storage.SaveDrawing(name, points)
	if err != nil {
		return nil, err
	}
	s.log.Infof("Saved drawing %s (%d points)", name, len(points))
	return d, nil
}

func (s *ekgService) GetDrawing(ctx context.Context, name string) (*Drawing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.storage.GetDrawing(name)
}

func (s *ekgService) ListDrawings(ctx context.Context) ([]Drawing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.storage.ListDrawings()
}

func (s *ekgService) DeleteDrawing(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.storage.DeleteDrawing(name); err != nil {
		return err
	}
	s.log.Infof("Deleted drawing %s", name)
	return nil
}

// SendSamples streams samples to a device line by line, then END.
func (s *ekgService) SendSamples(ctx context.Context, sink transport.Sink, samples []model.SamplePoint) error {
	if len(samples) == 0 {
		return ErrNoSamples
	}
	s.log.Infof("Sending %d samples to device", len(samples))
	if err := transport.Stream(ctx, sink, samples, s.config.Pace); err != nil {
		return fmt.Errorf("device stream failed: %w", err)
	}
	s.log.Infof("Device stream complete")
	return nil
}

// Close releases all resources held by the service.
func (s *ekgService) Close() error {
	return s.storage.Close()
}
