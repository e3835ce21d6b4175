package ekglab

import (
	"context"
	"io"

	"github.com/himanishpuri/EKGLab/pkg/ekglab/model"
	"github.com/himanishpuri/EKGLab/pkg/ekglab/settings"
	"github.com/himanishpuri/EKGLab/pkg/ekglab/transport"
)

type Service interface {
	Settings() settings.Settings
	UpdateSettings(ctx context.Context, s settings.Settings) error
	ResetSettings(ctx context.Context) error

	Generate(ctx context.Context) (*Analysis, error)
	AnalyzeDrawing(ctx context.Context, points []model.PixelPoint) (*Analysis, error)
	AnalyzeSavedDrawing(ctx context.Context, name string) (*Analysis, error)
	RenderChart(w io.Writer, a *Analysis) error

	SaveDrawing(ctx context.Context, name string, points []model.PixelPoint) (*Drawing, error)
	GetDrawing(ctx context.Context, name string) (*Drawing, error)
	ListDrawings(ctx context.Context) ([]Drawing, error)
	DeleteDrawing(ctx context.Context, name string) error

	SendSamples(ctx context.Context, sink transport.Sink, samples []model.SamplePoint) error
	Close() error
}

type Storage interface {
	SaveSettings(body []byte) error
	LoadSettings() ([]byte, error)
	DeleteSettings() error
	SaveDrawing(name string, points []model.PixelPoint) (*Drawing, error)
	GetDrawing(name string) (*Drawing, error)
	ListDrawings() ([]Drawing, error)
	DeleteDrawing(name string) error
	Close() error
}

type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
}
