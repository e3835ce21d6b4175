package ekglab

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/himanishpuri/EKGLab/pkg/ekglab/model"
	"github.com/himanishpuri/EKGLab/pkg/ekglab/plot"
	"github.com/himanishpuri/EKGLab/pkg/ekglab/settings"
	"github.com/himanishpuri/EKGLab/pkg/ekglab/synth"
	"github.com/himanishpuri/EKGLab/pkg/logger"
)

// memStorage keeps everything in maps.
type memStorage struct {
	mu       sync.Mutex
	settings []byte
	drawings map[string]*Drawing
}

func newMemStorage() *memStorage {
	return &memStorage{drawings: map[string]*Drawing{}}
}

func (m *memStorage) SaveSettings(body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = append([]byte(nil), body...)
	return nil
}

func (m *memStorage) LoadSettings() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.settings == nil {
		return nil, ErrNotFound
	}
	return m.settings, nil
}

func (m *memStorage) DeleteSettings() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = nil
	return nil
}

func (m *memStorage) SaveDrawing(name string, points []model.PixelPoint) (*Drawing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := &Drawing{ID: name, Name: name, Points: points}
	m.drawings[name] = d
	return d, nil
}

func (m *memStorage) GetDrawing(name string) (*Drawing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drawings[name]
	if !ok {
		return nil, ErrNotFound
	}
	return d, nil
}

func (m *memStorage) ListDrawings() ([]Drawing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Drawing
	for _, d := range m.drawings {
		out = append(out, *d)
	}
	return out, nil
}

func (m *memStorage) DeleteDrawing(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.drawings[name]; !ok {
		return ErrNotFound
	}
	delete(m.drawings, name)
	return nil
}

func (m *memStorage) Close() error { return nil }

type recordingSink struct {
	lines []string
}

func (r *recordingSink) Send(_ context.Context, line string) error {
	r.lines = append(r.lines, line)
	return nil
}

func (r *recordingSink) Close() error { return nil }

func quietLogger() Logger {
	return logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard})
}

func newTestService(t *testing.T, opts ...Option) (Service, *memStorage) {
	t.Helper()
	stor := newMemStorage()
	svc, err := NewService(append([]Option{WithStorage(stor), WithLogger(quietLogger())}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })
	return svc, stor
}

func TestGenerateDefaultsIsNormal(t *testing.T) {
	svc, _ := newTestService(t)

	a, err := svc.Generate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, ModeSynthetic, a.Mode)
	assert.Equal(t, StatusOK, a.Status)
	assert.Equal(t, "EKG (f = 1 Hz, TS = 1 ms)", a.Title)
	assert.Len(t, a.Samples, 2001)
	assert.Len(t, a.Markers, 10)
	require.NotNil(t, a.Features)
	require.NotNil(t, a.Verdict)
	assert.True(t, a.Verdict.IsNormal, "reasons: %v", a.Verdict.Reasons)
	assert.Equal(t, 60.0, a.Features.HeartRateBpm)
	assert.True(t, strings.HasPrefix(a.Report, "Result: Normal"))
}

func TestGenerateSlowRateIsAbnormal(t *testing.T) {
	svc, _ := newTestService(t)
	st := svc.Settings()
	st.Frequency = 0.5
	require.NoError(t, svc.UpdateSettings(context.Background(), st))

	a, err := svc.Generate(context.Background())
	require.NoError(t, err)

	assert.False(t, a.Verdict.IsNormal)
	require.NotEmpty(t, a.Verdict.Reasons)
	assert.True(t, strings.HasPrefix(a.Verdict.Reasons[0], "Heart rate 0.50 Hz"))
}

func TestGenerateLabelsFirstGroups(t *testing.T) {
	svc, _ := newTestService(t)
	st := svc.Settings()
	st.MaxTime = 12
	st.TimeInterval = 1
	st.SamplingPeriod = 10
	require.NoError(t, svc.UpdateSettings(context.Background(), st))

	a, err := svc.Generate(context.Background())
	require.NoError(t, err)

	// 12 cycles fall into 4 groups of 3, all within the labeled cap.
	assert.Len(t, a.Markers, 12*5)
	assert.Equal(t, 1.0, a.Features.HeartRateHz)
	assert.True(t, a.Verdict.IsNormal, "reasons: %v", a.Verdict.Reasons)
}

func TestAnalyzeDrawingInsufficientData(t *testing.T) {
	svc, _ := newTestService(t)

	points := make([]model.PixelPoint, 49)
	for i := range points {
		points[i] = model.PixelPoint{X: 100 + float64(i), Y: 300}
	}

	a, err := svc.AnalyzeDrawing(context.Background(), points)
	require.NoError(t, err)

	assert.Equal(t, StatusInsufficientData, a.Status)
	assert.Nil(t, a.Features)
	assert.Nil(t, a.Verdict)
	assert.Len(t, a.Samples, 49)
}

func TestAnalyzeDrawingOutOfBoundsPointsDropped(t *testing.T) {
	svc, _ := newTestService(t)

	// 60 points but only 40 inside the plot area.
	var points []model.PixelPoint
	for i := 0; i < 60; i++ {
		x := 60 + float64(i)
		if i >= 40 {
			x = 2000
		}
		points = append(points, model.PixelPoint{X: x, Y: 300})
	}

	a, err := svc.AnalyzeDrawing(context.Background(), points)
	require.NoError(t, err)
	assert.Equal(t, StatusInsufficientData, a.Status)
}

func tracedDrawing(t *testing.T, rate float64) []model.PixelPoint {
	t.Helper()
	wf, err := synth.Synthesize(synth.Config{HeartRateHz: rate, MaxTime: 2, SamplingPeriod: time.Millisecond, WaveSpeed: 100})
	require.NoError(t, err)

	m := plot.NewMapper(model.DefaultViewport(), plot.Surface{Width: 1100, Height: 500, Margin: plot.DefaultMargin})
	points := make([]model.PixelPoint, len(wf.Samples))
	for i, s := range wf.Samples {
		points[i] = m.ToPixel(s)
	}
	return points
}

func TestAnalyzeDrawingDetectsPeaks(t *testing.T) {
	svc, _ := newTestService(t)

	a, err := svc.AnalyzeDrawing(context.Background(), tracedDrawing(t, 1.25))
	require.NoError(t, err)

	require.Equal(t, StatusOK, a.Status)
	require.NotNil(t, a.Peaks)
	// Cycles start at 0, 0.8 and 1.6 s; each R lands before 2 s.
	assert.Len(t, a.Peaks.QRS, 3)
	assert.InDelta(t, 1.25, a.Features.HeartRateHz, 0.01)
	assert.InDelta(t, 1.5, a.Features.QRSAmplitudeAvg, 0.01)
	assert.NotEmpty(t, a.Report)
}

func TestUpdateSettingsRejectsInvalid(t *testing.T) {
	svc, stor := newTestService(t)
	before := svc.Settings()

	bad := before
	bad.QTMin = 0.5
	err := svc.UpdateSettings(context.Background(), bad)

	var verr *settings.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "qtMin", verr.Field)
	assert.Equal(t, before, svc.Settings())
	assert.Nil(t, stor.settings)
}

func TestSettingsPersistAcrossServices(t *testing.T) {
	stor := newMemStorage()
	svc, err := NewService(WithStorage(stor), WithLogger(quietLogger()))
	require.NoError(t, err)

	st := svc.Settings()
	st.Frequency = 1.4
	st.LineColor = "#ff0000"
	require.NoError(t, svc.UpdateSettings(context.Background(), st))

	again, err := NewService(WithStorage(stor), WithLogger(quietLogger()))
	require.NoError(t, err)
	assert.Equal(t, 1.4, again.Settings().Frequency)
	assert.Equal(t, "#ff0000", again.Settings().LineColor)

	require.NoError(t, again.ResetSettings(context.Background()))
	assert.Equal(t, settings.Defaults(), again.Settings())
	assert.Nil(t, stor.settings)
}

func TestStoredInvalidSettingsFallBackToDefaults(t *testing.T) {
	stor := newMemStorage()
	stor.settings = []byte(`{"minVoltage": 4}`)

	svc, err := NewService(WithStorage(stor), WithLogger(quietLogger()))
	require.NoError(t, err)

	assert.Equal(t, settings.Defaults(), svc.Settings())
}

func TestSendSamples(t *testing.T) {
	svc, _ := newTestService(t, WithPace(0))
	sink := &recordingSink{}

	err := svc.SendSamples(context.Background(), sink, []model.SamplePoint{{Time: 0, Voltage: 0.1}, {Time: 0.001, Voltage: 0.2}})
	require.NoError(t, err)
	assert.Equal(t, []string{"0.000,0.100\n", "0.001,0.200\n", "END"}, sink.lines)

	assert.ErrorIs(t, svc.SendSamples(context.Background(), sink, nil), ErrNoSamples)
}

func TestRenderChart(t *testing.T) {
	svc, _ := newTestService(t)

	a, err := svc.Generate(context.Background())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.RenderChart(&buf, a))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))

	assert.ErrorIs(t, svc.RenderChart(&buf, nil), ErrNoSamples)
}

func TestDrawingsWithSQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "ekglab.sqlite3")
	svc, err := NewService(WithDBPath(dbPath), WithLogger(quietLogger()))
	require.NoError(t, err)
	defer svc.Close()
	ctx := context.Background()

	points := tracedDrawing(t, 1.2)
	saved, err := svc.SaveDrawing(ctx, "sinus", points)
	require.NoError(t, err)
	assert.Equal(t, "database/draw/sinus.json", saved.Key)

	list, err := svc.ListDrawings(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "sinus", list[0].Name)

	a, err := svc.AnalyzeSavedDrawing(ctx, "sinus")
	require.NoError(t, err)
	assert.Equal(t, StatusOK, a.Status)

	require.NoError(t, svc.DeleteDrawing(ctx, "sinus"))
	_, err = svc.GetDrawing(ctx, "sinus")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = svc.AnalyzeSavedDrawing(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCancelledContext(t *testing.T) {
	svc, _ := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Generate(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
