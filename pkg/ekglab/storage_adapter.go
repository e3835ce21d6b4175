package ekglab

import (
	"github.com/himanishpuri/EKGLab/pkg/ekglab/model"
	"github.com/himanishpuri/EKGLab/pkg/ekglab/storage"
)

// ErrNotFound is returned when a drawing or the settings document is missing.
var ErrNotFound = storage.ErrNotFound

// ErrInvalidName is returned for drawing names that cannot form a storage key.
var ErrInvalidName = storage.ErrInvalidName

// storageAdapter adapts the storage.DBClient to implement the Storage interface.
type storageAdapter struct {
	db *storage.DBClient
}

// NewSQLiteStorage creates a new SQLite storage backend.
func NewSQLiteStorage(dbPath string) (Storage, error) {
	db, err := storage.NewDBClientWithPath(dbPath)
	if err != nil {
		return nil, err
	}
	return &storageAdapter{db: db}, nil
}

func (s *storageAdapter) SaveSettings(body []byte) error {
	return s.db.SaveSettings(body)
}

func (s *storageAdapter) LoadSettings() ([]byte, error) {
	return s.db.LoadSettings()
}

func (s *storageAdapter) DeleteSettings() error {
	return s.db.DeleteSettings()
}

func (s *storageAdapter) SaveDrawing(name string, points []model.PixelPoint) (*Drawing, error) {
	d, err := s.db.SaveDrawing(name, points)
	if err != nil {
		return nil, err
	}
	return toDrawing(d, points), nil
}

func (s *storageAdapter) GetDrawing(name string) (*Drawing, error) {
	d, err := s.db.GetDrawing(name)
	if err != nil {
		return nil, err
	}
	points, err := d.Points()
	if err != nil {
		return nil, err
	}
	return toDrawing(d, points), nil
}

func (s *storageAdapter) ListDrawings() ([]Drawing, error) {
	rows, err := s.db.ListDrawings()
	if err != nil {
		return nil, err
	}

	drawings := make([]Drawing, len(rows))
	for i := range rows {
		drawings[i] = *toDrawing(&rows[i], nil)
	}
	return drawings, nil
}

func (s *storageAdapter) DeleteDrawing(name string) error {
	return s.db.DeleteDrawing(name)
}

func (s *storageAdapter) Close() error {
	return s.db.Close()
}

func toDrawing(d *storage.Drawing, points []model.PixelPoint) *Drawing {
	return &Drawing{
		ID:        d.ID,
		Name:      d.Name,
		Key:       d.Key,
		Points:    points,
		UpdatedAt: d.UpdatedAt,
	}
}
