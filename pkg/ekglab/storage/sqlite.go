//go:build !js && !wasm
// +build !js,!wasm

package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/himanishpuri/EKGLab/pkg/ekglab/model"
)

const DefaultDBFile = "ekglab.sqlite3"
const errDBClientNil = "db client is nil"

const (
	// SettingsKey is where the single settings document lives.
	SettingsKey = "database/settings/data.json"
	drawPrefix  = "database/draw/"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrInvalidName = errors.New("invalid drawing name")
)

type DBClient struct {
	DB *gorm.DB
	db *sql.DB
}

// Setting is a JSON document stored under a namespaced key.
type Setting struct {
	Key       string `gorm:"primaryKey;column:storage_key;type:varchar(255)"`
	Body      string `gorm:"type:text"`
	UpdatedAt time.Time
}

// Drawing is a saved freehand polyline in pixel space. Body holds
// {"points": [[x, y], ...]}.
type Drawing struct {
	ID        string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name      string `gorm:"uniqueIndex:idx_drawing_name" json:"name"`
	Key       string `gorm:"column:storage_key;index:idx_drawing_key" json:"key"`
	Body      string `gorm:"type:text" json:"-"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type drawingBody struct {
	Points [][2]float64 `json:"points"`
}

// DrawingKey returns the storage key for a drawing name.
func DrawingKey(name string) string {
	return drawPrefix + name + ".json"
}

// Points decodes the stored polyline.
func (d *Drawing) Points() ([]model.PixelPoint, error) {
	var body drawingBody
	if err := json.Unmarshal([]byte(d.Body), &body); err != nil {
		return nil, fmt.Errorf("decoding drawing %s: %w", d.Name, err)
	}
	out := make([]model.PixelPoint, len(body.Points))
	for i, p := range body.Points {
		out[i] = model.PixelPoint{X: p[0], Y: p[1]}
	}
	return out, nil
}

func NewDBClient() (*DBClient, error) {
	dbPath := os.Getenv("EKGLAB_DB_PATH")
	if dbPath == "" {
		dbPath = DefaultDBFile
	}
	return NewDBClientWithPath(dbPath)
}

func NewDBClientWithPath(dbPath string) (*DBClient, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil && !os.IsExist(err) {
		if filepath.Dir(dbPath) != "." {
			return nil, fmt.Errorf("creating db dir: %w", err)
		}
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(dbPath+"?_foreign_keys=on"), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB from gorm: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&Setting{}, &Drawing{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &DBClient{DB: db, db: sqlDB}, nil
}

func (c *DBClient) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// SaveSettings stores the settings document, replacing any previous one.
func (c *DBClient) SaveSettings(body []byte) error {
	if c == nil || c.DB == nil {
		return errors.New(errDBClientNil)
	}
	row := Setting{Key: SettingsKey, Body: string(body)}
	err := c.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "storage_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"body", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	return nil
}

// LoadSettings returns the stored settings document or ErrNotFound.
func (c *DBClient) LoadSettings() ([]byte, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}
	var row Setting
	err := c.DB.Where("storage_key = ?", SettingsKey).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	return []byte(row.Body), nil
}

// DeleteSettings removes the stored settings document, if any.
func (c *DBClient) DeleteSettings() error {
	if c == nil || c.DB == nil {
		return errors.New(errDBClientNil)
	}
	return c.DB.Where("storage_key = ?", SettingsKey).Delete(&Setting{}).Error
}

func validName(name string) bool {
	return name != "" && !strings.ContainsAny(name, `/\`) && name != "." && name != ".."
}

// SaveDrawing stores points under name. Saving an existing name overwrites
// its points and keeps its ID.
func (c *DBClient) SaveDrawing(name string, points []model.PixelPoint) (*Drawing, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}
	if !validName(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	body := drawingBody{Points: make([][2]float64, len(points))}
	for i, p := range points {
		body.Points[i] = [2]float64{p.X, p.Y}
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding drawing: %w", err)
	}

	var d Drawing
	err = c.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("name = ?", name).First(&d).Error
		switch {
		case err == nil:
			d.Body = string(raw)
			return tx.Save(&d).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			d = Drawing{ID: uuid.NewString(), Name: name, Key: DrawingKey(name), Body: string(raw)}
			return tx.Create(&d).Error
		default:
			return err
		}
	})
	if err != nil {
		return nil, fmt.Errorf("saving drawing %s: %w", name, err)
	}
	return &d, nil
}

func (c *DBClient) GetDrawing(name string) (*Drawing, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}
	var d Drawing
	err := c.DB.Where("name = ?", name).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying drawing %s: %w", name, err)
	}
	return &d, nil
}

// ListDrawings returns all drawings ordered by name, bodies omitted.
func (c *DBClient) ListDrawings() ([]Drawing, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}
	var rows []Drawing
	if err := c.DB.Select("id", "name", "storage_key", "created_at", "updated_at").Order("name").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing drawings: %w", err)
	}
	return rows, nil
}

func (c *DBClient) DeleteDrawing(name string) error {
	if c == nil || c.DB == nil {
		return errors.New(errDBClientNil)
	}
	res := c.DB.Where("name = ?", name).Delete(&Drawing{})
	if res.Error != nil {
		return fmt.Errorf("deleting drawing %s: %w", name, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
