//go:build !js && !wasm
// +build !js,!wasm

package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/himanishpuri/EKGLab/pkg/ekglab/model"
)

// Helper function to create a temporary test database
func setupTestDB(t *testing.T) (*DBClient, string) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test_ekglab.sqlite3")
	t.Setenv("EKGLAB_DB_PATH", dbPath)

	client, err := NewDBClient()
	if err != nil {
		t.Fatalf("Failed to create test DB client: %v", err)
	}

	t.Cleanup(func() {
		client.Close()
	})

	return client, dbPath
}

func TestNewDBClient(t *testing.T) {
	client, dbPath := setupTestDB(t)

	if client.DB == nil {
		t.Fatal("Expected non-nil GORM DB handle")
	}
	if client.db == nil {
		t.Fatal("Expected non-nil sql.DB handle")
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("Database file was not created at %s", dbPath)
	}
}

func TestNewDBClientWithCustomPath(t *testing.T) {
	customPath := filepath.Join(t.TempDir(), "subdir", "custom.db")

	client, err := NewDBClientWithPath(customPath)
	if err != nil {
		t.Fatalf("Failed to create DB client with custom path: %v", err)
	}
	defer client.Close()

	if _, err := os.Stat(customPath); os.IsNotExist(err) {
		t.Errorf("Database file was not created at custom path %s", customPath)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	client, _ := setupTestDB(t)

	if _, err := client.LoadSettings(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound on empty db, got %v", err)
	}

	if err := client.SaveSettings([]byte(`{"frequency":1.2}`)); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}
	if err := client.SaveSettings([]byte(`{"frequency":1.4}`)); err != nil {
		t.Fatalf("SaveSettings overwrite failed: %v", err)
	}

	body, err := client.LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}
	if string(body) != `{"frequency":1.4}` {
		t.Errorf("Expected overwritten settings, got %s", body)
	}

	var count int64
	client.DB.Model(&Setting{}).Count(&count)
	if count != 1 {
		t.Errorf("Expected exactly one settings row, got %d", count)
	}

	if err := client.DeleteSettings(); err != nil {
		t.Fatalf("DeleteSettings failed: %v", err)
	}
	if _, err := client.LoadSettings(); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
}

func TestSaveAndGetDrawing(t *testing.T) {
	client, _ := setupTestDB(t)
	points := []model.PixelPoint{{X: 50, Y: 350}, {X: 60.5, Y: 200}, {X: 70, Y: 349}}

	saved, err := client.SaveDrawing("normal-sinus", points)
	if err != nil {
		t.Fatalf("SaveDrawing failed: %v", err)
	}
	if len(saved.ID) != 36 {
		t.Errorf("Expected UUID id, got %q", saved.ID)
	}
	if saved.Key != "database/draw/normal-sinus.json" {
		t.Errorf("Unexpected key %q", saved.Key)
	}

	got, err := client.GetDrawing("normal-sinus")
	if err != nil {
		t.Fatalf("GetDrawing failed: %v", err)
	}
	if got.Body != `{"points":[[50,350],[60.5,200],[70,349]]}` {
		t.Errorf("Unexpected body %s", got.Body)
	}

	decoded, err := got.Points()
	if err != nil {
		t.Fatalf("Points failed: %v", err)
	}
	if len(decoded) != len(points) {
		t.Fatalf("Expected %d points, got %d", len(points), len(decoded))
	}
	for i := range points {
		if decoded[i] != points[i] {
			t.Errorf("Point %d = %+v, expected %+v", i, decoded[i], points[i])
		}
	}
}

func TestSaveDrawingOverwrites(t *testing.T) {
	client, _ := setupTestDB(t)

	first, err := client.SaveDrawing("beat", []model.PixelPoint{{X: 1, Y: 1}})
	if err != nil {
		t.Fatalf("SaveDrawing failed: %v", err)
	}
	second, err := client.SaveDrawing("beat", []model.PixelPoint{{X: 2, Y: 2}, {X: 3, Y: 3}})
	if err != nil {
		t.Fatalf("SaveDrawing overwrite failed: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("Expected overwrite to keep id %s, got %s", first.ID, second.ID)
	}

	got, _ := client.GetDrawing("beat")
	pts, _ := got.Points()
	if len(pts) != 2 {
		t.Errorf("Expected overwritten drawing with 2 points, got %d", len(pts))
	}
}

func TestSaveDrawingInvalidName(t *testing.T) {
	client, _ := setupTestDB(t)

	for _, name := range []string{"", "a/b", `a\b`, "..", "."} {
		if _, err := client.SaveDrawing(name, nil); !errors.Is(err, ErrInvalidName) {
			t.Errorf("SaveDrawing(%q) error = %v, expected ErrInvalidName", name, err)
		}
	}
}

func TestListAndDeleteDrawings(t *testing.T) {
	client, _ := setupTestDB(t)

	for _, name := range []string{"tachy", "brady", "normal"} {
		if _, err := client.SaveDrawing(name, []model.PixelPoint{{X: 1, Y: 2}}); err != nil {
			t.Fatalf("SaveDrawing(%s) failed: %v", name, err)
		}
	}

	list, err := client.ListDrawings()
	if err != nil {
		t.Fatalf("ListDrawings failed: %v", err)
	}
	if len(list) != 3 || list[0].Name != "brady" || list[2].Name != "tachy" {
		t.Errorf("Unexpected listing %+v", list)
	}
	if list[0].Body != "" {
		t.Error("Listing should not load drawing bodies")
	}

	if err := client.DeleteDrawing("brady"); err != nil {
		t.Fatalf("DeleteDrawing failed: %v", err)
	}
	if _, err := client.GetDrawing("brady"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
	if err := client.DeleteDrawing("brady"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound deleting twice, got %v", err)
	}
}

func TestNilClient(t *testing.T) {
	var c *DBClient

	if err := c.Close(); err != nil {
		t.Errorf("Close on nil client should be a no-op, got %v", err)
	}
	if _, err := c.GetDrawing("x"); err == nil {
		t.Error("Expected error from nil client")
	}
}
