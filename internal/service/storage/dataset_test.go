package storage

import (
	"os"
	"path/filepath"
	"testing"

	"attendance/internal/config"
	"attendance/internal/logger"
)

func newTestDataset(t *testing.T) *Dataset {
	t.Helper()
	cfg := &config.Config{
		DatasetDirectory: filepath.Join(t.TempDir(), "dataset"),
		LogDirectory:     t.TempDir(),
	}
	d, err := NewDataset(cfg, logger.NewLogger(cfg))
	if err != nil {
		t.Fatalf("NewDataset failed: %v", err)
	}
	return d
}

func TestDataset_SaveAndRemove(t *testing.T) {
	d := newTestDataset(t)

	path, err := d.Save("Asha_Rao.jpg", []byte("jpeg"))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if path != filepath.Join(d.Dir(), "Asha_Rao.jpg") {
		t.Errorf("Unexpected path %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil || string(data) != "jpeg" {
		t.Fatalf("Stored file = %q, %v", data, err)
	}

	if err := d.Remove(path); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("File still exists after Remove")
	}

	if err := d.Remove(path); err != nil {
		t.Errorf("Removing a missing file should succeed, got %v", err)
	}
}

func TestDataset_PathStaysInside(t *testing.T) {
	d := newTestDataset(t)

	if got := d.Path("../../etc/passwd"); got != filepath.Join(d.Dir(), "passwd") {
		t.Errorf("Path escaped the dataset directory: %s", got)
	}
}
