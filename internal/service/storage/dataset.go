package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"attendance/internal/config"
	"attendance/internal/logger"
)

// Dataset stores one reference image file per student.
type Dataset struct {
	dir    string
	logger *logger.Logger
}

// NewDataset creates the dataset directory if needed.
func NewDataset(config *config.Config, logger *logger.Logger) (*Dataset, error) {
	if err := os.MkdirAll(config.DatasetDirectory, 0755); err != nil {
		return nil, fmt.Errorf("error creating dataset directory: %w", err)
	}
	return &Dataset{dir: config.DatasetDirectory, logger: logger}, nil
}

// Dir returns the dataset directory.
func (d *Dataset) Dir() string {
	return d.dir
}

// Path returns the location of filename inside the dataset. Directory
// components of filename are ignored.
func (d *Dataset) Path(filename string) string {
	return filepath.Join(d.dir, filepath.Base(filename))
}

// Save writes data under filename, replacing any existing file, and returns
// its path.
func (d *Dataset) Save(filename string, data []byte) (string, error) {
	path := d.Path(filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("error saving image %s: %w", filename, err)
	}

	d.logger.Info("Saved reference image %s (%d bytes)", path, len(data))
	return path, nil
}

// Remove deletes a stored image. A file that is already gone is not an error.
func (d *Dataset) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("error removing image %s: %w", path, err)
	}
	return nil
}
