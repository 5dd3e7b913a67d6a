package face_test

import (
	"context"
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"attendance/internal/config"
	"attendance/internal/logger"
	"attendance/internal/model"
	"attendance/internal/service/face"
	"attendance/internal/service/face/facetest"
)

type studentList []model.Student

func (l studentList) GetAll(context.Context) ([]model.Student, error) {
	return l, nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	return logger.NewLogger(&config.Config{LogDirectory: t.TempDir()})
}

func writeReference(t *testing.T, dir, name string, c color.Color) string {
	t.Helper()
	path := filepath.Join(dir, name+".png")
	if err := facetest.WritePNG(path, facetest.SolidImage(64, 64, c)); err != nil {
		t.Fatalf("Failed to write reference image: %v", err)
	}
	return path
}

func TestLoadRegistry_ParallelSequences(t *testing.T) {
	dir := t.TempDir()
	students := studentList{
		{ID: 1, Name: "Asha Rao", ImagePath: writeReference(t, dir, "asha", color.RGBA{R: 255, A: 255})},
		{ID: 2, Name: "Ben Okafor", ImagePath: writeReference(t, dir, "ben", color.RGBA{G: 255, A: 255})},
		{ID: 3, Name: "Chen Wei", ImagePath: writeReference(t, dir, "chen", color.RGBA{B: 255, A: 255})},
	}

	registry, err := face.LoadRegistry(context.Background(), students, &facetest.Matcher{}, testLogger(t))
	if err != nil {
		t.Fatalf("LoadRegistry failed: %v", err)
	}

	if registry.Len() != 3 || len(registry.Names) != 3 || len(registry.Embeddings) != 3 {
		t.Fatalf("Expected 3 parallel entries, got ids=%d names=%d embeddings=%d",
			len(registry.IDs), len(registry.Names), len(registry.Embeddings))
	}

	for i, s := range students {
		if registry.IDs[i] != s.ID || registry.Names[i] != s.Name {
			t.Errorf("Entry %d = (%d, %s), expected (%d, %s)", i, registry.IDs[i], registry.Names[i], s.ID, s.Name)
		}
	}

	want := facetest.Embedding(color.RGBA{G: 255, A: 255})
	if face.Distance(registry.Embeddings[1], want) != 0 {
		t.Errorf("Embedding of entry 1 does not belong to Ben Okafor: %v", registry.Embeddings[1])
	}
}

func TestLoadRegistry_SkipsUnusableReferences(t *testing.T) {
	dir := t.TempDir()

	corrupt := filepath.Join(dir, "corrupt.jpg")
	if err := os.WriteFile(corrupt, []byte("not an image"), 0644); err != nil {
		t.Fatalf("Failed to write corrupt image: %v", err)
	}

	students := studentList{
		{ID: 1, Name: "Missing", ImagePath: filepath.Join(dir, "missing.jpg")},
		{ID: 2, Name: "Corrupt", ImagePath: corrupt},
		{ID: 3, Name: "Faceless", ImagePath: writeReference(t, dir, "faceless", color.Black)},
		{ID: 4, Name: "Asha Rao", ImagePath: writeReference(t, dir, "asha", color.RGBA{R: 200, A: 255})},
	}

	log := testLogger(t)
	registry, err := face.LoadRegistry(context.Background(), students, &facetest.Matcher{}, log)
	if err != nil {
		t.Fatalf("LoadRegistry failed: %v", err)
	}

	if registry.Len() != 1 || registry.IDs[0] != 4 {
		t.Errorf("Expected only student 4 in registry, got %v", registry.IDs)
	}
	if registry.Skipped != 3 {
		t.Errorf("Expected 3 skipped students, got %d", registry.Skipped)
	}

	warnings, err := os.ReadFile(filepath.Join(log.Directory(), logger.WarningFile))
	if err != nil {
		t.Fatalf("Failed to read warning log: %v", err)
	}
	for _, name := range []string{"Missing", "Corrupt", "Faceless"} {
		if !strings.Contains(string(warnings), name) {
			t.Errorf("Expected a warning naming %s, got %q", name, warnings)
		}
	}
}

func TestLoadRegistry_UnavailableMatcher(t *testing.T) {
	dir := t.TempDir()
	students := studentList{
		{ID: 1, Name: "Asha Rao", ImagePath: writeReference(t, dir, "asha", color.RGBA{R: 255, A: 255})},
	}

	registry, err := face.LoadRegistry(context.Background(), students, face.Unavailable{}, testLogger(t))
	if !errors.Is(err, face.ErrMatcherUnavailable) {
		t.Fatalf("Expected ErrMatcherUnavailable, got %v", err)
	}
	if registry == nil || registry.Len() != 0 {
		t.Errorf("Expected an empty registry, got %+v", registry)
	}
}
