package main

import (
	"context"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"attendance/internal/config"
	"attendance/internal/logger"
	"attendance/internal/repository/sqlite"
	"attendance/internal/service/enrollment"
	"attendance/internal/service/face/facetest"
	"attendance/internal/service/storage"
)

func TestDisplayName(t *testing.T) {
	tests := map[string]string{
		"Asha_Rao.jpg":          "Asha Rao",
		"/photos/Li__Wei.PNG":   "Li Wei",
		"single.jpeg":           "single",
		"_padded_name_.jpg":     "padded name",
		"dir/Mary Ann_Lee.jpeg": "Mary Ann Lee",
	}
	for in, want := range tests {
		if got := displayName(in); got != want {
			t.Errorf("displayName(%q) = %q, expected %q", in, got, want)
		}
	}
}

func TestPhotoFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.png", "a.JPG", "c.jpeg", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "nested.jpg"), 0755); err != nil {
		t.Fatal(err)
	}

	files, err := photoFiles(dir)
	if err != nil {
		t.Fatalf("photoFiles failed: %v", err)
	}
	want := []string{"a.JPG", "b.png", "c.jpeg"}
	if len(files) != len(want) {
		t.Fatalf("Expected %d files, got %v", len(want), files)
	}
	for i, name := range want {
		if files[i] != filepath.Join(dir, name) {
			t.Errorf("files[%d] = %s, expected %s", i, files[i], name)
		}
	}

	if _, err := photoFiles(filepath.Join(dir, "missing")); err == nil {
		t.Error("Expected error for missing directory")
	}
}

func TestImportPhotos(t *testing.T) {
	cfg := &config.Config{
		DatasetDirectory: filepath.Join(t.TempDir(), "dataset"),
		LogDirectory:     t.TempDir(),
	}
	log := logger.NewLogger(cfg)

	db, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	dataset, err := storage.NewDataset(cfg, log)
	if err != nil {
		t.Fatalf("NewDataset failed: %v", err)
	}
	svc := enrollment.NewService(sqlite.NewStudentRepository(db), dataset, log)

	dir := t.TempDir()
	if err := facetest.WritePNG(filepath.Join(dir, "Asha_Rao.png"), facetest.SolidImage(32, 32, color.RGBA{R: 200, A: 255})); err != nil {
		t.Fatal(err)
	}
	if err := facetest.WritePNG(filepath.Join(dir, "Li_Wei.png"), facetest.SolidImage(32, 32, color.RGBA{G: 200, A: 255})); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "Broken.jpg"), []byte("not an image"), 0644); err != nil {
		t.Fatal(err)
	}

	files, err := photoFiles(dir)
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	res := importPhotos(ctx, svc, files, "Grade 10", nil)
	if res.enrolled != 2 || res.skipped != 0 || len(res.failures) != 1 {
		t.Fatalf("First import: enrolled %d, skipped %d, failed %d", res.enrolled, res.skipped, len(res.failures))
	}
	if _, ok := res.failures[filepath.Join(dir, "Broken.jpg")]; !ok {
		t.Errorf("Expected Broken.jpg to fail, got %v", res.failures)
	}

	student, err := svc.FindByName(ctx, "Asha Rao")
	if err != nil {
		t.Fatalf("FindByName failed: %v", err)
	}
	if student.Stream != "Grade 10" {
		t.Errorf("Expected stream Grade 10, got %q", student.Stream)
	}

	res = importPhotos(ctx, svc, files, "Grade 10", nil)
	if res.enrolled != 0 || res.skipped != 2 {
		t.Errorf("Second import: enrolled %d, skipped %d", res.enrolled, res.skipped)
	}

	list, err := svc.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Errorf("Expected 2 students, got %d", len(list))
	}
}
