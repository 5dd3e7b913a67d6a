package device

import (
	"image/color"
	"path/filepath"
	"testing"

	"attendance/internal/config"
	"attendance/internal/service/face/facetest"
)

func TestDevicePath(t *testing.T) {
	tests := map[string]string{
		"0":           "/dev/video0",
		"2":           "/dev/video2",
		"/dev/video1": "/dev/video1",
	}
	for in, want := range tests {
		if got := devicePath(in); got != want {
			t.Errorf("devicePath(%q) = %q, expected %q", in, got, want)
		}
	}
}

func TestOpen_FileBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "classroom.png")
	if err := facetest.WritePNG(path, facetest.SolidImage(32, 24, color.White)); err != nil {
		t.Fatalf("Failed to write frame: %v", err)
	}

	src, err := Open(&config.Config{CameraBackend: config.CameraBackendFile, CameraFile: path})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer src.Close()

	frame, err := src.Read()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if frame.Bounds().Dx() != 32 {
		t.Errorf("Unexpected frame bounds %v", frame.Bounds())
	}
}

func TestOpen_Errors(t *testing.T) {
	if _, err := Open(&config.Config{CameraBackend: config.CameraBackendFile}); err == nil {
		t.Error("Expected an error when CAMERA_FILE is empty")
	}
	if _, err := Open(&config.Config{CameraBackend: "carrier-pigeon"}); err == nil {
		t.Error("Expected an error for an unknown backend")
	}
}
