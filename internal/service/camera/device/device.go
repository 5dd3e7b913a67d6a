// Package device opens the physical or simulated camera named by the
// configuration.
package device

import (
	"fmt"
	"strconv"
	"time"

	"attendance/internal/config"
	"attendance/internal/service/camera"
)

// stillInterval paces the file backend at roughly a webcam's frame rate.
const stillInterval = 66 * time.Millisecond

// Opener returns a camera.Opener for the configured backend.
func Opener(cfg *config.Config) camera.Opener {
	return func() (camera.Source, error) {
		return Open(cfg)
	}
}

// Open opens the configured camera backend.
func Open(cfg *config.Config) (camera.Source, error) {
	var (
		src camera.Source
		err error
	)

	switch cfg.CameraBackend {
	case config.CameraBackendOpenCV:
		src, err = OpenVideoCapture(cfg.CameraDevice, cfg.CameraWidth, cfg.CameraHeight)
	case config.CameraBackendV4L2:
		src, err = OpenV4L2(devicePath(cfg.CameraDevice), cfg.CameraWidth, cfg.CameraHeight)
	case config.CameraBackendFile:
		if cfg.CameraFile == "" {
			return nil, fmt.Errorf("CAMERA_FILE must be set for the %s camera backend", config.CameraBackendFile)
		}
		src, err = camera.OpenStill(cfg.CameraFile, 0, stillInterval)
	default:
		return nil, fmt.Errorf("unknown camera backend %q", cfg.CameraBackend)
	}

	if err != nil {
		return nil, err
	}
	return src, nil
}

// devicePath turns a bare index such as "0" into /dev/video0.
func devicePath(device string) string {
	if _, err := strconv.Atoi(device); err == nil {
		return "/dev/video" + device
	}
	return device
}
