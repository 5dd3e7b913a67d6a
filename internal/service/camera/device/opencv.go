package device

import (
	"errors"
	"fmt"
	"image"
	"strconv"
	"sync"

	"gocv.io/x/gocv"
)

// VideoCapture reads frames through OpenCV.
type VideoCapture struct {
	mu  sync.Mutex
	vc  *gocv.VideoCapture
	mat gocv.Mat
}

// OpenVideoCapture opens a device index ("0") or a path/URL.
func OpenVideoCapture(device string, width, height int) (*VideoCapture, error) {
	var target interface{} = device
	if id, err := strconv.Atoi(device); err == nil {
		target = id
	}

	vc, err := gocv.OpenVideoCapture(target)
	if err != nil {
		return nil, fmt.Errorf("error opening video capture device %v: %w", device, err)
	}
	if width > 0 && height > 0 {
		vc.Set(gocv.VideoCaptureFrameWidth, float64(width))
		vc.Set(gocv.VideoCaptureFrameHeight, float64(height))
	}

	return &VideoCapture{vc: vc, mat: gocv.NewMat()}, nil
}

func (c *VideoCapture) Read() (image.Image, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.vc == nil {
		return nil, errors.New("video capture is closed")
	}
	if ok := c.vc.Read(&c.mat); !ok {
		return nil, errors.New("cannot read frame from video capture")
	}
	if c.mat.Empty() {
		return nil, errors.New("video capture returned an empty frame")
	}

	img, err := c.mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("failed to convert frame: %w", err)
	}
	return img, nil
}

func (c *VideoCapture) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.vc == nil {
		return nil
	}
	c.mat.Close()
	err := c.vc.Close()
	c.vc = nil
	return err
}
