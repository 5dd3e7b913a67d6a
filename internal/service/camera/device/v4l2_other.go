//go:build !linux

package device

import (
	"errors"
	"image"
)

// V4L2 is only available on Linux.
type V4L2 struct{}

func OpenV4L2(path string, width, height int) (*V4L2, error) {
	return nil, errors.New("the v4l2 camera backend requires Linux")
}

func (*V4L2) Read() (image.Image, error) { return nil, errors.New("v4l2 unavailable") }

func (*V4L2) Close() error { return nil }
