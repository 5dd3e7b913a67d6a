//go:build linux

package device

import (
	"image"
	"sync"

	"github.com/blackjack/webcam"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

const (
	pixelFormatMJPEG webcam.PixelFormat = 0x47504A4D // 'MJPG'

	frameTimeout = 5 // seconds
	maxTimeouts  = 3
)

// V4L2 reads MJPEG frames straight from a video4linux device.
type V4L2 struct {
	mu  sync.Mutex
	cam *webcam.Webcam
}

func OpenV4L2(path string, width, height int) (*V4L2, error) {
	cam, err := webcam.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "Can not open device")
	}

	if _, ok := cam.GetSupportedFormats()[pixelFormatMJPEG]; !ok {
		cam.Close()
		return nil, errors.Errorf("device %s does not support MJPEG", path)
	}

	if _, _, _, err := cam.SetImageFormat(pixelFormatMJPEG, uint32(width), uint32(height)); err != nil {
		cam.Close()
		return nil, errors.Wrap(err, "Can not set image format")
	}

	if err := cam.StartStreaming(); err != nil {
		cam.Close()
		return nil, errors.Wrap(err, "Can not start streaming")
	}

	return &V4L2{cam: cam}, nil
}

func (v *V4L2) Read() (image.Image, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.cam == nil {
		return nil, errors.New("device is closed")
	}

	for timeouts := 0; ; {
		err := v.cam.WaitForFrame(frameTimeout)
		switch err.(type) {
		case nil:
		case *webcam.Timeout:
			timeouts++
			if timeouts >= maxTimeouts {
				return nil, errors.Wrap(err, "Device stopped delivering frames")
			}
			continue
		default:
			return nil, errors.Wrap(err, "Frame wait failed")
		}

		frame, err := v.cam.ReadFrame()
		if err != nil {
			return nil, errors.Wrap(err, "Read frame failed")
		}
		if len(frame) == 0 {
			continue
		}

		return decodeMJPEG(frame)
	}
}

// decodeMJPEG goes through OpenCV because many webcams omit the Huffman
// tables image/jpeg requires.
func decodeMJPEG(frame []byte) (image.Image, error) {
	mat, err := gocv.IMDecode(frame, gocv.IMReadColor)
	if err != nil {
		return nil, errors.Wrap(err, "Can not decode frame")
	}
	defer mat.Close()

	if mat.Empty() {
		return nil, errors.New("Decoded frame is empty")
	}

	img, err := mat.ToImage()
	if err != nil {
		return nil, errors.Wrap(err, "Can not convert frame")
	}
	return img, nil
}

func (v *V4L2) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.cam == nil {
		return nil
	}
	v.cam.StopStreaming()
	err := v.cam.Close()
	v.cam = nil
	return err
}
