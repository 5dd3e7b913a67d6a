package camera

import (
	"errors"
	"image"
	"io"
	"sync"
	"time"

	"attendance/internal/service/face"
)

var errClosed = errors.New("camera source is closed")

// Still is a simulated camera repeating a single image.
type Still struct {
	img      image.Image
	limit    int // 0 means unlimited
	interval time.Duration

	mu     sync.Mutex
	served int
	closed bool
}

// NewStill returns a source yielding img limit times, then io.EOF. A zero
// limit never runs out. Reads after the first wait interval.
func NewStill(img image.Image, limit int, interval time.Duration) *Still {
	return &Still{img: img, limit: limit, interval: interval}
}

// OpenStill loads a JPEG or PNG file as a Still source.
func OpenStill(path string, limit int, interval time.Duration) (*Still, error) {
	img, err := face.LoadImage(path)
	if err != nil {
		return nil, err
	}
	return NewStill(img, limit, interval), nil
}

func (s *Still) Read() (image.Image, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, errClosed
	}
	if s.limit > 0 && s.served >= s.limit {
		s.mu.Unlock()
		return nil, io.EOF
	}
	first := s.served == 0
	s.served++
	s.mu.Unlock()

	if !first && s.interval > 0 {
		time.Sleep(s.interval)
	}
	return s.img, nil
}

func (s *Still) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
