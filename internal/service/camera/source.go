// Package camera provides frame sources and the guard that keeps a single
// stream reading the camera at a time.
package camera

import (
	"errors"
	"image"
	"sync"
)

// ErrBusy is returned by Guard.Acquire while another stream holds the camera.
var ErrBusy = errors.New("camera is in use by another stream")

// Source yields frames. Read returns io.EOF when the source is exhausted.
type Source interface {
	Read() (image.Image, error)
	Close() error
}

// Opener opens a fresh Source.
type Opener func() (Source, error)

// Guard opens the camera for one stream at a time.
type Guard struct {
	open Opener

	mu   sync.Mutex
	busy bool
}

func NewGuard(open Opener) *Guard {
	return &Guard{open: open}
}

// Acquire opens the camera. The returned release func closes it and lets the
// next stream in; it is safe to call more than once.
func (g *Guard) Acquire() (Source, func(), error) {
	g.mu.Lock()
	if g.busy {
		g.mu.Unlock()
		return nil, nil, ErrBusy
	}
	g.busy = true
	g.mu.Unlock()

	src, err := g.open()
	if err != nil {
		g.mu.Lock()
		g.busy = false
		g.mu.Unlock()
		return nil, nil, err
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			src.Close()
			g.mu.Lock()
			g.busy = false
			g.mu.Unlock()
		})
	}
	return src, release, nil
}

// Busy reports whether a stream currently holds the camera.
func (g *Guard) Busy() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.busy
}
