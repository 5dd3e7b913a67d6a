// Package facetest provides a deterministic face matcher for tests. A "face"
// is any non-black pixel at the centre of the image; its embedding is the RGB
// colour of the pixel at the centre of the box, scaled to [0, 1].
package facetest

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"sync"

	"attendance/internal/service/face"
)

// Matcher is a face.Matcher that recognizes solid colours.
type Matcher struct {
	DetectErr error
	EncodeErr error

	mu          sync.Mutex
	detectCalls int
	encodeCalls int
}

// Detect reports one face covering the middle half of img unless its centre is black.
func (m *Matcher) Detect(img image.Image) ([]image.Rectangle, error) {
	m.mu.Lock()
	m.detectCalls++
	m.mu.Unlock()

	if m.DetectErr != nil {
		return nil, m.DetectErr
	}

	b := img.Bounds()
	if isBlack(img.At(b.Min.X+b.Dx()/2, b.Min.Y+b.Dy()/2)) {
		return nil, nil
	}

	return []image.Rectangle{image.Rect(
		b.Min.X+b.Dx()/4, b.Min.Y+b.Dy()/4,
		b.Min.X+b.Dx()*3/4, b.Min.Y+b.Dy()*3/4,
	)}, nil
}

// Encode returns the colour at the centre of each box.
func (m *Matcher) Encode(img image.Image, boxes []image.Rectangle) ([]face.Embedding, error) {
	m.mu.Lock()
	m.encodeCalls++
	m.mu.Unlock()

	if m.EncodeErr != nil {
		return nil, m.EncodeErr
	}

	embeddings := make([]face.Embedding, len(boxes))
	for i, box := range boxes {
		c := img.At(box.Min.X+box.Dx()/2, box.Min.Y+box.Dy()/2)
		embeddings[i] = Embedding(c)
	}
	return embeddings, nil
}

// DetectCalls returns how many times Detect ran.
func (m *Matcher) DetectCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.detectCalls
}

// EncodeCalls returns how many times Encode ran.
func (m *Matcher) EncodeCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.encodeCalls
}

// Embedding is the embedding Matcher produces for a face of colour c.
func Embedding(c color.Color) face.Embedding {
	r, g, b, _ := c.RGBA()
	return face.Embedding{float32(r) / 0xffff, float32(g) / 0xffff, float32(b) / 0xffff}
}

func isBlack(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r == 0 && g == 0 && b == 0
}

// SolidImage returns a w×h image filled with c.
func SolidImage(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img
}

// EncodePNG returns img as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WritePNG writes img to path as PNG.
func WritePNG(path string, img image.Image) error {
	data, err := EncodePNG(img)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// DataURI returns img as a base64 PNG data URI, the form a browser canvas produces.
func DataURI(img image.Image) (string, error) {
	data, err := EncodePNG(img)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(data), nil
}
