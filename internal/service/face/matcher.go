// Package face holds the face matching capability, the registry of enrolled
// faces and the matching step that turns an embedding into an identity.
package face

import (
	"errors"
	"image"
	"math"
)

// Embedding is a fixed-length vector describing one face.
type Embedding []float32

// Matcher detects faces and computes one embedding per detected face.
type Matcher interface {
	// Detect returns face bounding boxes in img coordinates.
	Detect(img image.Image) ([]image.Rectangle, error)
	// Encode returns one embedding per box, in box order. A box the backend
	// cannot describe yields an empty embedding.
	Encode(img image.Image, boxes []image.Rectangle) ([]Embedding, error)
}

// ErrMatcherUnavailable is returned by Unavailable.
var ErrMatcherUnavailable = errors.New("face matcher is not available")

// Unavailable is the matcher used when no recognition backend could be loaded.
type Unavailable struct{}

func (Unavailable) Detect(image.Image) ([]image.Rectangle, error) {
	return nil, ErrMatcherUnavailable
}

func (Unavailable) Encode(image.Image, []image.Rectangle) ([]Embedding, error) {
	return nil, ErrMatcherUnavailable
}

// Distance is the Euclidean distance between two embeddings. Empty or
// mismatched embeddings are infinitely far apart.
func Distance(a, b Embedding) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return math.Inf(1)
	}

	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
