// Package dlib implements face.Matcher on top of dlib through go-face.
package dlib

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"reflect"
	"sync"

	goface "github.com/Kagami/go-face"
	xdraw "golang.org/x/image/draw"

	"attendance/internal/service/face"
)

// minPairIoU is the overlap required to pair a requested box with a face
// dlib found.
const minPairIoU = 0.5

// upsample is the factor frames are enlarged by before detection. dlib's
// frontal detector misses faces smaller than about 80px.
const upsample = 2

// Recognizer wraps a go-face recognizer. go-face detects and describes faces
// in a single call, so the faces found by Detect are kept and reused when
// Encode is called with the same image.
type Recognizer struct {
	rec *goface.Recognizer

	mu      sync.Mutex
	last    []goface.Face // in lastImg coordinates
	lastImg image.Image
}

// NewRecognizer loads the dlib models from modelsDir.
func NewRecognizer(modelsDir string) (*Recognizer, error) {
	rec, err := goface.NewRecognizer(modelsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load face models from %s: %w", modelsDir, err)
	}
	return &Recognizer{rec: rec}, nil
}

func (r *Recognizer) Detect(img image.Image) ([]image.Rectangle, error) {
	faces, err := r.recognize(img)
	if err != nil {
		return nil, err
	}

	boxes := make([]image.Rectangle, len(faces))
	for i, f := range faces {
		boxes[i] = f.Rectangle
	}
	return boxes, nil
}

// Encode pairs each box with a face found in img. Boxes with no overlapping
// face get an empty embedding.
func (r *Recognizer) Encode(img image.Image, boxes []image.Rectangle) ([]face.Embedding, error) {
	faces, ok := r.cached(img)
	if !ok {
		var err error
		if faces, err = r.recognize(img); err != nil {
			return nil, err
		}
	}
	return pairEmbeddings(faces, boxes), nil
}

// cached returns the faces of the last recognized image if it is img.
func (r *Recognizer) cached(img image.Image) ([]goface.Face, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.lastImg == nil || !sameImage(r.lastImg, img) {
		return nil, false
	}
	return r.last, true
}

func (r *Recognizer) recognize(img image.Image) ([]goface.Face, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, enlarge(img, upsample), &jpeg.Options{Quality: 95}); err != nil {
		return nil, fmt.Errorf("failed to encode frame for recognition: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	faces, err := r.rec.Recognize(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("face recognition failed: %w", err)
	}

	origin := img.Bounds().Min
	for i := range faces {
		faces[i].Rectangle = shrinkRect(faces[i].Rectangle, upsample, origin)
	}

	r.last, r.lastImg = faces, img
	return faces, nil
}

// Close frees the dlib models.
func (r *Recognizer) Close() {
	r.rec.Close()
}

// enlarge returns img scaled by factor, anchored at the origin.
func enlarge(img image.Image, factor int) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

// shrinkRect maps a box found on an enlarged image back onto the image whose
// bounds start at origin.
func shrinkRect(r image.Rectangle, factor int, origin image.Point) image.Rectangle {
	return image.Rect(r.Min.X/factor, r.Min.Y/factor, r.Max.X/factor, r.Max.Y/factor).Add(origin)
}

func pairEmbeddings(faces []goface.Face, boxes []image.Rectangle) []face.Embedding {
	known := make([]image.Rectangle, len(faces))
	for i, f := range faces {
		known[i] = f.Rectangle
	}

	embeddings := make([]face.Embedding, len(boxes))
	for i, box := range boxes {
		j := face.BestOverlap(box, known, minPairIoU)
		if j < 0 {
			continue
		}
		d := faces[j].Descriptor
		embeddings[i] = append(face.Embedding(nil), d[:]...)
	}
	return embeddings
}

// sameImage reports whether a and b are the same pointer-backed image.
// Value images never match, so they are always recognized again.
func sameImage(a, b image.Image) bool {
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Kind() != reflect.Pointer || va.Type() != vb.Type() {
		return false
	}
	return va.Pointer() == vb.Pointer()
}
