package face

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"attendance/internal/logger"
	"attendance/internal/model"
)

// StudentLister lists enrolled students.
type StudentLister interface {
	GetAll(ctx context.Context) ([]model.Student, error)
}

// Registry holds the reference embedding of every recognizable student.
// IDs, Names and Embeddings are parallel: index i of each describes the same
// student.
type Registry struct {
	IDs        []int64
	Names      []string
	Embeddings []Embedding

	// Skipped counts students left out because their reference image could
	// not be read or held no face.
	Skipped int
}

// Len returns the number of known faces.
func (r *Registry) Len() int {
	return len(r.IDs)
}

// Add appends one known face.
func (r *Registry) Add(id int64, name string, embedding Embedding) {
	r.IDs = append(r.IDs, id)
	r.Names = append(r.Names, name)
	r.Embeddings = append(r.Embeddings, embedding)
}

// LoadRegistry computes one reference embedding per student, keeping the first
// face found in each reference image. Students whose image is missing,
// unreadable or faceless are skipped with a warning. An unavailable matcher
// stops the load and is returned together with the partial registry.
func LoadRegistry(ctx context.Context, students StudentLister, matcher Matcher, log *logger.Logger) (*Registry, error) {
	rows, err := students.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}

	registry := &Registry{}
	for _, s := range rows {
		if err := ctx.Err(); err != nil {
			return registry, err
		}

		embedding, err := referenceEmbedding(s.ImagePath, matcher)
		if errors.Is(err, ErrMatcherUnavailable) {
			return registry, err
		}
		if err != nil {
			log.Warning("Skipping student %d (%s): %v", s.ID, s.Name, err)
			registry.Skipped++
			continue
		}

		registry.Add(s.ID, s.Name, embedding)
	}

	log.Info("Loaded %d known faces (%d skipped)", registry.Len(), registry.Skipped)
	return registry, nil
}

func referenceEmbedding(path string, matcher Matcher) (Embedding, error) {
	img, err := LoadImage(path)
	if err != nil {
		return nil, err
	}

	boxes, err := matcher.Detect(img)
	if err != nil {
		return nil, fmt.Errorf("detection failed: %w", err)
	}
	if len(boxes) == 0 {
		return nil, errors.New("no face found in reference image")
	}

	embeddings, err := matcher.Encode(img, boxes)
	if err != nil {
		return nil, fmt.Errorf("encoding failed: %w", err)
	}
	for _, e := range embeddings {
		if len(e) > 0 {
			return e, nil
		}
	}
	return nil, errors.New("no face could be encoded in reference image")
}

// LoadImage reads and decodes a JPEG or PNG file.
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("reference image %s is missing", path)
		}
		return nil, fmt.Errorf("failed to open reference image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode reference image %s: %w", path, err)
	}
	return img, nil
}
