// Package enrollment registers students with a reference photo and manages
// the student directory.
package enrollment

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"

	"attendance/internal/dto"
	"attendance/internal/logger"
	"attendance/internal/model"
	"attendance/internal/repository"
	"attendance/internal/service/storage"
)

var (
	ErrNameRequired     = errors.New("name is required")
	ErrInvalidImageData = errors.New("invalid image data")
	ErrNotFound         = errors.New("student not found")
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// Service implements enrollment and the student directory.
type Service struct {
	students repository.StudentRepository
	dataset  *storage.Dataset
	logger   *logger.Logger
}

func NewService(students repository.StudentRepository, dataset *storage.Dataset, logger *logger.Logger) *Service {
	return &Service{students: students, dataset: dataset, logger: logger}
}

// Enroll registers a student from a browser snapshot encoded as a data URI.
func (s *Service) Enroll(ctx context.Context, name, stream, dataURI string) (*model.Student, error) {
	data, err := DecodeDataURI(dataURI)
	if err != nil {
		return nil, err
	}
	return s.EnrollImage(ctx, name, stream, data)
}

// EnrollImage registers a student with an encoded JPEG or PNG photo. The photo
// is stored as JPEG under a file name derived from the student's name; a
// student with the same derived name overwrites the earlier file.
func (s *Service) EnrollImage(ctx context.Context, name, stream string, data []byte) (*model.Student, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}

	photo, err := toJPEG(data)
	if err != nil {
		return nil, err
	}

	path, err := s.dataset.Save(SanitizeFilename(name), photo)
	if err != nil {
		return nil, err
	}

	student := &model.Student{
		Name:      name,
		Stream:    strings.TrimSpace(stream),
		ImagePath: path,
	}
	id, err := s.students.Insert(ctx, student)
	if err != nil {
		return nil, err
	}
	student.ID = id

	s.logger.Info("Enrolled student %d (%s)", id, name)
	return student, nil
}

// List returns every enrolled student with the URL of its photo.
func (s *Service) List(ctx context.Context) ([]dto.StudentView, error) {
	students, err := s.students.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]dto.StudentView, 0, len(students))
	for _, st := range students {
		views = append(views, dto.StudentView{
			ID:       st.ID,
			Name:     st.Name,
			Stream:   st.Stream,
			ImageURL: ImageURL(st.ImagePath),
		})
	}
	return views, nil
}

// Get returns one student or ErrNotFound.
func (s *Service) Get(ctx context.Context, id int64) (*model.Student, error) {
	student, err := s.students.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, ErrNotFound
	}
	return student, nil
}

// FindByName returns the student enrolled under name or ErrNotFound.
func (s *Service) FindByName(ctx context.Context, name string) (*model.Student, error) {
	student, err := s.students.GetByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, ErrNotFound
	}
	return student, nil
}

// Delete removes the student, its attendance and its photo.
func (s *Service) Delete(ctx context.Context, id int64) error {
	student, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.students.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.dataset.Remove(student.ImagePath); err != nil {
		s.logger.Warning("Student %d deleted but photo was not: %v", id, err)
	}

	s.logger.Info("Deleted student %d (%s)", id, student.Name)
	return nil
}

// SanitizeFilename derives the photo file name of a student.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
	return unsafeFilenameChars.ReplaceAllString(name, "_") + ".jpg"
}

// ImageURL returns where the dataset handler serves a stored photo.
func ImageURL(path string) string {
	return "/dataset/" + url.PathEscape(filepath.Base(path))
}

// DecodeDataURI returns the payload of a base64 data URI such as the one
// produced by canvas.toDataURL.
func DecodeDataURI(uri string) ([]byte, error) {
	header, payload, ok := strings.Cut(uri, ",")
	if !ok || !strings.HasPrefix(header, "data:") || !strings.HasSuffix(header, ";base64") {
		return nil, fmt.Errorf("%w: not a base64 data URI", ErrInvalidImageData)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImageData, err)
	}
	return data, nil
}

func toJPEG(data []byte) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImageData, err)
	}
	if format == "jpeg" {
		return data, nil
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}); err != nil {
		return nil, fmt.Errorf("failed to convert photo to JPEG: %w", err)
	}
	return buf.Bytes(), nil
}
