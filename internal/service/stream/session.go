// Package stream turns camera frames into an annotated MJPEG stream while
// recording attendance for every recognized face.
package stream

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"io"
	"math"
	"time"

	"github.com/google/uuid"

	"attendance/internal/dto"
	"attendance/internal/logger"
	"attendance/internal/model"
	"attendance/internal/service/camera"
	"attendance/internal/service/face"
)

// ErrCameraRead ends a stream whose camera stopped delivering frames.
var ErrCameraRead = errors.New("camera read failed")

// Recorder marks a student present on the date of day.
type Recorder interface {
	Record(ctx context.Context, studentID int64, day time.Time) (bool, error)
}

// Publisher receives an event for every new attendance record.
type Publisher interface {
	Publish(event dto.AttendanceEvent)
}

type Options struct {
	Threshold float64 // maximum embedding distance of a match
	Scale     float64 // detection runs on frames shrunk by this factor
	Quality   int     // JPEG quality of emitted frames
}

// Session is one viewer's stream. It alternates between a cycle that detects
// and matches faces and a cycle that redraws the previous result, starting
// with detection. A Session is not safe for concurrent use.
type Session struct {
	ID string

	registry  *face.Registry
	matcher   face.Matcher
	recorder  Recorder
	publisher Publisher
	logger    *logger.Logger
	opts      Options
	now       func() time.Time

	detect bool
	boxes  []image.Rectangle // frame coordinates
	names  []string

	warnedEmpty       bool
	warnedUnavailable bool
	failedRecords     map[int64]bool // students whose last Record call failed
}

// NewSession creates a session over a registry loaded for it. publisher may
// be nil.
func NewSession(registry *face.Registry, matcher face.Matcher, recorder Recorder, publisher Publisher, logger *logger.Logger, opts Options) *Session {
	if opts.Scale <= 0 || opts.Scale > 1 {
		opts.Scale = 1
	}
	if opts.Quality <= 0 || opts.Quality > 100 {
		opts.Quality = 80
	}

	return &Session{
		ID:        uuid.NewString(),
		registry:  registry,
		matcher:   matcher,
		recorder:  recorder,
		publisher: publisher,
		logger:    logger,
		opts:      opts,
		now:       time.Now,
		detect:    true,

		failedRecords: map[int64]bool{},
	}
}

// Process runs one cycle on frame and returns a copy annotated with the
// current boxes and names. On skipped cycles the boxes of the last detection
// are drawn again, one cycle stale.
func (s *Session) Process(ctx context.Context, frame image.Image) *image.RGBA {
	if s.detect {
		s.detectFaces(ctx, frame)
	}
	s.detect = !s.detect

	out := image.NewRGBA(frame.Bounds())
	draw.Draw(out, out.Bounds(), frame, frame.Bounds().Min, draw.Src)
	annotate(out, s.boxes, s.names)
	return out
}

func (s *Session) detectFaces(ctx context.Context, frame image.Image) {
	s.boxes, s.names = nil, nil

	small := downscale(frame, s.opts.Scale)

	boxes, err := s.matcher.Detect(small)
	if err != nil {
		s.matcherFailed("detection", err)
		return
	}
	if len(boxes) == 0 {
		return
	}

	embeddings, err := s.matcher.Encode(small, boxes)
	if err != nil {
		s.matcherFailed("encoding", err)
		return
	}

	origin := frame.Bounds().Min
	for i, box := range boxes {
		var embedding face.Embedding
		if i < len(embeddings) {
			embedding = embeddings[i]
		}

		s.boxes = append(s.boxes, scaleUp(box, s.opts.Scale, origin))
		s.names = append(s.names, s.identify(ctx, embedding))
	}
}

// identify matches one face and records attendance on a positive match.
func (s *Session) identify(ctx context.Context, embedding face.Embedding) string {
	result, err := s.registry.Match(embedding, s.opts.Threshold)
	if errors.Is(err, face.ErrNoKnownFaces) {
		if !s.warnedEmpty {
			s.logger.Warning("Session %s: face detected but %v", s.ID, err)
			s.warnedEmpty = true
		}
		return face.Unknown
	}
	if !result.Matched {
		return face.Unknown
	}

	now := s.now()
	created, err := s.recorder.Record(ctx, result.StudentID, now)
	if err != nil {
		// A student deleted while the session runs fails on every cycle.
		if !s.failedRecords[result.StudentID] {
			s.logger.Error("Session %s: recording student %d: %v", s.ID, result.StudentID, err)
			s.failedRecords[result.StudentID] = true
		}
		return result.Name
	}
	delete(s.failedRecords, result.StudentID)

	if created && s.publisher != nil {
		s.publisher.Publish(dto.AttendanceEvent{
			StudentID: result.StudentID,
			Name:      result.Name,
			Date:      model.FormatDate(now),
			Time:      now,
			Session:   s.ID,
		})
	}
	return result.Name
}

func (s *Session) matcherFailed(step string, err error) {
	if errors.Is(err, face.ErrMatcherUnavailable) {
		if !s.warnedUnavailable {
			s.logger.Warning("Session %s: %v, streaming without recognition", s.ID, err)
			s.warnedUnavailable = true
		}
		return
	}
	s.logger.Error("Session %s: face %s failed: %v", s.ID, step, err)
}

// Stream reads frames from src and writes them to w as multipart chunks until
// the source ends, the camera fails, the context is cancelled or a write
// fails. flush, if not nil, runs after every chunk.
func (s *Session) Stream(ctx context.Context, src camera.Source, w io.Writer, flush func()) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		frame, err := src.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrCameraRead, err)
		}

		if err := writeFrame(w, s.Process(ctx, frame), s.opts.Quality); err != nil {
			return err
		}
		if flush != nil {
			flush()
		}
	}
}

// scaleUp maps a box found on the downscaled frame back onto the original.
func scaleUp(box image.Rectangle, scale float64, origin image.Point) image.Rectangle {
	f := 1 / scale
	up := func(v int) int { return int(math.Round(float64(v) * f)) }
	return image.Rect(up(box.Min.X), up(box.Min.Y), up(box.Max.X), up(box.Max.Y)).Add(origin)
}
