package stream

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"attendance/internal/config"
	"attendance/internal/dto"
	"attendance/internal/logger"
	"attendance/internal/service/camera"
	"attendance/internal/service/face"
	"attendance/internal/service/face/facetest"
)

var (
	red  = color.RGBA{R: 255, A: 255}
	blue = color.RGBA{B: 255, A: 255}
)

type recordCall struct {
	studentID int64
	day       time.Time
}

type fakeRecorder struct {
	mu    sync.Mutex
	calls []recordCall
	seen  map[string]bool
	err   error
}

func (r *fakeRecorder) Record(_ context.Context, studentID int64, day time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls = append(r.calls, recordCall{studentID, day})
	if r.err != nil {
		return false, r.err
	}
	if r.seen == nil {
		r.seen = map[string]bool{}
	}
	key := fmt.Sprintf("%s/%d", day.Format("2006-01-02"), studentID)
	if r.seen[key] {
		return false, nil
	}
	r.seen[key] = true
	return true, nil
}

type fakePublisher struct {
	events []dto.AttendanceEvent
}

func (p *fakePublisher) Publish(e dto.AttendanceEvent) {
	p.events = append(p.events, e)
}

type failingSource struct {
	frames int
	img    image.Image
}

func (s *failingSource) Read() (image.Image, error) {
	if s.frames == 0 {
		return nil, errors.New("device unplugged")
	}
	s.frames--
	return s.img, nil
}

func (s *failingSource) Close() error { return nil }

type testEnv struct {
	session   *Session
	matcher   *facetest.Matcher
	recorder  *fakeRecorder
	publisher *fakePublisher
	log       *logger.Logger
}

func newTestEnv(t *testing.T, registry *face.Registry) *testEnv {
	t.Helper()
	env := &testEnv{
		matcher:   &facetest.Matcher{},
		recorder:  &fakeRecorder{},
		publisher: &fakePublisher{},
		log:       logger.NewLogger(&config.Config{LogDirectory: t.TempDir()}),
	}
	env.session = NewSession(registry, env.matcher, env.recorder, env.publisher, env.log, Options{
		Threshold: 0.6,
		Scale:     0.25,
		Quality:   90,
	})
	env.session.now = func() time.Time {
		return time.Date(2025, 3, 14, 9, 15, 30, 0, time.Local)
	}
	return env
}

func ashaRegistry() *face.Registry {
	r := &face.Registry{}
	r.Add(7, "Asha Rao", facetest.Embedding(red))
	return r
}

func (env *testEnv) warnings(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(env.log.Directory(), logger.WarningFile))
	if err != nil {
		t.Fatalf("Failed to read warning log: %v", err)
	}
	return string(data)
}

func TestSession_AlternatesDetection(t *testing.T) {
	env := newTestEnv(t, ashaRegistry())
	frame := facetest.SolidImage(64, 48, red)
	ctx := context.Background()

	for cycle, wantCalls := range []int{1, 1, 2, 2, 3} {
		env.session.Process(ctx, frame)
		if got := env.matcher.DetectCalls(); got != wantCalls {
			t.Errorf("After cycle %d: %d detect calls, expected %d", cycle+1, got, wantCalls)
		}
	}
}

func TestSession_RecognizedFaceIsRecorded(t *testing.T) {
	env := newTestEnv(t, ashaRegistry())
	env.session.Process(context.Background(), facetest.SolidImage(64, 48, red))

	if len(env.recorder.calls) != 1 || env.recorder.calls[0].studentID != 7 {
		t.Fatalf("Expected one record for student 7, got %+v", env.recorder.calls)
	}
	if len(env.session.names) != 1 || env.session.names[0] != "Asha Rao" {
		t.Errorf("Expected label Asha Rao, got %v", env.session.names)
	}

	if len(env.publisher.events) != 1 {
		t.Fatalf("Expected one published event, got %d", len(env.publisher.events))
	}
	event := env.publisher.events[0]
	if event.StudentID != 7 || event.Date != "2025-03-14" || event.Session != env.session.ID {
		t.Errorf("Unexpected event: %+v", event)
	}
}

func TestSession_BoxesScaledToFrame(t *testing.T) {
	env := newTestEnv(t, ashaRegistry())
	env.session.Process(context.Background(), facetest.SolidImage(64, 48, red))

	// The fake finds the middle half of the 16x12 detection frame.
	want := image.Rect(16, 12, 48, 36)
	if len(env.session.boxes) != 1 || env.session.boxes[0] != want {
		t.Errorf("Expected box %v, got %v", want, env.session.boxes)
	}
}

func TestSession_StaleBoxesDrawnOnSkippedCycle(t *testing.T) {
	env := newTestEnv(t, ashaRegistry())
	ctx := context.Background()
	frame := facetest.SolidImage(64, 48, red)

	first := env.session.Process(ctx, frame)
	second := env.session.Process(ctx, frame)

	for i, out := range []*image.RGBA{first, second} {
		if got := out.RGBAAt(16, 24); got != boxColor {
			t.Errorf("Frame %d: left edge pixel = %v, expected box colour", i+1, got)
		}
		if got := out.RGBAAt(32, 24); got != red {
			t.Errorf("Frame %d: centre pixel = %v, expected the original frame", i+1, got)
		}
	}

	if env.matcher.DetectCalls() != 1 {
		t.Errorf("Skipped cycle must not run detection, got %d calls", env.matcher.DetectCalls())
	}
	if len(env.recorder.calls) != 1 {
		t.Errorf("Skipped cycle must not record attendance, got %d calls", len(env.recorder.calls))
	}
}

func TestSession_ProcessLeavesInputUntouched(t *testing.T) {
	env := newTestEnv(t, ashaRegistry())
	frame := facetest.SolidImage(64, 48, red)

	env.session.Process(context.Background(), frame)

	if got := frame.RGBAAt(16, 24); got != red {
		t.Errorf("Input frame was modified: %v", got)
	}
}

func TestSession_UnknownFaceNotRecorded(t *testing.T) {
	r := &face.Registry{}
	r.Add(3, "Ben Okafor", facetest.Embedding(blue))
	env := newTestEnv(t, r)

	env.session.Process(context.Background(), facetest.SolidImage(64, 48, red))

	if len(env.recorder.calls) != 0 {
		t.Errorf("Unknown face must not be recorded, got %+v", env.recorder.calls)
	}
	if len(env.session.names) != 1 || env.session.names[0] != face.Unknown {
		t.Errorf("Expected label %q, got %v", face.Unknown, env.session.names)
	}
	if len(env.publisher.events) != 0 {
		t.Errorf("Unexpected events: %+v", env.publisher.events)
	}
}

func TestSession_EmptyRegistry(t *testing.T) {
	env := newTestEnv(t, &face.Registry{})
	ctx := context.Background()
	frame := facetest.SolidImage(64, 48, red)

	for i := 0; i < 4; i++ {
		env.session.Process(ctx, frame)
	}

	if len(env.recorder.calls) != 0 {
		t.Errorf("Nothing can be recorded without known faces, got %+v", env.recorder.calls)
	}
	if len(env.session.names) != 1 || env.session.names[0] != face.Unknown {
		t.Errorf("Expected label %q, got %v", face.Unknown, env.session.names)
	}

	warnings := env.warnings(t)
	if n := strings.Count(warnings, face.ErrNoKnownFaces.Error()); n != 1 {
		t.Errorf("Expected the empty registry reported once, got %d times in %q", n, warnings)
	}
}

func TestSession_MatcherErrorClearsBoxes(t *testing.T) {
	env := newTestEnv(t, ashaRegistry())
	ctx := context.Background()
	frame := facetest.SolidImage(64, 48, red)

	env.session.Process(ctx, frame)
	env.session.Process(ctx, frame)

	env.matcher.DetectErr = errors.New("model crashed")
	out := env.session.Process(ctx, frame)

	if len(env.session.boxes) != 0 {
		t.Errorf("Expected boxes cleared after a failed detection, got %v", env.session.boxes)
	}
	if got := out.RGBAAt(16, 24); got != red {
		t.Errorf("No box should be drawn after a failed detection, got %v", got)
	}
}

func TestSession_UnavailableMatcherWarnsOnce(t *testing.T) {
	env := newTestEnv(t, &face.Registry{})
	env.session.matcher = face.Unavailable{}
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		env.session.Process(ctx, facetest.SolidImage(64, 48, red))
	}

	if n := strings.Count(env.warnings(t), face.ErrMatcherUnavailable.Error()); n != 1 {
		t.Errorf("Expected one unavailable warning, got %d", n)
	}
}

func TestSession_RecorderErrorKeepsStreaming(t *testing.T) {
	env := newTestEnv(t, ashaRegistry())
	env.recorder.err = errors.New("database is locked")

	var buf bytes.Buffer
	src := camera.NewStill(facetest.SolidImage(64, 48, red), 3, 0)
	if err := env.session.Stream(context.Background(), src, &buf, nil); err != nil {
		t.Fatalf("Stream failed: %v", err)
	}

	if n := bytes.Count(buf.Bytes(), partHeader); n != 3 {
		t.Errorf("Expected 3 frames despite recorder errors, got %d", n)
	}
	if len(env.session.names) != 1 || env.session.names[0] != "Asha Rao" {
		t.Errorf("Recognized face should keep its label, got %v", env.session.names)
	}
}

func (env *testEnv) errorLog(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(env.log.Directory(), logger.ErrorFile))
	if err != nil {
		t.Fatalf("Failed to read error log: %v", err)
	}
	return string(data)
}

func TestSession_RecorderErrorLoggedOncePerStudent(t *testing.T) {
	env := newTestEnv(t, ashaRegistry())
	env.recorder.err = errors.New("FOREIGN KEY constraint failed")

	src := camera.NewStill(facetest.SolidImage(64, 48, red), 10, 0)
	if err := env.session.Stream(context.Background(), src, &bytes.Buffer{}, nil); err != nil {
		t.Fatalf("Stream failed: %v", err)
	}

	if n := len(env.recorder.calls); n != 5 {
		t.Fatalf("Expected 5 record attempts, got %d", n)
	}
	if n := strings.Count(env.errorLog(t), "recording student 7"); n != 1 {
		t.Errorf("Expected the failure to be logged once, got %d lines", n)
	}

	// A success resets the student, so a later failure is reported again.
	env.recorder.err = nil
	env.session.Process(context.Background(), facetest.SolidImage(64, 48, red))
	env.session.Process(context.Background(), facetest.SolidImage(64, 48, red))
	env.recorder.err = errors.New("database is locked")
	env.session.Process(context.Background(), facetest.SolidImage(64, 48, red))

	if n := strings.Count(env.errorLog(t), "recording student 7"); n != 2 {
		t.Errorf("Expected a second report after recovery, got %d lines", n)
	}
}

func TestStream_MultipartFormat(t *testing.T) {
	env := newTestEnv(t, ashaRegistry())

	var buf bytes.Buffer
	flushes := 0
	src := camera.NewStill(facetest.SolidImage(64, 48, red), 2, 0)
	if err := env.session.Stream(context.Background(), src, &buf, func() { flushes++ }); err != nil {
		t.Fatalf("Stream failed: %v", err)
	}

	if flushes != 2 {
		t.Errorf("Expected a flush per frame, got %d", flushes)
	}

	body := buf.Bytes()
	header := "--frame\r\nContent-Type: image/jpeg\r\n\r\n"
	if !bytes.HasPrefix(body, []byte(header)) {
		t.Fatalf("Stream does not start with a part header: %q", body[:min(len(body), 60)])
	}

	parts := bytes.Split(body, []byte(header))
	if len(parts) != 3 || len(parts[0]) != 0 {
		t.Fatalf("Expected 2 parts, got %d", len(parts)-1)
	}

	for i, part := range parts[1:] {
		if !bytes.HasSuffix(part, []byte("\r\n")) {
			t.Errorf("Part %d does not end with CRLF", i+1)
			continue
		}
		img, err := jpeg.Decode(bytes.NewReader(part[:len(part)-2]))
		if err != nil {
			t.Errorf("Part %d is not a JPEG: %v", i+1, err)
			continue
		}
		if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 48 {
			t.Errorf("Part %d has size %v, expected the full frame", i+1, img.Bounds())
		}
	}
}

func TestStream_CameraFailureEndsStream(t *testing.T) {
	env := newTestEnv(t, ashaRegistry())

	var buf bytes.Buffer
	src := &failingSource{frames: 1, img: facetest.SolidImage(64, 48, red)}
	err := env.session.Stream(context.Background(), src, &buf, nil)
	if !errors.Is(err, ErrCameraRead) {
		t.Fatalf("Expected ErrCameraRead, got %v", err)
	}

	if n := bytes.Count(buf.Bytes(), partHeader); n != 1 {
		t.Errorf("Expected the frame read before the failure, got %d frames", n)
	}
}

func TestStream_StopsWhenContextCancelled(t *testing.T) {
	env := newTestEnv(t, ashaRegistry())
	ctx, cancel := context.WithCancel(context.Background())

	var buf bytes.Buffer
	frames := 0
	src := camera.NewStill(facetest.SolidImage(64, 48, red), 0, 0)
	err := env.session.Stream(ctx, src, &buf, func() {
		frames++
		if frames == 2 {
			cancel()
		}
	})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if frames != 2 {
		t.Errorf("Expected 2 frames before cancellation, got %d", frames)
	}
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestStream_StopsOnWriteError(t *testing.T) {
	env := newTestEnv(t, ashaRegistry())
	src := camera.NewStill(facetest.SolidImage(64, 48, red), 0, 0)

	if err := env.session.Stream(context.Background(), src, brokenWriter{}, nil); err == nil {
		t.Fatal("Expected the write error to end the stream")
	}
}

func TestScaleUp(t *testing.T) {
	got := scaleUp(image.Rect(1, 2, 3, 4), 0.25, image.Pt(10, 20))
	want := image.Rect(14, 28, 22, 36)
	if got != want {
		t.Errorf("scaleUp = %v, expected %v", got, want)
	}
}
