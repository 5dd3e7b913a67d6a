package service

import (
	"context"
	"errors"

	"attendance/internal/config"
	"attendance/internal/logger"
	"attendance/internal/repository"
	"attendance/internal/service/attendance"
	"attendance/internal/service/camera"
	"attendance/internal/service/enrollment"
	"attendance/internal/service/face"
	"attendance/internal/service/storage"
	"attendance/internal/service/stream"
	"attendance/internal/service/websocket"
)

// Manager holds the services shared by the HTTP handlers.
type Manager struct {
	config   *config.Config
	logger   *logger.Logger
	students repository.StudentRepository
	matcher  face.Matcher

	recorder         *attendance.Recorder
	enrollment       *enrollment.Service
	dataset          *storage.Dataset
	camera           *camera.Guard
	websocketService *websocket.HubService
}

func NewManager(config *config.Config, logger *logger.Logger,
	students repository.StudentRepository, attendanceRepo repository.AttendanceRepository,
	matcher face.Matcher, dataset *storage.Dataset, camera *camera.Guard, hub *websocket.HubService) *Manager {
	return &Manager{
		config:           config,
		logger:           logger,
		students:         students,
		matcher:          matcher,
		recorder:         attendance.NewRecorder(attendanceRepo, logger),
		enrollment:       enrollment.NewService(students, dataset, logger),
		dataset:          dataset,
		camera:           camera,
		websocketService: hub,
	}
}

// NewSession loads the registry of known faces and returns a stream session
// over it. The registry is not refreshed while the session runs.
func (m *Manager) NewSession(ctx context.Context) (*stream.Session, error) {
	registry, err := face.LoadRegistry(ctx, m.students, m.matcher, m.logger)
	if err != nil && !errors.Is(err, face.ErrMatcherUnavailable) {
		return nil, err
	}

	var publisher stream.Publisher
	if m.websocketService != nil {
		publisher = m.websocketService
	}

	session := stream.NewSession(registry, m.matcher, m.recorder, publisher, m.logger, stream.Options{
		Threshold: m.config.MatchThreshold,
		Scale:     m.config.DetectionScale,
		Quality:   m.config.JPEGQuality,
	})
	m.logger.Info("Stream session %s started with %d known faces", session.ID, registry.Len())
	return session, nil
}

func (m *Manager) GetConfig() *config.Config {
	return m.config
}

func (m *Manager) GetLogger() *logger.Logger {
	return m.logger
}

func (m *Manager) GetRecorder() *attendance.Recorder {
	return m.recorder
}

func (m *Manager) GetEnrollmentService() *enrollment.Service {
	return m.enrollment
}

func (m *Manager) GetDataset() *storage.Dataset {
	return m.dataset
}

func (m *Manager) GetCameraGuard() *camera.Guard {
	return m.camera
}

func (m *Manager) GetWebsocketService() *websocket.HubService {
	return m.websocketService
}
