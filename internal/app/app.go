package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"

	"attendance/internal/config"
	"attendance/internal/logger"
	"attendance/internal/route"
	"attendance/internal/service"
	"attendance/internal/service/camera"
	"attendance/internal/service/camera/device"
	"attendance/internal/service/face"
	"attendance/internal/service/face/dlib"
	"attendance/internal/service/storage"
	"attendance/internal/service/websocket"
	"attendance/internal/view"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config     *config.Config
	logger     *logger.Logger
	store      *Store
	hubService *websocket.HubService
	manager    *service.Manager
	renderer   *view.Renderer
	closers    []func()
}

func NewApp() (*App, error) {
	cfg := config.Load()
	log := logger.NewLogger(cfg)

	store, err := OpenStore(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	dataset, err := storage.NewDataset(cfg, log)
	if err != nil {
		store.Close()
		return nil, err
	}

	renderer, err := view.NewRenderer()
	if err != nil {
		store.Close()
		return nil, err
	}

	a := &App{
		config:   cfg,
		logger:   log,
		store:    store,
		renderer: renderer,
	}

	matcher := a.loadMatcher()
	guard := camera.NewGuard(device.Opener(cfg))
	a.hubService = websocket.NewHubService(log)
	a.manager = service.NewManager(cfg, log, store.Students, store.Attendance, matcher, dataset, guard, a.hubService)

	return a, nil
}

// loadMatcher falls back to face.Unavailable when the dlib models cannot be
// loaded, so the feed still works without recognition.
func (a *App) loadMatcher() face.Matcher {
	rec, err := dlib.NewRecognizer(a.config.ModelsDirectory)
	if err != nil {
		a.logger.Warning("Face recognition disabled: %v", err)
		return face.Unavailable{}
	}

	a.closers = append(a.closers, rec.Close)
	a.logger.Info("Face models loaded from %s", a.config.ModelsDirectory)
	return rec
}

// Run serves HTTP until SIGINT or SIGTERM, then shuts down gracefully.
func (a *App) Run() error {
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start background services
	go a.hubService.Run(ctx)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", a.config.Port),
		Handler: route.SetupRoutes(a.manager, a.renderer),
		// Streams watch the request context, so they end on shutdown.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	fmt.Printf("Attendance Server\n")
	fmt.Printf("URL: http://localhost:%d\n", a.config.Port)
	fmt.Printf("Database: %s\n", a.config.DatabaseDriver)
	fmt.Printf("Camera: %s %s\n", a.config.CameraBackend, a.config.CameraDevice)
	fmt.Printf("Dataset: %s\n", a.config.DatasetDirectory)
	a.logger.Info("Server listening on :%d", a.config.Port)

	daemon.SdNotify(false, daemon.SdNotifyReady)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down")
	daemon.SdNotify(false, daemon.SdNotifyStopping)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// Close releases the database and the face models.
func (a *App) Close() {
	for _, c := range a.closers {
		c()
	}
	a.closers = nil

	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Error("Error closing database: %v", err)
		}
		a.store = nil
	}
}
