package route

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"attendance/internal/handler"
	"attendance/internal/middleware"
	"attendance/internal/service"
	"attendance/internal/view"
)

// SetupRoutes registers pages, the video feed, API endpoints and log
// endpoints behind the optional password gate.
func SetupRoutes(manager *service.Manager, renderer *view.Renderer) http.Handler {
	cfg := manager.GetConfig()
	logger := manager.GetLogger()

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.Auth(cfg.Password))

	// Pages
	r.Get("/", handler.IndexHandler(manager, renderer))
	r.Get("/register", handler.RegisterPageHandler(manager, renderer))
	r.Post("/register", handler.RegisterHandler(manager, renderer))
	r.Get("/students", handler.StudentsHandler(manager, renderer))
	r.Post("/delete_student/{id}", handler.DeleteStudentHandler(manager))
	r.Get("/dataset/{filename}", handler.DatasetHandler(manager))

	// Streams
	r.Get("/video_feed", handler.VideoFeedHandler(manager))
	r.Get("/ws/attendance", handler.AttendanceWebsocketHandler(manager, logger))

	// API endpoints
	r.Get("/api/attendance", handler.AttendanceAPIHandler(manager))
	r.Get("/healthz", handler.HealthHandler)

	// Log endpoints
	r.Get("/logs/{level}", handler.ShowLogsHandler(logger))
	r.Post("/logs/{level}/clear", handler.ClearLogsHandler(logger))

	// Auth endpoints
	r.Get("/login", handler.LoginPageHandler(renderer, logger))
	r.Post("/auth/login", handler.LoginHandler(cfg, renderer, logger))
	r.Post("/auth/logout", handler.LogoutHandler)

	return r
}
