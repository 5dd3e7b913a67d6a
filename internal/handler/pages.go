package handler

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"attendance/internal/model"
	"attendance/internal/service"
	"attendance/internal/service/enrollment"
	"attendance/internal/view"
)

// IndexHandler handles GET / with the live feed and today's attendance.
func IndexHandler(manager *service.Manager, renderer *view.Renderer) http.HandlerFunc {
	logger := manager.GetLogger()

	return func(w http.ResponseWriter, r *http.Request) {
		day, err := manager.GetRecorder().Day(r.Context(), model.FormatDate(time.Now()))
		if err != nil {
			logger.Error("Failed to load attendance: %v", err)
			http.Error(w, "Failed to load attendance", http.StatusInternalServerError)
			return
		}

		render(w, renderer, logger, http.StatusOK, view.IndexPage, view.IndexData{
			Date:    day.Date,
			Entries: day.Entries,
			Auth:    manager.GetConfig().Password != "",
		})
	}
}

// RegisterPageHandler handles GET /register.
func RegisterPageHandler(manager *service.Manager, renderer *view.Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render(w, renderer, manager.GetLogger(), http.StatusOK, view.RegisterPage, view.RegisterData{
			Auth: manager.GetConfig().Password != "",
		})
	}
}

// RegisterHandler handles POST /register with the name, stream and
// image_data form fields, then redirects to the main page.
func RegisterHandler(manager *service.Manager, renderer *view.Renderer) http.HandlerFunc {
	logger := manager.GetLogger()

	return func(w http.ResponseWriter, r *http.Request) {
		name := r.FormValue("name")
		stream := r.FormValue("stream")

		_, err := manager.GetEnrollmentService().Enroll(r.Context(), name, stream, r.FormValue("image_data"))
		if errors.Is(err, enrollment.ErrNameRequired) || errors.Is(err, enrollment.ErrInvalidImageData) {
			logger.Warning("Rejected registration for %q: %v", name, err)
			render(w, renderer, logger, http.StatusBadRequest, view.RegisterPage, view.RegisterData{
				Name:   name,
				Stream: stream,
				Error:  err.Error(),
				Auth:   manager.GetConfig().Password != "",
			})
			return
		}
		if err != nil {
			logger.Error("Registration of %q failed: %v", name, err)
			http.Error(w, "Registration failed", http.StatusInternalServerError)
			return
		}

		http.Redirect(w, r, "/", http.StatusFound)
	}
}

// StudentsHandler handles GET /students.
func StudentsHandler(manager *service.Manager, renderer *view.Renderer) http.HandlerFunc {
	logger := manager.GetLogger()

	return func(w http.ResponseWriter, r *http.Request) {
		students, err := manager.GetEnrollmentService().List(r.Context())
		if err != nil {
			logger.Error("Failed to list students: %v", err)
			http.Error(w, "Failed to list students", http.StatusInternalServerError)
			return
		}

		render(w, renderer, logger, http.StatusOK, view.StudentsPage, view.StudentsData{
			Students: students,
			Auth:     manager.GetConfig().Password != "",
		})
	}
}

// DeleteStudentHandler handles POST /delete_student/{id}. Deleting an unknown
// student is a no-op; both cases redirect to the student list.
func DeleteStudentHandler(manager *service.Manager) http.HandlerFunc {
	logger := manager.GetLogger()

	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			http.NotFound(w, r)
			return
		}

		err = manager.GetEnrollmentService().Delete(r.Context(), id)
		switch {
		case errors.Is(err, enrollment.ErrNotFound):
			logger.Warning("Delete requested for unknown student %d", id)
		case err != nil:
			logger.Error("Failed to delete student %d: %v", id, err)
			http.Error(w, "Failed to delete student", http.StatusInternalServerError)
			return
		}

		http.Redirect(w, r, "/students", http.StatusFound)
	}
}

// DatasetHandler handles GET /dataset/{filename}.
func DatasetHandler(manager *service.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := manager.GetDataset().Path(chi.URLParam(r, "filename"))
		serveImageFile(w, r, path)
	}
}

func serveImageFile(w http.ResponseWriter, r *http.Request, path string) {
	if _, err := os.Stat(path); err != nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFile(w, r, path)
}

// AttendanceAPIHandler handles GET /api/attendance?date=YYYY-MM-DD, defaulting
// to today.
func AttendanceAPIHandler(manager *service.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date := r.URL.Query().Get("date")
		if date == "" {
			date = model.FormatDate(time.Now())
		}
		if _, err := time.Parse(model.DateLayout, date); err != nil {
			respondError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}

		day, err := manager.GetRecorder().Day(r.Context(), date)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				manager.GetLogger().Error("Failed to load attendance for %s: %v", date, err)
			}
			respondError(w, http.StatusInternalServerError, "failed to load attendance")
			return
		}

		respondJSON(w, http.StatusOK, day)
	}
}
