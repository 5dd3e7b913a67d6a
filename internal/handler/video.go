package handler

import (
	"context"
	"errors"
	"net/http"

	"attendance/internal/service"
	"attendance/internal/service/camera"
	"attendance/internal/service/stream"
)

// VideoFeedHandler handles GET /video_feed: an annotated MJPEG stream that
// runs until the client disconnects or the camera fails. Only one stream can
// hold the camera; further requests get 409 Conflict.
func VideoFeedHandler(manager *service.Manager) http.HandlerFunc {
	logger := manager.GetLogger()

	return func(w http.ResponseWriter, r *http.Request) {
		src, release, err := manager.GetCameraGuard().Acquire()
		if errors.Is(err, camera.ErrBusy) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		if err != nil {
			logger.Error("Failed to open camera: %v", err)
			http.Error(w, "Camera unavailable", http.StatusServiceUnavailable)
			return
		}
		defer release()

		session, err := manager.NewSession(r.Context())
		if err != nil {
			logger.Error("Failed to start stream session: %v", err)
			http.Error(w, "Failed to start stream", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", stream.ContentType)
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Connection", "close")
		w.WriteHeader(http.StatusOK)

		var flush func()
		if f, ok := w.(http.Flusher); ok {
			flush = f.Flush
		}

		err = session.Stream(r.Context(), src, w, flush)
		switch {
		case err == nil:
			logger.Info("Stream session %s: camera source ended", session.ID)
		case errors.Is(err, stream.ErrCameraRead):
			logger.Error("Stream session %s: %v", session.ID, err)
		case errors.Is(err, context.Canceled):
			logger.Info("Stream session %s: client disconnected", session.ID)
		default:
			logger.Info("Stream session %s ended: %v", session.ID, err)
		}
	}
}
