package handler

import (
	"net/http"

	"attendance/internal/config"
	"attendance/internal/logger"
	"attendance/internal/middleware"
	"attendance/internal/view"
)

// LoginPageHandler handles GET /login.
func LoginPageHandler(renderer *view.Renderer, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render(w, renderer, logger, http.StatusOK, view.LoginPage, view.LoginData{})
	}
}

// LoginHandler handles POST /auth/login by validating password and issuing an auth cookie.
func LoginHandler(config *config.Config, renderer *view.Renderer, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		password := r.FormValue("password")
		if config.Password == "" || password != config.Password {
			logger.Warning("Failed login attempt from %s", r.RemoteAddr)
			render(w, renderer, logger, http.StatusUnauthorized, view.LoginPage, view.LoginData{Error: "Invalid password"})
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     middleware.AuthCookie,
			Value:    middleware.AuthToken(config.Password),
			Path:     "/",
			MaxAge:   2592000, // 30 days
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// LogoutHandler handles POST /auth/logout by clearing the auth cookie.
func LogoutHandler(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AuthCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
