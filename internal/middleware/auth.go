package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"
)

// AuthCookie carries the login token.
const AuthCookie = "authenticated"

// AuthToken is the cookie value granted for password.
func AuthToken(password string) string {
	sum := sha256.Sum256([]byte("attendance:" + password))
	return hex.EncodeToString(sum[:])
}

// Auth requires a login cookie on every request except the login pages and
// the health check. An empty password disables the check.
func Auth(password string) func(http.Handler) http.Handler {
	token := AuthToken(password)

	return func(next http.Handler) http.Handler {
		if password == "" {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/login" ||
				r.URL.Path == "/auth/login" ||
				r.URL.Path == "/healthz" {
				next.ServeHTTP(w, r)
				return
			}

			cookie, err := r.Cookie(AuthCookie)
			if err != nil || subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(token)) != 1 {
				// API and websocket clients get 401, browsers go to the login page
				if strings.HasPrefix(r.URL.Path, "/api/") ||
					strings.HasPrefix(r.URL.Path, "/ws/") ||
					r.Header.Get("X-Requested-With") == "XMLHttpRequest" {
					http.Error(w, "Unauthorized", http.StatusUnauthorized)
					return
				}
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
