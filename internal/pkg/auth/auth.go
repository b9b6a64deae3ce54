package auth

import (
	"encoding/json"
	"net/http"

	"food_store/internal/models"
)

// RequireAdmin is an HTTP middleware guarding the admin console.
// It reads the current session through the provided accessor and rejects the request
// with 401 when nobody is signed in and with 403 when the session lacks an admin flag.
func RequireAdmin(current func() models.Session) func(h http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			s := current()
			if s.AccessToken == "" {
				writeErrorResponse(w, "no active session", http.StatusUnauthorized)
				return
			}
			if !s.IsAdmin() {
				writeErrorResponse(w, "Acceso denegado. Solo administradores.", http.StatusForbidden)
				return
			}
			h.ServeHTTP(w, r)
		}
		return http.HandlerFunc(fn)
	}
}

// writeErrorResponse writes a JSON-formatted error response to the HTTP response writer.
func writeErrorResponse(res http.ResponseWriter, errorInfo string, statusCode int) {
	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(statusCode)
	_ = json.NewEncoder(res).Encode(models.ErrorResponse{Errors: errorInfo})
}
