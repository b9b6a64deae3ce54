// Package models defines the data structures used throughout the storefront.
// It includes the credential pair and durable session, the catalog payloads
// exchanged with the REST backend, and the authentication request and response shapes.
package models

// Credentials is the bearer credential pair issued by the backend.
// An empty field means the credential is absent.
type Credentials struct {
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// Empty reports whether neither token is present.
func (c Credentials) Empty() bool {
	return c.AccessToken == "" && c.RefreshToken == ""
}

// Session is the client-side state that survives a restart: the credential pair,
// the signed-in username and the admin-role flags reported at login.
type Session struct {
	Credentials
	Username    string `json:"username,omitempty"`
	IsStaff     bool   `json:"is_staff,omitempty"`
	IsSuperuser bool   `json:"is_superuser,omitempty"`
}

// IsAdmin reports whether the session belongs to a staff or superuser account.
func (s Session) IsAdmin() bool {
	return s.IsStaff || s.IsSuperuser
}

// ErrorResponse represents a generic error response payload.
// It contains a string describing the encountered error and, after a failed
// two-factor step, whether the user has to start the login again.
type ErrorResponse struct {
	Errors       string `json:"errors"`
	RestartLogin bool   `json:"restart_login,omitempty"`
}

// BackendError is the error body returned by the REST backend.
type BackendError struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

// AuthRequest carries username and password for the login endpoints.
type AuthRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest is the payload of the registration endpoint.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

// VerifyCodeRequest exchanges a two-factor session and its emailed code for tokens.
type VerifyCodeRequest struct {
	SessionID string `json:"session_id"`
	Code      string `json:"codigo"`
}

// TokenResponse is returned by every endpoint that issues a credential pair.
type TokenResponse struct {
	Access      string `json:"access,omitempty"`
	Refresh     string `json:"refresh,omitempty"`
	Username    string `json:"username,omitempty"`
	Role        string `json:"rol,omitempty"`
	UserID      int64  `json:"user_id,omitempty"`
	IsStaff     bool   `json:"is_staff,omitempty"`
	IsSuperuser bool   `json:"is_superuser,omitempty"`
	Message     string `json:"message,omitempty"`
}

// LoginResponse distinguishes a direct sign-in (tokens present) from
// a sign-in that still needs an emailed verification code.
type LoginResponse struct {
	TokenResponse
	RequiresTwoFactor bool   `json:"requires_2fa,omitempty"`
	SessionID         string `json:"session_id,omitempty"`
	Email             string `json:"email,omitempty"`
	DebugCode         string `json:"debug_code,omitempty"`
}

// RefreshRequest is the payload of the token refresh endpoint.
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// RefreshResponse carries the replacement access token.
type RefreshResponse struct {
	Access string `json:"access"`
}

// RateRequest is the payload of the product rating endpoint.
type RateRequest struct {
	Rating float64 `json:"calificacion"`
}

// RateResponse is returned after a product is rated.
type RateResponse struct {
	Message string  `json:"mensaje"`
	Rating  float64 `json:"calificacion"`
}
