package service

import (
	"context"
	"net/http"

	"food_store/internal/app"
	"food_store/internal/models"
	"food_store/internal/pkg/security"
)

type passwordRequest struct {
	Password string `json:"password"`
}

// sessionHandler reports who is signed in.
func (handlers *handlers) sessionHandler(res http.ResponseWriter, _ *http.Request) {
	writeJSON(res, http.StatusOK, handlers.app.CurrentSession())
}

// registerHandler creates an account and signs it in when the backend returns tokens.
func (handlers *handlers) registerHandler(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
	defer cancel()

	var in app.RegisterInput
	if err := readJSON(req, &in); err != nil {
		writeErrorResponse(res, err.Error(), http.StatusBadRequest)
		return
	}

	if _, err := handlers.app.Register(ctx, in); err != nil {
		handlers.writeAppError(res, err, app.RegisterNotice)
		return
	}
	writeJSON(res, http.StatusCreated, handlers.app.CurrentSession())
}

// loginHandler signs a customer in or returns the pending two-factor step.
func (handlers *handlers) loginHandler(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
	defer cancel()

	var in models.AuthRequest
	if err := readJSON(req, &in); err != nil {
		writeErrorResponse(res, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := handlers.app.Login(ctx, in.Username, in.Password)
	if err != nil {
		handlers.writeAppError(res, err, app.LoginNotice)
		return
	}
	writeJSON(res, http.StatusOK, result)
}

// verifyHandler completes a two-factor login.
func (handlers *handlers) verifyHandler(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
	defer cancel()

	var in models.VerifyCodeRequest
	if err := readJSON(req, &in); err != nil {
		writeErrorResponse(res, err.Error(), http.StatusBadRequest)
		return
	}

	if _, err := handlers.app.VerifyCode(ctx, in.SessionID, in.Code); err != nil {
		handlers.writeAppError(res, err, app.VerifyNotice)
		return
	}
	writeJSON(res, http.StatusOK, handlers.app.CurrentSession())
}

// adminLoginHandler signs into the admin console.
func (handlers *handlers) adminLoginHandler(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
	defer cancel()

	var in models.AuthRequest
	if err := readJSON(req, &in); err != nil {
		writeErrorResponse(res, err.Error(), http.StatusBadRequest)
		return
	}

	if _, err := handlers.app.AdminLogin(ctx, in.Username, in.Password); err != nil {
		handlers.writeAppError(res, err, app.AdminLoginNotice)
		return
	}
	writeJSON(res, http.StatusOK, handlers.app.CurrentSession())
}

func (handlers *handlers) logoutHandler(res http.ResponseWriter, req *http.Request) {
	handlers.app.Logout(req.Context())
	res.WriteHeader(http.StatusNoContent)
}

// passwordStrengthHandler grades a password for the registration form.
func (handlers *handlers) passwordStrengthHandler(res http.ResponseWriter, req *http.Request) {
	var in passwordRequest
	if err := readJSON(req, &in); err != nil {
		writeErrorResponse(res, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(res, http.StatusOK, security.CheckPasswordStrength(in.Password))
}
