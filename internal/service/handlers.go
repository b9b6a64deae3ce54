// Package service contains the HTTP handlers of the local storefront API consumed by the UI.
// It orchestrates request parsing, calls the application logic in the app package,
// maps backend and validation errors to user-facing notices, and writes JSON responses.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"food_store/internal/app"
	"food_store/internal/models"
	"food_store/internal/pkg/logger"
	"food_store/internal/session"
)

const requestTimeout = 10 * time.Second

var errInvalidID = errors.New("invalid id")

// handlers aggregates dependencies needed by HTTP handlers,
// including the application business logic and logger.
type handlers struct {
	app *app.App
	log *logger.Logger
}

// newHandlers initializes a new handlers instance with the provided app and logger dependencies.
func newHandlers(app *app.App, l *logger.Logger) *handlers {
	return &handlers{app: app, log: l}
}

func (handlers *handlers) livezHandler(res http.ResponseWriter, _ *http.Request) {
	writeJSON(res, http.StatusOK, map[string]string{"status": "ok"})
}

// readJSON reads the request body into v. An empty body leaves v untouched.
func readJSON(req *http.Request, v any) error {
	requestBody, err := io.ReadAll(req.Body)
	if err != nil {
		return err
	}
	if len(requestBody) == 0 {
		return nil
	}
	return json.Unmarshal(requestBody, v)
}

func idParam(req *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(req, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}

// statusFor picks the local response status for an application error.
func statusFor(err error) int {
	var httpErr *session.HTTPError
	switch {
	case errors.As(err, &httpErr):
		return httpErr.StatusCode
	case errors.Is(err, session.ErrUnreachable):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, app.ErrNotAdmin):
		return http.StatusForbidden
	case errors.Is(err, app.ErrPaymentUnavailable):
		return http.StatusNotImplemented
	case app.IsValidationError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeAppError maps err to a status and the notice produced by notice.
func (handlers *handlers) writeAppError(res http.ResponseWriter, err error, notice func(error) app.Notice) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		handlers.log.Error("request failed", zap.Int("status", status), zap.Error(err))
	}

	n := notice(err)
	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(status)
	_ = json.NewEncoder(res).Encode(models.ErrorResponse{Errors: n.Text, RestartLogin: n.RestartLogin})
}

func writeJSON(res http.ResponseWriter, status int, v any) {
	result, err := json.Marshal(v)
	if err != nil {
		writeErrorResponse(res, err.Error(), http.StatusInternalServerError)
		return
	}

	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(status)
	_, _ = res.Write(result)
}

func writeErrorResponse(res http.ResponseWriter, errorInfo string, statusCode int) {
	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(statusCode)
	_ = json.NewEncoder(res).Encode(models.ErrorResponse{Errors: errorInfo})
}
