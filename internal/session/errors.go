package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"food_store/internal/models"
)

var (
	// ErrUnreachable wraps failures where no response was received from the backend.
	ErrUnreachable = errors.New("session: backend unreachable")
	// ErrEmptyAccessToken indicates a refresh response without an access token.
	ErrEmptyAccessToken = errors.New("session: refresh returned no access token")
	// ErrRefreshAborted is delivered to queued requests when the refresh call panicked.
	ErrRefreshAborted = errors.New("session: token refresh aborted")

	errNoRefreshToken = errors.New("session: no refresh token")
)

// HTTPError is returned for every non-2xx backend response.
type HTTPError struct {
	StatusCode int
	// Message is the backend's "error" or "detail" field, if any.
	Message string
	Body    []byte
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("session: backend returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("session: backend returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

func newHTTPError(resp *Response) *HTTPError {
	e := &HTTPError{StatusCode: resp.StatusCode, Body: resp.Body}

	var body models.BackendError
	if err := json.Unmarshal(resp.Body, &body); err == nil {
		e.Message = body.Error
		if e.Message == "" {
			e.Message = body.Detail
		}
	}
	return e
}

// StatusCode extracts the backend status from err.
func StatusCode(err error) (int, bool) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode, true
	}
	return 0, false
}

// Message extracts the backend error message from err, if there is one.
func Message(err error) string {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Message
	}
	return ""
}
