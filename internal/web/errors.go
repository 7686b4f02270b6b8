package web

// errors.go turns errors into responses.
//
// The technical error is logged with the request ID; the client gets the
// user message from core.MapError, as JSON on /api routes and for clients
// that ask for it, as an HTML page otherwise.

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/PoleMap/internal/core"
	"github.com/JonMunkholm/PoleMap/internal/logging"
	"github.com/JonMunkholm/PoleMap/internal/poles"
	"github.com/JonMunkholm/PoleMap/internal/web/templates"
)

var errRateLimited = errors.New("rate limit exceeded")

// ErrorResponse is the JSON body of every API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusFor picks the HTTP status for err.
func statusFor(err error) int {
	var (
		loadErr  *poles.LoadError
		maxBytes *http.MaxBytesError
	)
	switch {
	case errors.As(err, &maxBytes), errors.Is(err, core.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrEmptyTable):
		return http.StatusUnprocessableEntity
	case errors.As(err, &loadErr):
		if errors.Is(err, poles.ErrMissingColumns) {
			return http.StatusUnprocessableEntity
		}
		return http.StatusBadRequest
	case errors.Is(err, core.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, poles.ErrIndexOutOfRange),
		errors.Is(err, core.ErrInvalidSettings),
		errors.Is(err, core.ErrInvalidCoordinate),
		errors.Is(err, core.ErrNoFile),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, errRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, core.ErrTooManyLoads),
		errors.Is(err, core.ErrTooManySessions),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes the user message in the format the
// client expects.
func respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	msg := logRequestError(r, err, statusCode)

	if wantsJSON(r) {
		writeJSON(w, statusCode, ErrorResponse{
			Error:   msg.Message,
			Message: msg.Message,
			Action:  msg.Action,
			Code:    msg.Code,
		})
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	templates.ErrorPage(msg).Render(r.Context(), w)
}

// logRequestError logs the technical error and returns its user message.
func logRequestError(r *http.Request, err error, statusCode int) core.UserMessage {
	msg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	log := logger.Warn
	if statusCode >= http.StatusInternalServerError {
		log = logger.Error
	}
	log("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", msg.Code,
	)
	return msg
}

// wantsJSON reports whether the client prefers a JSON response.
func wantsJSON(r *http.Request) bool {
	if isAPI(r) {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.Contains(r.Header.Get("Content-Type"), "application/json")
}
