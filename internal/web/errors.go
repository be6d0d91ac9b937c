package web

// errors.go provides unified error responses for the API.
//
// Every error is logged with its technical detail and the request ID, and the
// client receives the mapped user message:
//
//	{"error": "...", "message": "...", "action": "...", "code": "FILE001"}

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/pdftables/internal/core"
	"github.com/JonMunkholm/pdftables/internal/logging"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs err and writes its user-facing form with statusCode.
func respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	msg := core.MapError(err)

	level := slog.LevelWarn
	if statusCode >= 500 {
		level = slog.LevelError
	}
	logging.FromContext(r.Context()).Log(r.Context(), level, "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", msg.Code,
	)

	writeJSON(w, statusCode, ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// statusFor picks the HTTP status for a pipeline error.
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes), errors.Is(err, core.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrTooManyConversions):
		return http.StatusServiceUnavailable
	case errors.Is(err, core.ErrRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrInvalidBody),
		errors.Is(err, core.ErrInvalidOption),
		errors.Is(err, core.ErrInvalidID),
		errors.Is(err, core.ErrNoFile):
		return http.StatusBadRequest
	}

	switch core.Code(err) {
	case "FILE002":
		return http.StatusUnsupportedMediaType
	case "FILE001", "FILE003", "FILE007":
		return http.StatusUnprocessableEntity
	case "UPL005":
		return http.StatusGatewayTimeout
	case "UPL004":
		return http.StatusRequestTimeout
	}
	return http.StatusInternalServerError
}
