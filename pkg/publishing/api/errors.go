package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/tendant/simple-publish/pkg/publishing"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Timestamp   time.Time    `json:"timestamp"`
	Status      int          `json:"status"`
	Error       string       `json:"error"`
	Message     string       `json:"message"`
	Path        string       `json:"path"`
	FieldErrors []FieldError `json:"fieldErrors"`
}

// FieldError names a request field that failed validation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func statusFor(err error) int {
	switch publishing.KindOf(err) {
	case publishing.KindNotFound:
		return http.StatusNotFound
	case publishing.KindForbidden:
		return http.StatusForbidden
	case publishing.KindBadRequest:
		return http.StatusBadRequest
	case publishing.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func writeErrorResponse(w http.ResponseWriter, r *http.Request, status int, message string, fields []FieldError) {
	if fields == nil {
		fields = []FieldError{}
	}
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{
		Timestamp:   time.Now().UTC(),
		Status:      status,
		Error:       http.StatusText(status),
		Message:     message,
		Path:        r.URL.Path,
		FieldErrors: fields,
	})
}

// writeError maps a service error to its HTTP status. Errors without a
// publishing kind are logged and reported as 500 without detail.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		writeErrorResponse(w, r, http.StatusBadRequest, "Validation failed", fieldErrors(ve))
		return
	}

	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "err", err)
		writeErrorResponse(w, r, status, "Unexpected error", nil)
		return
	}
	writeErrorResponse(w, r, status, publishing.MessageOf(err), nil)
}
