package shared

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/taskdeck/taskdeck-api/internal/domain"
)

// ErrorResponse defines the standard error response structure. Errors is
// populated only for validation failures; all other errors carry a single
// sanitized message.
type ErrorResponse struct {
	Message string              `json:"message"`
	Errors  []domain.FieldError `json:"errors,omitempty"`
}

// RespondWithJSON writes a JSON response with the given status code and data.
func RespondWithJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// RespondWithError writes a JSON error response with the given status code
// and message.
func RespondWithError(w http.ResponseWriter, r *http.Request, status int, message string) {
	logErrorResponse(r, status, message, nil)
	RespondWithJSON(w, r, status, ErrorResponse{Message: message})
}

// RespondWithValidationErrors writes a 400 response carrying the field-level
// validation failures alongside the summary message.
func RespondWithValidationErrors(
	w http.ResponseWriter,
	r *http.Request,
	fields []domain.FieldError,
) {
	logErrorResponse(r, http.StatusBadRequest, "validation failed", nil)
	RespondWithJSON(w, r, http.StatusBadRequest, ErrorResponse{
		Message: "Validation failed",
		Errors:  fields,
	})
}

// RespondWithErrorAndLog writes a sanitized JSON error response and logs the
// underlying error. The raw error never reaches the client.
//
// Log level strategy: 5xx errors are logged at ERROR level, 4xx at DEBUG.
func RespondWithErrorAndLog(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	userMessage string,
	err error,
) {
	logErrorResponse(r, status, userMessage, err)
	RespondWithJSON(w, r, status, ErrorResponse{Message: userMessage})
}

func logErrorResponse(r *http.Request, status int, message string, err error) {
	attrs := []any{
		slog.Int("status_code", status),
		slog.String("message", message),
		slog.String("trace_id", GetTraceID(r.Context())),
		slog.String("path", r.URL.Path),
		slog.String("method", r.Method),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}

	if status >= http.StatusInternalServerError {
		slog.Error("request failed", attrs...)
		return
	}
	slog.Debug("sending error response", attrs...)
}
