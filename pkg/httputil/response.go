package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	apperrors "github.com/ThanishaDewangan/Mini-User-Management-System/pkg/errors"
	"github.com/ThanishaDewangan/Mini-User-Management-System/pkg/logger"
	"github.com/ThanishaDewangan/Mini-User-Management-System/pkg/validator"
)

// Response is the JSON envelope returned by every endpoint.
type Response struct {
	Success   bool                   `json:"success"`
	Message   string                 `json:"message,omitempty"`
	Code      string                 `json:"code,omitempty"`
	Data      any                    `json:"data,omitempty"`
	Errors    []validator.FieldError `json:"errors,omitempty"`
	RequestID string                 `json:"requestId,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteSuccess writes a successful envelope carrying data.
func WriteSuccess(w http.ResponseWriter, status int, message string, data any) {
	WriteJSON(w, status, Response{Success: true, Message: message, Data: data})
}

// WriteError writes an error envelope based on the error type. AppErrors are
// rendered with their code and message; anything else becomes a generic 500.
// Internal causes are logged, never rendered. The request-scoped logger from
// context (set by the RequestLogger middleware) is preferred over fallback.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() && fallback != nil {
		l = fallback
	}
	requestID := logger.CorrelationIDFromContext(r.Context())

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		appErr = apperrors.Internal(err)
	}

	if appErr.Status >= http.StatusInternalServerError {
		l.ErrorContext(r.Context(), "internal error",
			slog.String("code", appErr.Code),
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}

	WriteJSON(w, appErr.Status, Response{
		Success:   false,
		Message:   appErr.Message,
		Code:      appErr.Code,
		RequestID: requestID,
	})
}

// WriteValidationError writes a 400 envelope. ValidationErrors from the
// validator package are reported per field.
func WriteValidationError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := logger.CorrelationIDFromContext(r.Context())

	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		WriteJSON(w, http.StatusBadRequest, Response{
			Success:   false,
			Message:   "validation failed",
			Code:      apperrors.CodeInvalidInput,
			Errors:    valErr.Fields(),
			RequestID: requestID,
		})
		return
	}

	WriteJSON(w, http.StatusBadRequest, Response{
		Success:   false,
		Message:   "invalid request body",
		Code:      apperrors.CodeInvalidInput,
		RequestID: requestID,
	})
}

// ParseUUID validates that the given string is a valid UUID and returns it.
// If invalid, it writes a 400 response and returns uuid.Nil plus false,
// signaling the caller to return early.
func ParseUUID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(param)
	if err != nil {
		WriteJSON(w, http.StatusBadRequest, Response{
			Success:   false,
			Message:   "invalid id: " + param,
			Code:      apperrors.CodeInvalidInput,
			RequestID: logger.CorrelationIDFromContext(r.Context()),
		})
		return uuid.Nil, false
	}
	return id, true
}
