package apperror

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/photoflow/photoflow-api/internal/core/domain"
)

// ErrorResponse is the JSON structure returned to clients
type ErrorResponse struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Handler handles error responses in HTTP handlers
type Handler struct {
	logger *slog.Logger
}

// NewHandler creates a new error handler
func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{logger: logger}
}

// Handle writes an error response to the client
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request, err error) {
	appErr := h.toAppError(err)

	// Log internal errors with full details
	if appErr.HTTPStatus >= 500 {
		h.logger.Error("internal error",
			"error", appErr.Error(),
			"code", appErr.Code,
			"path", r.URL.Path,
			"method", r.Method,
		)
	} else {
		h.logger.Debug("client error",
			"code", appErr.Code,
			"message", appErr.Message,
			"path", r.URL.Path,
		)
	}

	h.writeError(w, appErr)
}

// toAppError converts any error to an AppError
func (h *Handler) toAppError(err error) *AppError {
	// Check if already an AppError
	if appErr, ok := GetAppError(err); ok {
		return appErr
	}

	// Map domain errors to AppErrors
	return h.mapDomainError(err)
}

// mapDomainError maps domain errors to AppErrors. Authentication and
// ownership failures share one generic message.
func (h *Handler) mapDomainError(err error) *AppError {
	switch {
	// Validation errors
	case errors.Is(err, domain.ErrMissingKey):
		return Validation(domain.ErrMissingKey.Error())
	case errors.Is(err, domain.ErrMissingContent):
		return Validation(domain.ErrMissingContent.Error())
	case errors.Is(err, domain.ErrMissingEmail):
		return Validation(domain.ErrMissingEmail.Error())
	case errors.Is(err, domain.ErrUnknownAction):
		return Validation("unsupported action")
	case errors.Is(err, domain.ErrInvalidBody):
		return BadRequest("invalid request body")

	// Auth errors
	case errors.Is(err, domain.ErrMissingCredential),
		errors.Is(err, domain.ErrInvalidCredential),
		errors.Is(err, domain.ErrNotOwner):
		return Forbidden("")

	// Secret and engine errors
	case errors.Is(err, domain.ErrSecretUnavailable):
		return InternalWithMessage("token secret unavailable", err)
	case errors.Is(err, domain.ErrEngineUnconfigured):
		return Unavailable("workflow engine not configured")

	// General errors
	case errors.Is(err, domain.ErrNotFound):
		return NotFound("resource")

	default:
		return Internal(err)
	}
}

// writeError writes the error response
func (h *Handler) writeError(w http.ResponseWriter, appErr *AppError) {
	response := ErrorResponse{
		Code:    string(appErr.Code),
		Message: appErr.Message,
		Details: appErr.Details,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.HTTPStatus)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("failed to encode error response", "error", err)
	}
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}
