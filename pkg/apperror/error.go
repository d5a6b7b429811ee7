package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode is the machine-readable part of an error response
type ErrorCode string

const (
	// 4xx
	CodeValidation ErrorCode = "VALIDATION_ERROR"
	CodeBadRequest ErrorCode = "BAD_REQUEST"
	CodeForbidden  ErrorCode = "FORBIDDEN"
	CodeNotFound   ErrorCode = "NOT_FOUND"
	// CodePayloadTooLarge is returned before any parsing happens
	CodePayloadTooLarge ErrorCode = "PAYLOAD_TOO_LARGE"

	// 5xx
	CodeInternal    ErrorCode = "INTERNAL_ERROR"
	CodeUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
)

// AppError is an error that knows its HTTP rendering. Err is logged, never
// sent to the client.
type AppError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	HTTPStatus int                    `json:"-"`
	Err        error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches any AppError with the same code
func (e *AppError) Is(target error) bool {
	var appErr *AppError
	if errors.As(target, &appErr) {
		return e.Code == appErr.Code
	}
	return false
}

// New creates an AppError without a cause
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

// Wrap attaches a client-facing code and message to a cause. Rejections keep
// the domain sentinel reachable through errors.Is.
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Err:        err,
	}
}

// WithDetail adds a single detail to the error
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func Validation(message string) *AppError {
	return New(CodeValidation, message)
}

func ValidationWithFields(fields map[string]string) *AppError {
	return Validation("validation failed").WithDetail("fields", fields)
}

func BadRequest(message string) *AppError {
	return New(CodeBadRequest, message)
}

// Forbidden never says which check failed; an empty message becomes
// "access denied".
func Forbidden(message string) *AppError {
	if message == "" {
		message = "access denied"
	}
	return New(CodeForbidden, message)
}

func Internal(err error) *AppError {
	return Wrap(err, CodeInternal, "an internal error occurred")
}

func InternalWithMessage(message string, err error) *AppError {
	return Wrap(err, CodeInternal, message)
}

func Unavailable(message string) *AppError {
	return New(CodeUnavailable, message)
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case CodeValidation, CodeBadRequest:
		return http.StatusBadRequest
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodePayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// GetAppError extracts AppError from an error chain
func GetAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
