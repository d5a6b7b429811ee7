package domain

import "errors"

// Domain errors - these are business logic errors
var (
	// Validation errors
	ErrMissingKey     = errors.New("missing 'key' field")
	ErrMissingContent = errors.New("missing 'content' field")
	ErrMissingEmail   = errors.New("missing email")
	ErrUnknownAction  = errors.New("unknown action")
	ErrInvalidBody    = errors.New("invalid request body")

	// Authentication and authorization errors
	ErrMissingCredential = errors.New("missing token or email")
	ErrInvalidCredential = errors.New("invalid token")
	ErrNotOwner          = errors.New("resource does not belong to identity")
	ErrSecretUnavailable = errors.New("token secret unavailable")

	// Workflow errors
	ErrInvalidPlan         = errors.New("invalid workflow plan")
	ErrEngineUnconfigured  = errors.New("workflow engine not configured")
	ErrExecutionNotSuccess = errors.New("managed execution did not succeed")

	// Worker errors
	ErrWorkerUnavailable = errors.New("worker function unavailable")
	ErrMalformedResponse = errors.New("malformed worker response")

	// General errors
	ErrNotFound = errors.New("not found")
)
