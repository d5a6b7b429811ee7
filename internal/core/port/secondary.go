package port

import (
	"context"

	"github.com/photoflow/photoflow-api/internal/core/domain"
)

// ============================================================================
// SECONDARY PORTS (Driven)
// These interfaces define what the application NEEDS from the outside world.
// They are IMPLEMENTED by adapters (ssm, lambda, s3, postgres, temporal)
// ============================================================================

// SecretStore reads secured configuration parameters
type SecretStore interface {
	Get(ctx context.Context, name string) (string, error)
}

// OwnershipStore counts records matching a key and an owner
type OwnershipStore interface {
	Count(ctx context.Context, key domain.ResourceKey, owner domain.Identity) (int64, error)
}

// InvokeResult is the raw result of a synchronous worker invocation
type InvokeResult struct {
	// StatusCode is the invocation-level status (not the worker's own status)
	StatusCode int
	// FunctionError is set when the worker itself raised an unhandled fault
	FunctionError string
	Payload       []byte
}

// WorkerTransport performs a synchronous request/response call to a named
// worker function. Callers must tolerate duplicate side effects.
type WorkerTransport interface {
	Invoke(ctx context.Context, function string, payload []byte) (*InvokeResult, error)
}

// WorkflowEngine starts and describes managed workflow executions
type WorkflowEngine interface {
	Start(ctx context.Context, definitionID string, input WorkflowInput) (*domain.ExecutionHandle, error)
	Describe(ctx context.Context, handle domain.ExecutionHandle) (*domain.ExecutionDescription, error)
}

// WorkflowInput is the payload handed to a managed execution
type WorkflowInput struct {
	Kind        domain.ActionKind `json:"kind"`
	Key         string            `json:"key"`
	Email       string            `json:"email"`
	Token       string            `json:"token"`
	Content     string            `json:"content,omitempty"`
	Description string            `json:"description,omitempty"`
}

// NewWorkflowInput copies an authenticated action into engine input
func NewWorkflowInput(req domain.ActionRequest) WorkflowInput {
	return WorkflowInput{
		Kind:        req.Kind,
		Key:         req.Key.Key,
		Email:       req.Claim.Email,
		Token:       req.Credential.Token,
		Content:     req.Content,
		Description: req.Description,
	}
}

// Request rebuilds the action described by the input
func (in WorkflowInput) Request() domain.ActionRequest {
	if in.Kind == domain.ActionDelete {
		return domain.NewDeleteRequest(in.Key, in.Email, in.Token)
	}
	return domain.NewUploadRequest(in.Key, in.Email, in.Token, in.Content, in.Description)
}
