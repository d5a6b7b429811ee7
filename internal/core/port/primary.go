package port

import (
	"context"

	"github.com/photoflow/photoflow-api/internal/core/domain"
)

// ============================================================================
// PRIMARY PORTS (Driving)
// These interfaces define what the application OFFERS to the outside world.
// They are IMPLEMENTED by the core services.
// They are CALLED by adapters (http handlers, temporal activities, tests)
// ============================================================================

// ActionService orchestrates upload and delete actions
type ActionService interface {
	Execute(ctx context.Context, req domain.ActionRequest) (*domain.ActionResult, error)
}

// TokenService issues and verifies caller credentials
type TokenService interface {
	Issue(ctx context.Context, email string) (string, error)
	Verify(ctx context.Context, claim domain.Identity, cred domain.Credential) bool
}

// StepInvoker runs a single worker-backed step for an action
type StepInvoker interface {
	InvokeStep(ctx context.Context, spec domain.StepSpec, req domain.ActionRequest) domain.StepOutcome
}
