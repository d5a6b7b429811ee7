package activity

import (
	"context"

	"go.temporal.io/sdk/activity"

	"github.com/photoflow/photoflow-api/internal/core/domain"
	"github.com/photoflow/photoflow-api/internal/core/port"
)

// Activities holds all activity implementations
type Activities struct {
	Invoker port.StepInvoker
}

// StepInput is the input for the InvokeStep activity
type StepInput struct {
	Step  domain.StepSpec    `json:"step"`
	Input port.WorkflowInput `json:"input"`
}

// InvokeStep runs one worker-backed step. Worker failures come back as a
// Failure outcome rather than an activity error, so the engine never
// retries a step on its own.
func (a *Activities) InvokeStep(ctx context.Context, input StepInput) (*domain.StepOutcome, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("InvokeStep activity started", "step", input.Step.Name, "key", input.Input.Key)

	if a.Invoker == nil {
		outcome := domain.Failure(domain.ErrWorkerUnavailable.Error())
		return &outcome, nil
	}

	outcome := a.Invoker.InvokeStep(ctx, input.Step, input.Input.Request())
	logger.Info("InvokeStep activity finished", "step", input.Step.Name, "outcome", outcome.Kind)
	return &outcome, nil
}
