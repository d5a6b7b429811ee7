package workflow

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/photoflow/photoflow-api/internal/activity"
	"github.com/photoflow/photoflow-api/internal/core/domain"
	"github.com/photoflow/photoflow-api/internal/core/port"
)

// Workflow type names the API starts by
const (
	UploadWorkflowName = "PhotoUploadWorkflow"
	DeleteWorkflowName = "PhotoDeleteWorkflow"
)

const invokeStepActivity = "InvokeStep"

// PhotoUploadWorkflow inserts the record, uploads the original and creates
// the thumbnail, each step only after the previous one succeeded.
func PhotoUploadWorkflow(ctx workflow.Context, input port.WorkflowInput) (*domain.WorkflowReport, error) {
	return runPlan(ctx, domain.UploadPlan(), input)
}

// PhotoDeleteWorkflow removes the storage objects, the record and the
// thumbnail independently of each other.
func PhotoDeleteWorkflow(ctx workflow.Context, input port.WorkflowInput) (*domain.WorkflowReport, error) {
	return runPlan(ctx, domain.DeletePlan(), input)
}

// runPlan executes a plan level by level. Steps of one level run in
// parallel; a step whose dependency did not succeed is skipped.
func runPlan(ctx workflow.Context, plan domain.Plan, input port.WorkflowInput) (*domain.WorkflowReport, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("photo workflow started", "kind", plan.Kind, "key", input.Key)

	if err := plan.Validate(); err != nil {
		return nil, temporal.NewNonRetryableApplicationError(err.Error(), "InvalidPlan", err)
	}

	// Worker calls are not retried by the engine.
	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	outcomes := make(map[string]domain.StepOutcome, len(plan.Steps))

	for _, level := range plan.Levels() {
		futures := make([]workflow.Future, len(level))
		for i, step := range level {
			if dep, o, blocked := step.BlockingDependency(outcomes); blocked {
				outcomes[step.Name] = domain.Skipped(domain.SkipCause(dep, o))
				continue
			}
			futures[i] = workflow.ExecuteActivity(ctx, invokeStepActivity, activity.StepInput{
				Step:  step,
				Input: input,
			})
		}

		for i, step := range level {
			if futures[i] == nil {
				continue
			}
			var outcome domain.StepOutcome
			if err := futures[i].Get(ctx, &outcome); err != nil {
				outcome = domain.Failure(err.Error())
			}
			if outcome.IsFailure() {
				logger.Warn("step failed", "step", step.Name, "best_effort", step.BestEffort, "reason", outcome.Reason)
			}
			outcomes[step.Name] = outcome
		}
	}

	results := make([]domain.StepResult, len(plan.Steps))
	for i, step := range plan.Steps {
		results[i] = domain.StepResult{
			Name:        step.Name,
			BestEffort:  step.BestEffort,
			StepOutcome: outcomes[step.Name],
		}
	}

	report := domain.Aggregate(plan.Kind, results)
	logger.Info("photo workflow completed", "kind", plan.Kind, "status", report.Status)
	return report, nil
}
