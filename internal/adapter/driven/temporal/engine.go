package temporal

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	enums "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/workflowservice/v1"
	"go.temporal.io/sdk/client"

	"github.com/photoflow/photoflow-api/internal/core/domain"
	"github.com/photoflow/photoflow-api/internal/core/port"
)

// Client is the subset of client.Client used by the engine
type Client interface {
	ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow interface{}, args ...interface{}) (client.WorkflowRun, error)
	GetWorkflow(ctx context.Context, workflowID string, runID string) client.WorkflowRun
	DescribeWorkflowExecution(ctx context.Context, workflowID, runID string) (*workflowservice.DescribeWorkflowExecutionResponse, error)
}

// WorkflowEngine implements port.WorkflowEngine using Temporal
type WorkflowEngine struct {
	client    Client
	taskQueue string
}

// NewWorkflowEngine creates a new workflow engine
func NewWorkflowEngine(c Client, taskQueue string) *WorkflowEngine {
	return &WorkflowEngine{
		client:    c,
		taskQueue: taskQueue,
	}
}

// Start launches a workflow by type name. Every start gets a fresh ID, so a
// retried request never attaches to an older execution.
func (e *WorkflowEngine) Start(ctx context.Context, definitionID string, input port.WorkflowInput) (*domain.ExecutionHandle, error) {
	if definitionID == "" {
		return nil, domain.ErrEngineUnconfigured
	}

	options := client.StartWorkflowOptions{
		ID:        fmt.Sprintf("photo-%s-%s", input.Kind, uuid.New().String()),
		TaskQueue: e.taskQueue,
	}

	run, err := e.client.ExecuteWorkflow(ctx, options, definitionID, input)
	if err != nil {
		return nil, errors.Wrap(err, "start workflow")
	}

	return &domain.ExecutionHandle{
		ID:        run.GetID(),
		RunID:     run.GetRunID(),
		StartedAt: time.Now().UTC(),
	}, nil
}

// Describe reports the execution status, with the workflow result attached
// once it completed.
func (e *WorkflowEngine) Describe(ctx context.Context, handle domain.ExecutionHandle) (*domain.ExecutionDescription, error) {
	resp, err := e.client.DescribeWorkflowExecution(ctx, handle.ID, handle.RunID)
	if err != nil {
		return nil, errors.Wrap(err, "describe workflow")
	}

	status := mapStatus(resp.GetWorkflowExecutionInfo().GetStatus())
	desc := &domain.ExecutionDescription{Status: status}
	if status != domain.ExecutionSucceeded {
		return desc, nil
	}

	var output json.RawMessage
	if err := e.client.GetWorkflow(ctx, handle.ID, handle.RunID).Get(ctx, &output); err != nil {
		return nil, errors.Wrap(err, "get workflow result")
	}
	desc.Output = output
	return desc, nil
}

func mapStatus(s enums.WorkflowExecutionStatus) domain.ExecutionStatus {
	switch s {
	case enums.WORKFLOW_EXECUTION_STATUS_RUNNING, enums.WORKFLOW_EXECUTION_STATUS_CONTINUED_AS_NEW:
		return domain.ExecutionRunning
	case enums.WORKFLOW_EXECUTION_STATUS_COMPLETED:
		return domain.ExecutionSucceeded
	case enums.WORKFLOW_EXECUTION_STATUS_FAILED:
		return domain.ExecutionFailed
	case enums.WORKFLOW_EXECUTION_STATUS_TIMED_OUT:
		return domain.ExecutionTimedOut
	case enums.WORKFLOW_EXECUTION_STATUS_CANCELED, enums.WORKFLOW_EXECUTION_STATUS_TERMINATED:
		return domain.ExecutionAborted
	default:
		return domain.ExecutionUnknown
	}
}
