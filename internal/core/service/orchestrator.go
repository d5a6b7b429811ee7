package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/photoflow/photoflow-api/internal/core/domain"
	"github.com/photoflow/photoflow-api/internal/core/port"
	"github.com/photoflow/photoflow-api/pkg/apperror"
	"github.com/photoflow/photoflow-api/pkg/observability"
	"github.com/photoflow/photoflow-api/pkg/validation"
)

// MaxDescriptionLength bounds the upload description
const MaxDescriptionLength = 1024

// OrchestratorConfig controls strategy selection and concurrency
type OrchestratorConfig struct {
	// Workflow type identifiers on the managed engine; empty disables the
	// managed path for that action.
	UploadDefinition string
	DeleteDefinition string

	PollTimeout time.Duration

	UploadConcurrency int
	DeleteConcurrency int
}

// WorkflowOrchestrator implements port.ActionService.
//
// Every action goes through Authenticating -> Authorizing -> Dispatching ->
// {AwaitingManagedExecution | RunningDirect} -> Aggregating. No step runs
// before authentication and authorization succeed.
type WorkflowOrchestrator struct {
	tokens  port.TokenService
	owners  *OwnershipVerifier
	steps   port.StepInvoker
	engine  port.WorkflowEngine
	poller  *ExecutionPoller
	metrics *observability.Metrics
	cfg     OrchestratorConfig
}

// NewWorkflowOrchestrator creates a new orchestrator. engine and poller may
// be nil, in which case every action runs on the direct path.
func NewWorkflowOrchestrator(
	tokens port.TokenService,
	owners *OwnershipVerifier,
	steps port.StepInvoker,
	engine port.WorkflowEngine,
	poller *ExecutionPoller,
	metrics *observability.Metrics,
	cfg OrchestratorConfig,
) *WorkflowOrchestrator {
	if cfg.UploadConcurrency <= 0 {
		cfg.UploadConcurrency = 2
	}
	if cfg.DeleteConcurrency <= 0 {
		cfg.DeleteConcurrency = 3
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = DefaultPollTimeout
	}
	return &WorkflowOrchestrator{
		tokens:  tokens,
		owners:  owners,
		steps:   steps,
		engine:  engine,
		poller:  poller,
		metrics: metrics,
		cfg:     cfg,
	}
}

// Execute handles one action. Rejections come back as *apperror.AppError
// (400 or 403); everything past authorization yields an ActionResult.
func (o *WorkflowOrchestrator) Execute(ctx context.Context, req domain.ActionRequest) (*domain.ActionResult, error) {
	start := time.Now()
	ctx, span := observability.StartSpan(ctx, "orchestrator.Execute")
	defer span.End()
	span.SetAttributes(
		attribute.String("action.kind", string(req.Kind)),
		attribute.String("action.key", req.Key.Key),
	)

	logger := observability.WithContext(ctx).With("kind", req.Kind, "key", req.Key.Key)

	plan, err := o.validate(req)
	if err != nil {
		logger.Info("action rejected", "reason", err.Error())
		o.metrics.RecordRejection(string(req.Kind), "validation")
		return nil, err
	}

	if err := o.authorize(ctx, req); err != nil {
		logger.Info("action rejected", "reason", err.Error())
		o.metrics.RecordRejection(string(req.Kind), "auth")
		return nil, err
	}

	if err := checkPayload(req); err != nil {
		logger.Info("action rejected", "reason", err.Error())
		o.metrics.RecordRejection(string(req.Kind), "validation")
		return nil, err
	}

	result := o.dispatch(ctx, plan, req)

	status := "raw"
	if result.Report != nil {
		status = string(result.Report.Status)
	}
	o.metrics.RecordAction(string(req.Kind), string(result.Strategy), status, time.Since(start))
	span.SetAttributes(
		attribute.String("action.strategy", string(result.Strategy)),
		attribute.Int("action.status_code", result.StatusCode),
	)
	logger.Info("action completed",
		"strategy", result.Strategy,
		"status", status,
		"status_code", result.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

func (o *WorkflowOrchestrator) validate(req domain.ActionRequest) (domain.Plan, error) {
	if req.Key.IsEmpty() {
		return domain.Plan{}, apperror.Wrap(domain.ErrMissingKey, apperror.CodeValidation, domain.ErrMissingKey.Error())
	}
	plan, err := domain.PlanFor(req.Kind)
	if err != nil {
		return domain.Plan{}, apperror.Wrap(err, apperror.CodeValidation, "unsupported action")
	}
	return plan, nil
}

// authorize authenticates the caller and, for delete-class actions, checks
// ownership. The caller only ever sees a generic message.
func (o *WorkflowOrchestrator) authorize(ctx context.Context, req domain.ActionRequest) error {
	ctx, span := observability.StartSpan(ctx, "orchestrator.authorize")
	defer span.End()

	if req.Claim.Email == "" || req.Credential.Token == "" {
		return apperror.Wrap(domain.ErrMissingCredential, apperror.CodeForbidden, "access denied")
	}
	if !o.tokens.Verify(ctx, req.Claim, req.Credential) {
		return apperror.Wrap(domain.ErrInvalidCredential, apperror.CodeForbidden, "access denied")
	}
	if req.RequiresOwnership() && (o.owners == nil || !o.owners.Owns(ctx, req.Key, req.Claim)) {
		return apperror.Wrap(domain.ErrNotOwner, apperror.CodeForbidden, "access denied")
	}
	return nil
}

// checkPayload runs only for authenticated callers, so a forged credential
// never learns which field was malformed.
func checkPayload(req domain.ActionRequest) error {
	if req.Kind == domain.ActionUpload && req.Content == "" {
		return apperror.Wrap(domain.ErrMissingContent, apperror.CodeValidation, domain.ErrMissingContent.Error())
	}
	return validation.Validate(func(v *validation.Validator) {
		v.ObjectKey("key", req.Key.Key)
		if req.Kind == domain.ActionUpload {
			v.Base64("content", req.Content).
				MaxLength("description", req.Description, MaxDescriptionLength)
		}
	})
}

func (o *WorkflowOrchestrator) dispatch(ctx context.Context, plan domain.Plan, req domain.ActionRequest) *domain.ActionResult {
	definition := o.definitionFor(req.Kind)
	if o.engine == nil || o.poller == nil || definition == "" {
		observability.WithContext(ctx).Info("workflow engine not configured, running steps directly")
		return o.runDirect(ctx, plan, req)
	}

	result, reason := o.runManaged(ctx, definition, req)
	if result != nil {
		return result
	}

	observability.WithContext(ctx).Warn("managed execution unavailable, falling back to direct path",
		"reason", reason,
	)
	o.metrics.RecordFallback(string(req.Kind), reason)
	return o.runDirect(ctx, plan, req)
}

// runManaged returns nil and a fallback reason when the managed path cannot
// produce a result.
func (o *WorkflowOrchestrator) runManaged(ctx context.Context, definition string, req domain.ActionRequest) (*domain.ActionResult, string) {
	ctx, span := observability.StartSpan(ctx, "orchestrator.managed")
	defer span.End()

	handle, err := o.engine.Start(ctx, definition, port.NewWorkflowInput(req))
	if err != nil {
		observability.RecordError(ctx, err)
		return nil, "start_failed"
	}

	terminal := o.poller.AwaitTerminal(ctx, *handle, o.cfg.PollTimeout)
	if terminal.Status != domain.ExecutionSucceeded {
		if terminal.Err != nil {
			observability.RecordError(ctx, terminal.Err)
		}
		return nil, strings.ToLower(string(terminal.Status))
	}

	var report domain.WorkflowReport
	if err := json.Unmarshal(terminal.Output, &report); err == nil && report.Status != "" {
		return &domain.ActionResult{
			StatusCode: report.HTTPStatus(),
			Strategy:   domain.StrategyManaged,
			Report:     &report,
			Body:       terminal.Output,
		}, ""
	}

	return &domain.ActionResult{
		StatusCode: 200,
		Strategy:   domain.StrategyManaged,
		Body:       terminal.Output,
	}, ""
}

func (o *WorkflowOrchestrator) runDirect(ctx context.Context, plan domain.Plan, req domain.ActionRequest) *domain.ActionResult {
	ctx, span := observability.StartSpan(ctx, "orchestrator.direct")
	defer span.End()

	steps := make([]domain.Step, len(plan.Steps))
	for i, spec := range plan.Steps {
		steps[i] = domain.Step{
			StepSpec: spec,
			Invoke: func(ctx context.Context) domain.StepOutcome {
				return o.steps.InvokeStep(ctx, spec, req)
			},
		}
	}

	results := runSteps(ctx, steps, o.concurrencyFor(req.Kind))
	for _, r := range results {
		o.metrics.RecordStep(r.Name, string(r.Kind))
		if r.BestEffort && r.IsFailure() {
			observability.WithContext(ctx).Warn("best-effort step failed", "step", r.Name, "reason", r.Reason)
		}
	}

	report := domain.Aggregate(req.Kind, results)
	return &domain.ActionResult{
		StatusCode: report.HTTPStatus(),
		Strategy:   domain.StrategyDirect,
		Report:     report,
	}
}

func (o *WorkflowOrchestrator) definitionFor(kind domain.ActionKind) string {
	if kind == domain.ActionDelete {
		return o.cfg.DeleteDefinition
	}
	return o.cfg.UploadDefinition
}

func (o *WorkflowOrchestrator) concurrencyFor(kind domain.ActionKind) int {
	if kind == domain.ActionDelete {
		return o.cfg.DeleteConcurrency
	}
	return o.cfg.UploadConcurrency
}
