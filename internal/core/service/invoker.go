package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/photoflow/photoflow-api/internal/core/domain"
	"github.com/photoflow/photoflow-api/internal/core/port"
	"github.com/photoflow/photoflow-api/pkg/observability"
)

// InvokerConfig maps worker kinds to deployed function names
type InvokerConfig struct {
	Functions map[domain.WorkerKind]string
	// LegacyFailureMarkers also fails a step whose body contains "Error" or
	// "Failed". Off unless explicitly enabled.
	LegacyFailureMarkers bool
}

// WorkerInvoker implements port.StepInvoker on top of a WorkerTransport
type WorkerInvoker struct {
	transport port.WorkerTransport
	cfg       InvokerConfig
}

// NewWorkerInvoker creates a new worker invoker
func NewWorkerInvoker(transport port.WorkerTransport, cfg InvokerConfig) *WorkerInvoker {
	return &WorkerInvoker{
		transport: transport,
		cfg:       cfg,
	}
}

// requestEnvelope mirrors the HTTP-style event the worker functions expect
type requestEnvelope struct {
	HTTPMethod string            `json:"httpMethod"`
	Body       string            `json:"body"`
	Headers    map[string]string `json:"headers"`
}

type workerRequest struct {
	Key         string `json:"key"`
	Email       string `json:"email"`
	Token       string `json:"token,omitempty"`
	Content     string `json:"content,omitempty"`
	Description string `json:"description,omitempty"`
}

// NewRequestEnvelope serializes an action into the worker request format
func NewRequestEnvelope(req domain.ActionRequest) ([]byte, error) {
	body, err := json.Marshal(workerRequest{
		Key:         req.Key.Key,
		Email:       req.Claim.Email,
		Token:       req.Credential.Token,
		Content:     req.Content,
		Description: req.Description,
	})
	if err != nil {
		return nil, err
	}

	return json.Marshal(requestEnvelope{
		HTTPMethod: "POST",
		Body:       string(body),
		Headers:    map[string]string{"Content-Type": "application/json"},
	})
}

// InvokeStep resolves the worker function of a step and calls it
func (w *WorkerInvoker) InvokeStep(ctx context.Context, spec domain.StepSpec, req domain.ActionRequest) domain.StepOutcome {
	function, ok := w.cfg.Functions[spec.Worker]
	if !ok || function == "" {
		return domain.Failure(fmt.Sprintf("%v: no function configured for %s", domain.ErrWorkerUnavailable, spec.Worker))
	}

	payload, err := NewRequestEnvelope(req)
	if err != nil {
		return domain.Failure(fmt.Sprintf("encode request: %v", err))
	}

	return w.Call(ctx, function, payload)
}

// Call invokes a worker synchronously and classifies its response. Transport
// failures, worker faults and malformed responses all become Failure.
func (w *WorkerInvoker) Call(ctx context.Context, function string, payload []byte) (outcome domain.StepOutcome) {
	logger := observability.WithContext(ctx).With("function", function)
	observability.AddSpanAttributes(ctx, attribute.String("worker.function", function))

	defer func() {
		if r := recover(); r != nil {
			logger.Error("worker invocation panicked", "panic", r)
			outcome = domain.Failure(fmt.Sprintf("worker %s panicked: %v", function, r))
		}
	}()

	res, err := w.transport.Invoke(ctx, function, payload)
	if err != nil {
		logger.Error("worker invocation failed", "error", err)
		return domain.Failure(fmt.Sprintf("invoke %s: %v", function, err))
	}

	outcome = ClassifyResponse(res, w.cfg.LegacyFailureMarkers)
	if outcome.IsFailure() {
		logger.Warn("worker reported failure", "reason", outcome.Reason)
	} else {
		logger.Debug("worker succeeded")
	}
	return outcome
}
