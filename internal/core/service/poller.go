package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/photoflow/photoflow-api/internal/core/domain"
	"github.com/photoflow/photoflow-api/internal/core/port"
	"github.com/photoflow/photoflow-api/pkg/observability"
)

const (
	DefaultPollInterval = 500 * time.Millisecond
	DefaultPollTimeout  = 300 * time.Second
)

// ExecutionPoller waits for a managed execution to reach a terminal state.
//
// Waiting is best-effort: a describe error ends the wait with
// ExecutionUnknown instead of retrying, and a timeout returns
// ExecutionTimedOut without cancelling the execution on the engine side.
type ExecutionPoller struct {
	engine   port.WorkflowEngine
	interval time.Duration
}

// NewExecutionPoller creates a new execution poller
func NewExecutionPoller(engine port.WorkflowEngine, interval time.Duration) *ExecutionPoller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &ExecutionPoller{
		engine:   engine,
		interval: interval,
	}
}

// AwaitTerminal polls at a fixed interval until the execution is terminal,
// the timeout elapses, or ctx is cancelled.
func (p *ExecutionPoller) AwaitTerminal(ctx context.Context, handle domain.ExecutionHandle, timeout time.Duration) domain.TerminalResult {
	if timeout <= 0 {
		timeout = DefaultPollTimeout
	}
	logger := observability.WithContext(ctx).With("execution_id", handle.ID)

	pollCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		desc, err := p.engine.Describe(pollCtx, handle)
		if err != nil {
			if timedOut(ctx, pollCtx) {
				logger.Warn("execution wait timed out", "timeout", timeout)
				return notSucceeded(domain.ExecutionTimedOut, nil)
			}
			logger.Error("execution status check failed", "error", err)
			return domain.TerminalResult{Status: domain.ExecutionUnknown, Err: err}
		}

		if desc.Status.IsTerminal() {
			logger.Info("execution reached terminal state", "status", desc.Status)
			if desc.Status != domain.ExecutionSucceeded {
				return notSucceeded(desc.Status, desc.Output)
			}
			return domain.TerminalResult{Status: desc.Status, Output: desc.Output}
		}

		select {
		case <-pollCtx.Done():
			if timedOut(ctx, pollCtx) {
				logger.Warn("execution wait timed out", "timeout", timeout)
				return notSucceeded(domain.ExecutionTimedOut, nil)
			}
			return domain.TerminalResult{Status: domain.ExecutionUnknown, Err: ctx.Err()}
		case <-ticker.C:
		}
	}
}

// timedOut distinguishes our own deadline from caller cancellation
// notSucceeded marks a terminal result the orchestrator must not use as a
// report.
func notSucceeded(status domain.ExecutionStatus, output []byte) domain.TerminalResult {
	return domain.TerminalResult{
		Status: status,
		Output: output,
		Err:    fmt.Errorf("%w: %s", domain.ErrExecutionNotSuccess, status),
	}
}

func timedOut(parent, pollCtx context.Context) bool {
	return parent.Err() == nil && errors.Is(pollCtx.Err(), context.DeadlineExceeded)
}
