package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/photoflow/photoflow-api/internal/core/domain"
	"github.com/photoflow/photoflow-api/internal/core/service/mocks"
)

func TestExecutionPoller_AwaitTerminal(t *testing.T) {
	handle := domain.ExecutionHandle{ID: "execution-123", RunID: "run-456"}

	t.Run("returns output once succeeded", func(t *testing.T) {
		engine := mocks.NewMockWorkflowEngine(domain.ExecutionRunning, domain.ExecutionRunning, domain.ExecutionSucceeded)
		engine.Output = []byte(`{"status":"Succeeded"}`)
		p := NewExecutionPoller(engine, time.Millisecond)

		result := p.AwaitTerminal(context.Background(), handle, time.Second)

		assert.Equal(t, domain.ExecutionSucceeded, result.Status)
		assert.NoError(t, result.Err)
		assert.JSONEq(t, `{"status":"Succeeded"}`, string(result.Output))
		assert.Equal(t, 3, engine.DescribeCalls)
	})

	t.Run("stops at failed status", func(t *testing.T) {
		engine := mocks.NewMockWorkflowEngine(domain.ExecutionFailed)
		p := NewExecutionPoller(engine, time.Millisecond)

		result := p.AwaitTerminal(context.Background(), handle, time.Second)

		assert.Equal(t, domain.ExecutionFailed, result.Status)
		assert.Empty(t, result.Output)
		assert.ErrorIs(t, result.Err, domain.ErrExecutionNotSuccess)
	})

	t.Run("times out while still running", func(t *testing.T) {
		engine := mocks.NewMockWorkflowEngine(domain.ExecutionRunning)
		p := NewExecutionPoller(engine, time.Millisecond)

		result := p.AwaitTerminal(context.Background(), handle, 20*time.Millisecond)

		assert.Equal(t, domain.ExecutionTimedOut, result.Status)
		assert.Greater(t, engine.DescribeCalls, 1)
		assert.ErrorIs(t, result.Err, domain.ErrExecutionNotSuccess)
	})

	t.Run("describe error ends the wait as unknown", func(t *testing.T) {
		engine := mocks.NewMockWorkflowEngine()
		engine.DescribeErr = errors.New("not found")
		p := NewExecutionPoller(engine, time.Millisecond)

		result := p.AwaitTerminal(context.Background(), handle, time.Second)

		assert.Equal(t, domain.ExecutionUnknown, result.Status)
		assert.Error(t, result.Err)
		assert.NotErrorIs(t, result.Err, domain.ErrExecutionNotSuccess)
		assert.Equal(t, 1, engine.DescribeCalls)
	})

	t.Run("caller cancellation is not a timeout", func(t *testing.T) {
		engine := mocks.NewMockWorkflowEngine(domain.ExecutionRunning)
		p := NewExecutionPoller(engine, 5*time.Millisecond)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		result := p.AwaitTerminal(ctx, handle, time.Second)

		assert.Equal(t, domain.ExecutionUnknown, result.Status)
	})
}
