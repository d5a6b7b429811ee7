package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/photoflow/photoflow-api/internal/core/domain"
	"github.com/photoflow/photoflow-api/internal/core/port"
	"github.com/photoflow/photoflow-api/internal/core/service/mocks"
	"github.com/photoflow/photoflow-api/pkg/apperror"
	"github.com/photoflow/photoflow-api/pkg/observability"
)

const (
	testSecret = "test-secret"
	testEmail  = "alice@example.com"
)

var testToken = Sign(testSecret, testEmail)

type orchestratorFixture struct {
	steps   *mocks.MockStepInvoker
	owners  *mocks.MockOwnershipStore
	metrics *observability.Metrics
}

func newFixture() *orchestratorFixture {
	return &orchestratorFixture{
		steps:   mocks.NewMockStepInvoker(),
		owners:  mocks.NewMockOwnershipStore(),
		metrics: observability.NewMetrics("test", prometheus.NewRegistry()),
	}
}

// build wires an orchestrator; a nil engine leaves the managed path unconfigured
func (f *orchestratorFixture) build(engine *mocks.MockWorkflowEngine) *WorkflowOrchestrator {
	return f.buildWithTimeout(engine, time.Second)
}

func (f *orchestratorFixture) buildWithTimeout(engine *mocks.MockWorkflowEngine, pollTimeout time.Duration) *WorkflowOrchestrator {
	tokens := NewTokenAuthenticator(nil, TokenConfig{FallbackSecret: testSecret}, nil)
	cfg := OrchestratorConfig{PollTimeout: pollTimeout}

	var eng port.WorkflowEngine
	var poller *ExecutionPoller
	if engine != nil {
		eng = engine
		poller = NewExecutionPoller(engine, time.Millisecond)
		cfg.UploadDefinition = "PhotoUploadWorkflow"
		cfg.DeleteDefinition = "PhotoDeleteWorkflow"
	}

	return NewWorkflowOrchestrator(tokens, NewOwnershipVerifier(f.owners, nil), f.steps, eng, poller, f.metrics, cfg)
}

func uploadRequest(key string) domain.ActionRequest {
	return domain.NewUploadRequest(key, testEmail, testToken, "aGVsbG8=", "")
}

func deleteRequest(key string) domain.ActionRequest {
	return domain.NewDeleteRequest(key, testEmail, testToken)
}

func requireAppError(t *testing.T, err error, status int) {
	t.Helper()
	appErr, ok := apperror.GetAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	assert.Equal(t, status, appErr.HTTPStatus)
}

func TestWorkflowOrchestrator_ManagedPath(t *testing.T) {
	t.Run("returns engine output when execution succeeds", func(t *testing.T) {
		f := newFixture()
		engine := mocks.NewMockWorkflowEngine(domain.ExecutionRunning, domain.ExecutionSucceeded)
		report := domain.Aggregate(domain.ActionUpload, []domain.StepResult{
			{Name: domain.StepInsertRecord, StepOutcome: domain.Success("ok")},
		})
		engine.Output = report.JSON()
		o := f.build(engine)

		result, err := o.Execute(context.Background(), uploadRequest("cat.png"))

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, result.StatusCode)
		assert.Equal(t, domain.StrategyManaged, result.Strategy)
		assert.Equal(t, string(engine.Output), string(result.ResponseBody()))
		assert.Equal(t, "PhotoUploadWorkflow", engine.Definition)
		assert.Equal(t, "cat.png", engine.StartedInput.Key)
		assert.Equal(t, 0, f.steps.CallCount())
	})

	t.Run("passes through non-report output with 200", func(t *testing.T) {
		f := newFixture()
		engine := mocks.NewMockWorkflowEngine(domain.ExecutionSucceeded)
		engine.Output = []byte(`"done"`)
		o := f.build(engine)

		result, err := o.Execute(context.Background(), uploadRequest("cat.png"))

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, result.StatusCode)
		assert.Nil(t, result.Report)
		assert.Equal(t, `"done"`, string(result.ResponseBody()))
	})

	t.Run("falls back to direct path when start fails", func(t *testing.T) {
		f := newFixture()
		engine := mocks.NewMockWorkflowEngine()
		engine.StartErr = errors.New("connection refused")
		o := f.build(engine)

		result, err := o.Execute(context.Background(), uploadRequest("cat.png"))

		require.NoError(t, err)
		assert.True(t, engine.StartCalled)
		assert.Equal(t, domain.StrategyDirect, result.Strategy)
		require.NotNil(t, result.Report)
		assert.Equal(t, domain.ReportSucceeded, result.Report.Status)
		assert.Len(t, result.Report.Steps, 3)
		assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.FallbacksTotal.WithLabelValues("upload", "start_failed")))
	})

	t.Run("falls back to direct path when execution fails", func(t *testing.T) {
		f := newFixture()
		engine := mocks.NewMockWorkflowEngine(domain.ExecutionRunning, domain.ExecutionFailed)
		o := f.build(engine)

		result, err := o.Execute(context.Background(), uploadRequest("cat.png"))

		require.NoError(t, err)
		assert.Equal(t, domain.StrategyDirect, result.Strategy)
		assert.Equal(t, 3, f.steps.CallCount())
		assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.FallbacksTotal.WithLabelValues("upload", "failed")))
	})

	t.Run("falls back to direct path when status cannot be read", func(t *testing.T) {
		f := newFixture()
		engine := mocks.NewMockWorkflowEngine()
		engine.DescribeErr = errors.New("unavailable")
		o := f.build(engine)

		result, err := o.Execute(context.Background(), uploadRequest("cat.png"))

		require.NoError(t, err)
		assert.Equal(t, domain.StrategyDirect, result.Strategy)
		assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.FallbacksTotal.WithLabelValues("upload", "unknown")))
	})

	t.Run("falls back to direct path when the wait times out", func(t *testing.T) {
		f := newFixture()
		engine := mocks.NewMockWorkflowEngine(domain.ExecutionRunning)
		o := f.buildWithTimeout(engine, 20*time.Millisecond)

		result, err := o.Execute(context.Background(), uploadRequest("cat.png"))

		require.NoError(t, err)
		assert.True(t, engine.StartCalled)
		assert.Greater(t, engine.DescribeCalls, 1)
		assert.Equal(t, domain.StrategyDirect, result.Strategy)
		require.NotNil(t, result.Report)
		assert.Equal(t, domain.ReportSucceeded, result.Report.Status)
		assert.Equal(t, 3, f.steps.CallCount())
		assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.FallbacksTotal.WithLabelValues("upload", "timed_out")))
	})

	t.Run("falls back to direct path when execution is aborted", func(t *testing.T) {
		f := newFixture()
		f.owners.AddPhoto("cat.png", testEmail)
		engine := mocks.NewMockWorkflowEngine(domain.ExecutionRunning, domain.ExecutionAborted)
		o := f.build(engine)

		result, err := o.Execute(context.Background(), deleteRequest("cat.png"))

		require.NoError(t, err)
		assert.Equal(t, domain.StrategyDirect, result.Strategy)
		assert.Equal(t, 3, f.steps.CallCount())
		assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.FallbacksTotal.WithLabelValues("delete", "aborted")))
	})
}

func TestWorkflowOrchestrator_DirectPath(t *testing.T) {
	t.Run("upload runs insert, upload and thumbnail in order", func(t *testing.T) {
		f := newFixture()
		o := f.build(nil)

		result, err := o.Execute(context.Background(), uploadRequest("dog.jpg"))

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, result.StatusCode)
		assert.Equal(t, domain.StrategyDirect, result.Strategy)
		require.Len(t, result.Report.Steps, 3)
		for _, s := range result.Report.Steps {
			assert.True(t, s.IsSuccess(), s.Name)
		}
		assert.Equal(t, []string{domain.StepInsertRecord, domain.StepUploadOriginal, domain.StepCreateThumbnail}, f.steps.Calls)
	})

	t.Run("insert failure skips dependents and returns 500", func(t *testing.T) {
		f := newFixture()
		f.steps.SetOutcome(domain.StepInsertRecord, domain.Failure("duplicate key"))
		o := f.build(nil)

		result, err := o.Execute(context.Background(), uploadRequest("x.png"))

		require.NoError(t, err)
		assert.Equal(t, http.StatusInternalServerError, result.StatusCode)
		assert.Equal(t, domain.ReportFailed, result.Report.Status)

		insert, _ := result.Report.Outcome(domain.StepInsertRecord)
		upload, _ := result.Report.Outcome(domain.StepUploadOriginal)
		thumb, _ := result.Report.Outcome(domain.StepCreateThumbnail)
		assert.True(t, insert.IsFailure())
		assert.True(t, upload.IsSkipped())
		assert.True(t, thumb.IsSkipped())
		assert.Equal(t, 1, f.steps.CallCount())
	})

	t.Run("thumbnail failure does not fail the upload", func(t *testing.T) {
		f := newFixture()
		f.steps.SetOutcome(domain.StepCreateThumbnail, domain.Failure("resize failed"))
		o := f.build(nil)

		result, err := o.Execute(context.Background(), uploadRequest("dog.jpg"))

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, result.StatusCode)
		assert.Equal(t, domain.ReportSucceeded, result.Report.Status)
	})

	t.Run("delete with storage failure is a partial failure", func(t *testing.T) {
		f := newFixture()
		f.owners.AddPhoto("old.png", testEmail)
		f.steps.SetOutcome(domain.StepDeleteStorageObjects, domain.Failure("access denied by bucket policy"))
		o := f.build(nil)

		result, err := o.Execute(context.Background(), deleteRequest("old.png"))

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, result.StatusCode)
		assert.Equal(t, domain.ReportPartialFailure, result.Report.Status)
		assert.True(t, f.steps.Called(domain.StepDeleteStorageObjects))
		assert.True(t, f.steps.Called(domain.StepDeleteRecord))
		assert.True(t, f.steps.Called(domain.StepDeleteThumbnail))

		record, _ := result.Report.Outcome(domain.StepDeleteRecord)
		assert.True(t, record.IsSuccess())
	})

	t.Run("same request yields same status twice", func(t *testing.T) {
		f := newFixture()
		f.steps.SetOutcome(domain.StepUploadOriginal, domain.Failure("timeout"))
		o := f.build(nil)

		first, err := o.Execute(context.Background(), uploadRequest("dog.jpg"))
		require.NoError(t, err)
		second, err := o.Execute(context.Background(), uploadRequest("dog.jpg"))
		require.NoError(t, err)

		assert.Equal(t, first.Report.Status, second.Report.Status)
		assert.Equal(t, first.StatusCode, second.StatusCode)
	})
}

func TestWorkflowOrchestrator_Rejections(t *testing.T) {
	t.Run("missing key is rejected with 400 before any collaborator", func(t *testing.T) {
		f := newFixture()
		engine := mocks.NewMockWorkflowEngine()
		o := f.build(engine)

		result, err := o.Execute(context.Background(), uploadRequest(""))

		assert.Nil(t, result)
		requireAppError(t, err, http.StatusBadRequest)
		assert.ErrorIs(t, err, domain.ErrMissingKey)
		assert.False(t, engine.StartCalled)
		assert.Equal(t, 0, f.steps.CallCount())
	})

	t.Run("missing content on upload is rejected with 400", func(t *testing.T) {
		f := newFixture()
		o := f.build(nil)
		req := domain.NewUploadRequest("cat.png", testEmail, testToken, "", "")

		_, err := o.Execute(context.Background(), req)

		requireAppError(t, err, http.StatusBadRequest)
		assert.Equal(t, 0, f.steps.CallCount())
	})

	t.Run("forged token with malformed fields is rejected with 403", func(t *testing.T) {
		f := newFixture()
		o := f.build(nil)

		for _, req := range []domain.ActionRequest{
			domain.NewUploadRequest("cat.png", testEmail, "forged", "!!!not-base64!!!", ""),
			domain.NewUploadRequest("../etc", testEmail, "forged", "aGVsbG8=", ""),
		} {
			_, err := o.Execute(context.Background(), req)

			requireAppError(t, err, http.StatusForbidden)
			assert.ErrorIs(t, err, domain.ErrInvalidCredential)
		}
		assert.Equal(t, 0, f.steps.CallCount())
	})

	t.Run("malformed fields from an authenticated caller are rejected with 400", func(t *testing.T) {
		f := newFixture()
		o := f.build(nil)

		for _, req := range []domain.ActionRequest{
			domain.NewUploadRequest("cat.png", testEmail, testToken, "!!!not-base64!!!", ""),
			domain.NewUploadRequest("../etc", testEmail, testToken, "aGVsbG8=", ""),
			domain.NewUploadRequest("cat.png", testEmail, testToken, "aGVsbG8=", strings.Repeat("x", MaxDescriptionLength+1)),
		} {
			_, err := o.Execute(context.Background(), req)

			requireAppError(t, err, http.StatusBadRequest)
		}
		assert.Equal(t, 0, f.steps.CallCount())
		assert.Equal(t, float64(3), testutil.ToFloat64(f.metrics.RejectionsTotal.WithLabelValues("upload", "validation")))
	})

	t.Run("invalid token is rejected with 403", func(t *testing.T) {
		f := newFixture()
		engine := mocks.NewMockWorkflowEngine()
		o := f.build(engine)
		req := domain.NewUploadRequest("cat.png", testEmail, "forged", "aGVsbG8=", "")

		_, err := o.Execute(context.Background(), req)

		requireAppError(t, err, http.StatusForbidden)
		assert.False(t, engine.StartCalled)
		assert.Equal(t, 0, f.steps.CallCount())
	})

	t.Run("missing credential is rejected with 403", func(t *testing.T) {
		f := newFixture()
		o := f.build(nil)
		req := domain.NewDeleteRequest("cat.png", "", "")

		_, err := o.Execute(context.Background(), req)

		requireAppError(t, err, http.StatusForbidden)
		assert.Equal(t, 0, f.owners.CountCalls)
	})

	t.Run("delete of a photo owned by someone else is rejected with 403", func(t *testing.T) {
		f := newFixture()
		f.owners.AddPhoto("cat.png", "bob@example.com")
		engine := mocks.NewMockWorkflowEngine()
		o := f.build(engine)

		result, err := o.Execute(context.Background(), deleteRequest("cat.png"))

		assert.Nil(t, result)
		requireAppError(t, err, http.StatusForbidden)
		appErr, _ := apperror.GetAppError(err)
		assert.Equal(t, "access denied", appErr.Message)
		assert.False(t, engine.StartCalled)
		assert.Equal(t, 0, f.steps.CallCount())
	})

	t.Run("ownership lookup failure is rejected with 403", func(t *testing.T) {
		f := newFixture()
		f.owners.CountErr = errors.New("connection reset")
		o := f.build(nil)

		_, err := o.Execute(context.Background(), deleteRequest("cat.png"))

		requireAppError(t, err, http.StatusForbidden)
		assert.Equal(t, 0, f.steps.CallCount())
		assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.RejectionsTotal.WithLabelValues("delete", "auth")))
	})

	t.Run("unknown action kind is rejected with 400", func(t *testing.T) {
		f := newFixture()
		o := f.build(nil)
		req := uploadRequest("cat.png")
		req.Kind = "rename"

		_, err := o.Execute(context.Background(), req)

		requireAppError(t, err, http.StatusBadRequest)
	})
}
