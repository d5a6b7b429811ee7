package activity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/testsuite"

	"github.com/photoflow/photoflow-api/internal/core/domain"
	"github.com/photoflow/photoflow-api/internal/core/port"
	"github.com/photoflow/photoflow-api/internal/core/service/mocks"
)

func TestActivities_InvokeStep(t *testing.T) {
	input := port.NewWorkflowInput(domain.NewDeleteRequest("cat.png", "alice@example.com", "token"))
	step := domain.DeletePlan().Steps[1]

	t.Run("returns worker outcome", func(t *testing.T) {
		var suite testsuite.WorkflowTestSuite
		env := suite.NewTestActivityEnvironment()
		invoker := mocks.NewMockStepInvoker()
		invoker.SetOutcome(step.Name, domain.Failure("record missing"))
		env.RegisterActivity(&Activities{Invoker: invoker})

		val, err := env.ExecuteActivity("InvokeStep", StepInput{Step: step, Input: input})

		require.NoError(t, err)
		var outcome domain.StepOutcome
		require.NoError(t, val.Get(&outcome))
		assert.True(t, outcome.IsFailure())
		assert.Equal(t, "record missing", outcome.Reason)
		assert.True(t, invoker.Called(step.Name))
	})

	t.Run("fails without invoker", func(t *testing.T) {
		var suite testsuite.WorkflowTestSuite
		env := suite.NewTestActivityEnvironment()
		env.RegisterActivity(&Activities{})

		val, err := env.ExecuteActivity("InvokeStep", StepInput{Step: step, Input: input})

		require.NoError(t, err)
		var outcome domain.StepOutcome
		require.NoError(t, val.Get(&outcome))
		assert.True(t, outcome.IsFailure())
	})
}
