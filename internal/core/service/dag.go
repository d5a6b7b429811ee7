package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/photoflow/photoflow-api/internal/core/domain"
)

type stepDone struct {
	index   int
	outcome domain.StepOutcome
}

// runSteps executes steps along their dependency graph with at most limit
// invocations in flight. A step is scheduled only after all of its
// dependencies are terminal; if one of them did not succeed the step is
// Skipped without being invoked. Running steps are never cancelled because a
// sibling failed. Results are returned in declaration order.
func runSteps(ctx context.Context, steps []domain.Step, limit int) []domain.StepResult {
	if limit <= 0 {
		limit = 1
	}

	outcomes := make([]*domain.StepOutcome, len(steps))
	byName := make(map[string]domain.StepOutcome, len(steps))
	scheduled := make([]bool, len(steps))

	// Buffered so finishing steps never block on the scheduler, even while
	// the scheduler itself waits for a free slot in g.Go.
	done := make(chan stepDone, len(steps))

	var g errgroup.Group
	g.SetLimit(limit)

	pending, inFlight := len(steps), 0
	for pending > 0 {
		progressed := false

		for i, step := range steps {
			if scheduled[i] || !depsTerminal(step.StepSpec, byName) {
				continue
			}
			scheduled[i] = true
			progressed = true

			if dep, o, blocked := step.BlockingDependency(byName); blocked {
				skipped := domain.Skipped(domain.SkipCause(dep, o))
				outcomes[i] = &skipped
				byName[step.Name] = skipped
				pending--
				continue
			}

			inFlight++
			g.Go(func() error {
				done <- stepDone{index: i, outcome: invokeSafely(ctx, step)}
				return nil
			})
		}

		if pending == 0 {
			break
		}

		if inFlight == 0 {
			if progressed {
				continue
			}
			// Nothing runnable and nothing running: the remaining steps
			// reference dependencies that can never complete.
			for i, step := range steps {
				if !scheduled[i] {
					skipped := domain.Skipped("unresolvable dependency")
					outcomes[i] = &skipped
					byName[step.Name] = skipped
					scheduled[i] = true
					pending--
				}
			}
			break
		}

		d := <-done
		inFlight--
		pending--
		outcomes[d.index] = &d.outcome
		byName[steps[d.index].Name] = d.outcome
	}

	_ = g.Wait()

	results := make([]domain.StepResult, len(steps))
	for i, step := range steps {
		results[i] = domain.StepResult{
			Name:        step.Name,
			BestEffort:  step.BestEffort,
			StepOutcome: *outcomes[i],
		}
	}
	return results
}

func depsTerminal(spec domain.StepSpec, outcomes map[string]domain.StepOutcome) bool {
	for _, dep := range spec.DependsOn {
		if _, ok := outcomes[dep]; !ok {
			return false
		}
	}
	return true
}

func invokeSafely(ctx context.Context, step domain.Step) (outcome domain.StepOutcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = domain.Failure(fmt.Sprintf("step %s panicked: %v", step.Name, r))
		}
	}()
	if step.Invoke == nil {
		return domain.Failure("step has no invocation")
	}
	return step.Invoke(ctx)
}
