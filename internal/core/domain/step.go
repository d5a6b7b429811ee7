package domain

import (
	"context"
	"fmt"
)

// Step names shared by the direct path and the managed workflows
const (
	StepInsertRecord         = "insert-record"
	StepUploadOriginal       = "upload-original"
	StepCreateThumbnail      = "create-thumbnail"
	StepDeleteStorageObjects = "delete-storage-objects"
	StepDeleteRecord         = "delete-record"
	StepDeleteThumbnail      = "delete-thumbnail"
)

// WorkerKind names the external worker function a step delegates to
type WorkerKind string

const (
	WorkerInsertRecord    WorkerKind = "db-insert"
	WorkerUploadObject    WorkerKind = "object-upload"
	WorkerCreateThumbnail WorkerKind = "thumbnail-create"
	WorkerDeleteObject    WorkerKind = "object-delete"
	WorkerDeleteRecord    WorkerKind = "record-delete"
	WorkerDeleteThumbnail WorkerKind = "thumbnail-delete"
)

// StepSpec is the declarative part of a step
type StepSpec struct {
	Name       string     `json:"name"`
	Worker     WorkerKind `json:"worker"`
	DependsOn  []string   `json:"depends_on,omitempty"`
	BestEffort bool       `json:"best_effort,omitempty"`
}

// Step is a StepSpec bound to an invocation
type Step struct {
	StepSpec
	Invoke func(ctx context.Context) StepOutcome
}

// Plan is the ordered, acyclic set of steps run for one action
type Plan struct {
	Kind  ActionKind
	Steps []StepSpec
}

// UploadPlan: insert-record -> upload-original -> create-thumbnail (best effort)
func UploadPlan() Plan {
	return Plan{
		Kind: ActionUpload,
		Steps: []StepSpec{
			{Name: StepInsertRecord, Worker: WorkerInsertRecord},
			{Name: StepUploadOriginal, Worker: WorkerUploadObject, DependsOn: []string{StepInsertRecord}},
			{Name: StepCreateThumbnail, Worker: WorkerCreateThumbnail, DependsOn: []string{StepUploadOriginal}, BestEffort: true},
		},
	}
}

// DeletePlan runs every step independently; thumbnail deletion is best effort
func DeletePlan() Plan {
	return Plan{
		Kind: ActionDelete,
		Steps: []StepSpec{
			{Name: StepDeleteStorageObjects, Worker: WorkerDeleteObject},
			{Name: StepDeleteRecord, Worker: WorkerDeleteRecord},
			{Name: StepDeleteThumbnail, Worker: WorkerDeleteThumbnail, BestEffort: true},
		},
	}
}

// PlanFor returns the plan of an action kind
func PlanFor(kind ActionKind) (Plan, error) {
	switch kind {
	case ActionUpload:
		return UploadPlan(), nil
	case ActionDelete:
		return DeletePlan(), nil
	default:
		return Plan{}, fmt.Errorf("%w: %q", ErrUnknownAction, kind)
	}
}

// Validate checks that names are unique, dependencies exist and are declared
// earlier, which rules out cycles.
func (p Plan) Validate() error {
	seen := make(map[string]bool, len(p.Steps))
	for _, s := range p.Steps {
		if s.Name == "" {
			return fmt.Errorf("%w: step without name", ErrInvalidPlan)
		}
		if seen[s.Name] {
			return fmt.Errorf("%w: duplicate step %q", ErrInvalidPlan, s.Name)
		}
		for _, dep := range s.DependsOn {
			if !seen[dep] {
				return fmt.Errorf("%w: step %q depends on undeclared step %q", ErrInvalidPlan, s.Name, dep)
			}
		}
		seen[s.Name] = true
	}
	return nil
}

// Levels groups steps so that every dependency of a step sits in an earlier
// level. Steps keep their declaration order inside a level.
func (p Plan) Levels() [][]StepSpec {
	depth := make(map[string]int, len(p.Steps))
	maxDepth := 0
	for _, s := range p.Steps {
		d := 0
		for _, dep := range s.DependsOn {
			if depth[dep]+1 > d {
				d = depth[dep] + 1
			}
		}
		depth[s.Name] = d
		if d > maxDepth {
			maxDepth = d
		}
	}

	levels := make([][]StepSpec, maxDepth+1)
	for _, s := range p.Steps {
		levels[depth[s.Name]] = append(levels[depth[s.Name]], s)
	}
	return levels
}

// BlockingDependency returns the first dependency that did not succeed
func (s StepSpec) BlockingDependency(outcomes map[string]StepOutcome) (string, StepOutcome, bool) {
	for _, dep := range s.DependsOn {
		o, ok := outcomes[dep]
		if !ok || !o.IsSuccess() {
			return dep, o, true
		}
	}
	return "", StepOutcome{}, false
}

// SkipCause describes why a step was skipped because of a dependency
func SkipCause(dep string, o StepOutcome) string {
	if o.IsSkipped() {
		return fmt.Sprintf("%s was skipped", dep)
	}
	return fmt.Sprintf("%s failed", dep)
}
