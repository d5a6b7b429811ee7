package domain

// OutcomeKind tags a StepOutcome variant
type OutcomeKind string

const (
	OutcomeSuccess OutcomeKind = "success"
	OutcomeFailure OutcomeKind = "failure"
	OutcomeSkipped OutcomeKind = "skipped"
)

// StepOutcome is the terminal result of one step: Success{Body},
// Failure{Reason} or Skipped{Cause}.
type StepOutcome struct {
	Kind   OutcomeKind `json:"outcome"`
	Body   string      `json:"body,omitempty"`
	Reason string      `json:"reason,omitempty"`
	Cause  string      `json:"cause,omitempty"`
}

// Success builds a successful outcome
func Success(body string) StepOutcome {
	return StepOutcome{Kind: OutcomeSuccess, Body: body}
}

// Failure builds a failed outcome
func Failure(reason string) StepOutcome {
	return StepOutcome{Kind: OutcomeFailure, Reason: reason}
}

// Skipped builds an outcome for a step that was never attempted
func Skipped(cause string) StepOutcome {
	return StepOutcome{Kind: OutcomeSkipped, Cause: cause}
}

func (o StepOutcome) IsSuccess() bool { return o.Kind == OutcomeSuccess }
func (o StepOutcome) IsFailure() bool { return o.Kind == OutcomeFailure }
func (o StepOutcome) IsSkipped() bool { return o.Kind == OutcomeSkipped }

// Detail returns the human readable payload of the variant
func (o StepOutcome) Detail() string {
	switch o.Kind {
	case OutcomeSuccess:
		return o.Body
	case OutcomeFailure:
		return o.Reason
	default:
		return o.Cause
	}
}
