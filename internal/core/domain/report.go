package domain

import (
	"encoding/json"
	"net/http"
)

// ReportStatus is the overall status derived from step outcomes
type ReportStatus string

const (
	ReportSucceeded      ReportStatus = "Succeeded"
	ReportPartialFailure ReportStatus = "PartialFailure"
	ReportFailed         ReportStatus = "Failed"
)

// StepResult is one named entry of a report
type StepResult struct {
	Name       string `json:"name"`
	BestEffort bool   `json:"best_effort,omitempty"`
	StepOutcome
}

// WorkflowReport is the frozen, ordered result of one workflow run
type WorkflowReport struct {
	Kind   ActionKind   `json:"kind"`
	Status ReportStatus `json:"status"`
	Steps  []StepResult `json:"steps"`
}

// Aggregate merges named step outcomes into a report. Steps keep the order in
// which they were passed, regardless of completion order.
//
// Status is Succeeded when every required step succeeded, PartialFailure when
// at least one required step failed or was skipped but another required step
// succeeded, and Failed otherwise. Best-effort steps never affect the status.
func Aggregate(kind ActionKind, steps []StepResult) *WorkflowReport {
	required, succeeded := 0, 0
	for _, s := range steps {
		if s.BestEffort {
			continue
		}
		required++
		if s.IsSuccess() {
			succeeded++
		}
	}

	status := ReportFailed
	switch {
	case succeeded == required:
		status = ReportSucceeded
	case succeeded > 0:
		status = ReportPartialFailure
	}

	frozen := make([]StepResult, len(steps))
	copy(frozen, steps)
	return &WorkflowReport{Kind: kind, Status: status, Steps: frozen}
}

// Outcome returns the outcome recorded for a step name
func (r *WorkflowReport) Outcome(name string) (StepOutcome, bool) {
	for _, s := range r.Steps {
		if s.Name == name {
			return s.StepOutcome, true
		}
	}
	return StepOutcome{}, false
}

// HTTPStatus maps the report status to a caller-visible code. Partial
// failures stay 200 and carry per-step detail in the body.
func (r *WorkflowReport) HTTPStatus() int {
	if r.Status == ReportFailed {
		return http.StatusInternalServerError
	}
	return http.StatusOK
}

// JSON renders the report as indented text
func (r *WorkflowReport) JSON() []byte {
	data, err := json.MarshalIndent(r, "", "    ")
	if err != nil {
		return []byte(`{"status":"` + string(r.Status) + `"}`)
	}
	return data
}
