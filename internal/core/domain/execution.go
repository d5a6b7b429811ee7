package domain

import (
	"encoding/json"
	"time"
)

// ExecutionHandle references a managed workflow execution
type ExecutionHandle struct {
	ID        string
	RunID     string
	StartedAt time.Time
}

// ExecutionStatus is the state of a managed execution as seen by the poller
type ExecutionStatus string

const (
	ExecutionRunning   ExecutionStatus = "RUNNING"
	ExecutionSucceeded ExecutionStatus = "SUCCEEDED"
	ExecutionFailed    ExecutionStatus = "FAILED"
	ExecutionTimedOut  ExecutionStatus = "TIMED_OUT"
	ExecutionAborted   ExecutionStatus = "ABORTED"
	ExecutionUnknown   ExecutionStatus = "UNKNOWN"
)

// IsTerminal checks if the status ends polling
func (s ExecutionStatus) IsTerminal() bool {
	return s != ExecutionRunning
}

// ExecutionDescription is a snapshot returned by the workflow engine
type ExecutionDescription struct {
	Status ExecutionStatus
	Output json.RawMessage
}

// TerminalResult is what the poller hands back to the orchestrator
type TerminalResult struct {
	Status ExecutionStatus
	Output json.RawMessage
	Err    error
}

// Strategy names the execution path that produced a result
type Strategy string

const (
	StrategyManaged Strategy = "managed"
	StrategyDirect  Strategy = "direct"
)

// ActionResult is the caller-facing outcome of an orchestrated action
type ActionResult struct {
	StatusCode int
	Strategy   Strategy
	Report     *WorkflowReport
	// Body holds the managed execution output verbatim
	Body json.RawMessage
}

// ResponseBody returns the text sent back to the caller. Managed output is
// passed through untouched.
func (r *ActionResult) ResponseBody() []byte {
	if len(r.Body) > 0 {
		return r.Body
	}
	if r.Report != nil {
		return r.Report.JSON()
	}
	return []byte("{}")
}
