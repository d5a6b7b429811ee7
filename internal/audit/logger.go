package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/photoflow/photoflow-api/pkg/observability"
)

// EventType represents the type of audit event
type EventType string

const (
	EventTokenIssued      EventType = "AUTH.TOKEN_ISSUED"
	EventTokenVerified    EventType = "AUTH.TOKEN_VERIFIED"
	EventOwnershipChecked EventType = "AUTH.OWNERSHIP_CHECKED"
)

// Outcome represents the result of an action
type Outcome string

const (
	OutcomeSuccess Outcome = "SUCCESS"
	OutcomeFailure Outcome = "FAILURE"
	OutcomeDenied  Outcome = "DENIED"
)

// Event represents an audit log entry. Tokens never appear in an event.
type Event struct {
	ID        uuid.UUID `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	EventType EventType `json:"event_type"`
	ServiceID string    `json:"service_id"`
	Subject   string    `json:"subject,omitempty"`
	Resource  string    `json:"resource"`
	Outcome   Outcome   `json:"outcome"`
}

// Logger handles audit logging. A nil *Logger discards every event.
type Logger struct {
	serviceID string
	sink      func(ctx context.Context, data []byte)
}

// NewLogger creates a new audit logger
func NewLogger(serviceID string) *Logger {
	return &Logger{serviceID: serviceID}
}

// WithSink redirects serialized events, mainly for tests
func (l *Logger) WithSink(sink func(ctx context.Context, data []byte)) *Logger {
	return &Logger{serviceID: l.serviceID, sink: sink}
}

// Log records an audit event
func (l *Logger) Log(ctx context.Context, event Event) {
	if l == nil {
		return
	}
	event.ID = uuid.New()
	event.Timestamp = time.Now().UTC()
	event.ServiceID = l.serviceID

	data, _ := json.Marshal(event)
	if l.sink != nil {
		l.sink(ctx, data)
		return
	}
	observability.WithContext(ctx).Info("audit", "event", string(data))
}

// LogSuccess logs a successful action
func (l *Logger) LogSuccess(ctx context.Context, eventType EventType, subject, resource string) {
	l.Log(ctx, Event{
		EventType: eventType,
		Subject:   subject,
		Resource:  resource,
		Outcome:   OutcomeSuccess,
	})
}

// LogFailure logs a failed action
func (l *Logger) LogFailure(ctx context.Context, eventType EventType, subject, resource string) {
	l.Log(ctx, Event{
		EventType: eventType,
		Subject:   subject,
		Resource:  resource,
		Outcome:   OutcomeFailure,
	})
}

// LogDenied logs a rejected access attempt
func (l *Logger) LogDenied(ctx context.Context, eventType EventType, subject, resource string) {
	l.Log(ctx, Event{
		EventType: eventType,
		Subject:   subject,
		Resource:  resource,
		Outcome:   OutcomeDenied,
	})
}
