package mocks

import (
	"context"
	"sync"

	"github.com/photoflow/photoflow-api/internal/core/domain"
	"github.com/photoflow/photoflow-api/internal/core/port"
)

// ============================================================================
// MOCK SECRET STORE
// ============================================================================

type MockSecretStore struct {
	mu      sync.Mutex
	secrets map[string]string

	GetCalls int
	GetErr   error
}

func NewMockSecretStore() *MockSecretStore {
	return &MockSecretStore{
		secrets: make(map[string]string),
	}
}

func (m *MockSecretStore) Get(ctx context.Context, name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetCalls++
	if m.GetErr != nil {
		return "", m.GetErr
	}
	if v, ok := m.secrets[name]; ok {
		return v, nil
	}
	return "", domain.ErrNotFound
}

// SetSecret stores a secret (for test setup)
func (m *MockSecretStore) SetSecret(name, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.secrets[name] = value
}

// ============================================================================
// MOCK OWNERSHIP STORE
// ============================================================================

type MockOwnershipStore struct {
	mu     sync.Mutex
	owners map[string]string

	CountCalls int
	CountErr   error
}

func NewMockOwnershipStore() *MockOwnershipStore {
	return &MockOwnershipStore{
		owners: make(map[string]string),
	}
}

func (m *MockOwnershipStore) Count(ctx context.Context, key domain.ResourceKey, owner domain.Identity) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CountCalls++
	if m.CountErr != nil {
		return 0, m.CountErr
	}
	if m.owners[key.Key] == owner.Email {
		return 1, nil
	}
	return 0, nil
}

// AddPhoto records ownership of a key (for test setup)
func (m *MockOwnershipStore) AddPhoto(key, email string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.owners[key] = email
}

// ============================================================================
// MOCK TOKEN SERVICE
// ============================================================================

type MockTokenService struct {
	mu sync.Mutex

	Valid       bool
	VerifyCalls int
	IssueToken  string
	IssueErr    error
}

func NewMockTokenService(valid bool) *MockTokenService {
	return &MockTokenService{Valid: valid, IssueToken: "token"}
}

func (m *MockTokenService) Issue(ctx context.Context, email string) (string, error) {
	if m.IssueErr != nil {
		return "", m.IssueErr
	}
	return m.IssueToken, nil
}

func (m *MockTokenService) Verify(ctx context.Context, claim domain.Identity, cred domain.Credential) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.VerifyCalls++
	return m.Valid
}

// ============================================================================
// MOCK STEP INVOKER
// ============================================================================

type MockStepInvoker struct {
	mu       sync.Mutex
	outcomes map[string]domain.StepOutcome

	// Calls records invoked step names in invocation order
	Calls []string
	// Hook runs before an outcome is returned, if set
	Hook func(step string)
}

func NewMockStepInvoker() *MockStepInvoker {
	return &MockStepInvoker{
		outcomes: make(map[string]domain.StepOutcome),
	}
}

func (m *MockStepInvoker) InvokeStep(ctx context.Context, spec domain.StepSpec, req domain.ActionRequest) domain.StepOutcome {
	m.mu.Lock()
	m.Calls = append(m.Calls, spec.Name)
	hook := m.Hook
	outcome, ok := m.outcomes[spec.Name]
	m.mu.Unlock()

	if hook != nil {
		hook(spec.Name)
	}
	if !ok {
		return domain.Success(spec.Name + " done")
	}
	return outcome
}

// SetOutcome fixes the outcome of a step (for test setup)
func (m *MockStepInvoker) SetOutcome(step string, outcome domain.StepOutcome) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes[step] = outcome
}

// Called reports whether a step was invoked
func (m *MockStepInvoker) Called(step string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.Calls {
		if c == step {
			return true
		}
	}
	return false
}

// CallCount returns the number of step invocations
func (m *MockStepInvoker) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// ============================================================================
// MOCK WORKER TRANSPORT
// ============================================================================

type MockWorkerTransport struct {
	mu        sync.Mutex
	responses map[string]*port.InvokeResult

	InvokeErr error
	Payloads  map[string][]byte
}

func NewMockWorkerTransport() *MockWorkerTransport {
	return &MockWorkerTransport{
		responses: make(map[string]*port.InvokeResult),
		Payloads:  make(map[string][]byte),
	}
}

func (m *MockWorkerTransport) Invoke(ctx context.Context, function string, payload []byte) (*port.InvokeResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Payloads[function] = payload
	if m.InvokeErr != nil {
		return nil, m.InvokeErr
	}
	if res, ok := m.responses[function]; ok {
		return res, nil
	}
	return &port.InvokeResult{StatusCode: 200, Payload: []byte(`{"statusCode":200,"body":"ok"}`)}, nil
}

// SetResponse fixes the response of a function (for test setup)
func (m *MockWorkerTransport) SetResponse(function string, res *port.InvokeResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[function] = res
}

// ============================================================================
// MOCK WORKFLOW ENGINE
// ============================================================================

type MockWorkflowEngine struct {
	mu sync.Mutex

	StartCalled   bool
	StartErr      error
	StartedInput  port.WorkflowInput
	Definition    string
	DescribeCalls int
	DescribeErr   error

	// Statuses is consumed one per Describe call; the last one repeats
	Statuses []domain.ExecutionStatus
	Output   []byte
}

func NewMockWorkflowEngine(statuses ...domain.ExecutionStatus) *MockWorkflowEngine {
	return &MockWorkflowEngine{Statuses: statuses}
}

func (m *MockWorkflowEngine) Start(ctx context.Context, definitionID string, input port.WorkflowInput) (*domain.ExecutionHandle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StartCalled = true
	m.Definition = definitionID
	m.StartedInput = input
	if m.StartErr != nil {
		return nil, m.StartErr
	}
	return &domain.ExecutionHandle{ID: "execution-123", RunID: "run-456"}, nil
}

func (m *MockWorkflowEngine) Describe(ctx context.Context, handle domain.ExecutionHandle) (*domain.ExecutionDescription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DescribeCalls++
	if m.DescribeErr != nil {
		return nil, m.DescribeErr
	}

	status := domain.ExecutionRunning
	if len(m.Statuses) > 0 {
		idx := m.DescribeCalls - 1
		if idx >= len(m.Statuses) {
			idx = len(m.Statuses) - 1
		}
		status = m.Statuses[idx]
	}

	desc := &domain.ExecutionDescription{Status: status}
	if status == domain.ExecutionSucceeded {
		desc.Output = m.Output
	}
	return desc, nil
}
