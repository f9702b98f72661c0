package rag

import (
	"context"
	"sync"

	"github.com/smartclass/smartclassd/plugin/ai"
)

// MockGateway is a scriptable Gateway implementation for testing.
type MockGateway struct {
	mu sync.Mutex

	Context       *ContextResult
	ContextErr    error
	ValidationOut *ai.Validation
	ValidateErr   error
	StatusOut     Status

	RetrieveCalls int
	ValidateCalls int
	StatusCalls   int
}

// NewMockGateway creates a mock gateway with a populated collection.
func NewMockGateway() *MockGateway {
	return &MockGateway{
		StatusOut: Status{Available: true, CollectionPresent: true, DocumentCount: 42},
	}
}

func (m *MockGateway) RetrieveContext(_ context.Context, _ ContextQuery) (*ContextResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RetrieveCalls++
	if m.ContextErr != nil {
		return nil, m.ContextErr
	}
	if m.Context == nil {
		return &ContextResult{}, nil
	}
	return m.Context, nil
}

func (m *MockGateway) Validate(_ context.Context, _ string, _ ContextQuery) (*ai.Validation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ValidateCalls++
	if m.ValidateErr != nil {
		return nil, m.ValidateErr
	}
	return m.ValidationOut, nil
}

func (m *MockGateway) Status(_ context.Context) Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StatusCalls++
	return m.StatusOut
}

// SetStatus updates the status returned by Status.
func (m *MockGateway) SetStatus(status Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StatusOut = status
}

// Ensure MockGateway implements Gateway
var _ Gateway = (*MockGateway)(nil)
