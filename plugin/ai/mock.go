package ai

import (
	"context"
	"sync"
)

// MockGateway is a scriptable Gateway implementation for testing.
type MockGateway struct {
	mu sync.Mutex

	Topics    []TopicDescriptor
	Cards     []ContentCard
	Questions []QuizQuestion
	Err       error
	Status    HealthStatus

	TopicsCalls  int
	ContentCalls int
	QuizCalls    int
	HealthCalls  int
}

// NewMockGateway creates a healthy mock gateway.
func NewMockGateway() *MockGateway {
	return &MockGateway{Status: HealthStatus{Available: true, Ready: true}}
}

func (m *MockGateway) GenerateTopics(_ context.Context, _ TopicsRequest) ([]TopicDescriptor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TopicsCalls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Topics, nil
}

func (m *MockGateway) GenerateContent(_ context.Context, _ ContentRequest) ([]ContentCard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ContentCalls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Cards, nil
}

func (m *MockGateway) GenerateQuiz(_ context.Context, _ QuizRequest) ([]QuizQuestion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.QuizCalls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Questions, nil
}

func (m *MockGateway) Health(_ context.Context) HealthStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.HealthCalls++
	return m.Status
}

// SetStatus updates the health status returned by Health.
func (m *MockGateway) SetStatus(status HealthStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Status = status
}

// SetErr makes all generation calls fail with the given error.
func (m *MockGateway) SetErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Err = err
}

// Ensure MockGateway implements Gateway
var _ Gateway = (*MockGateway)(nil)
