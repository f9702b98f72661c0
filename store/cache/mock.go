package cache

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// MockMirror is a mirror implementation for testing. It records every
// event and can be told to fail all writes.
type MockMirror struct {
	mu     sync.Mutex
	events []Event
	fail   bool
}

// NewMockMirror creates a new MockMirror.
func NewMockMirror() *MockMirror {
	return &MockMirror{}
}

// OnChange records the event, or fails when failure mode is enabled.
func (m *MockMirror) OnChange(_ context.Context, event Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("mirror unavailable")
	}
	m.events = append(m.events, event)
	return nil
}

// SetFail toggles failure mode.
func (m *MockMirror) SetFail(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = fail
}

// Events returns a copy of the recorded events.
func (m *MockMirror) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

// Ensure MockMirror implements Mirror
var _ Mirror = (*MockMirror)(nil)
