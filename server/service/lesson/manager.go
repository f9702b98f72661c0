package lesson

import (
	"sync"

	"github.com/google/uuid"

	"github.com/smartclass/smartclassd/internal/errors"
	"github.com/smartclass/smartclassd/plugin/ai"
)

// Manager tracks active lesson sessions by ID. Sessions live in memory
// only; abandoning a subtopic simply leaves the session to be dropped.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates an empty session manager.
func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Create starts a new session over the given bundles and returns its ID.
func (m *Manager) Create(cards []ai.ContentCard, mainQuiz, examQuiz []ai.QuizQuestion) (string, *Session) {
	id := uuid.New().String()
	session := NewSession(cards, mainQuiz, examQuiz)

	m.mu.Lock()
	m.sessions[id] = session
	m.mu.Unlock()
	return id, session
}

// Get returns the session for the ID.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	session, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, errors.NotFound("lesson session not found")
	}
	return session, nil
}

// Delete removes the session for the ID. Deleting an unknown ID is a no-op.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Count returns the number of active sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
