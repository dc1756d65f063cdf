package workbench

import (
	"context"
	"sync"
)

// Manager hands out at most one live Session per case id. Sessions are
// created lazily on first access and opened against the store.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	factory  func(caseID string) *Session
}

// NewManager creates a Manager that builds sessions with the given
// factory (the factory wires store, notifier, publisher and document
// source).
func NewManager(factory func(caseID string) *Session) *Manager {
	return &Manager{
		sessions: map[string]*Session{},
		factory:  factory,
	}
}

// Get returns the live session for a case, creating and opening it on
// first use. A load failure is non-fatal: the session starts empty.
func (m *Manager) Get(ctx context.Context, caseID string) *Session {
	m.mu.Lock()
	if s, ok := m.sessions[caseID]; ok {
		m.mu.Unlock()
		return s
	}
	s := m.factory(caseID)
	m.sessions[caseID] = s
	m.mu.Unlock()

	// Opening outside the manager lock; the session has its own.
	_ = s.Open(ctx)
	return s
}

// Drop discards the live session for a case, forcing a reload from the
// store on next access.
func (m *Manager) Drop(caseID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, caseID)
}
