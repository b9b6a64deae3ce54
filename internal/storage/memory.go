package storage

import (
	"context"
	"sync"

	"food_store/internal/models"
)

// Memory keeps the session in process memory. It does not survive a restart.
type Memory struct {
	mu      sync.Mutex
	session models.Session
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

// Load returns the stored session.
func (m *Memory) Load(_ context.Context) (models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session, nil
}

// Save replaces the stored session.
func (m *Memory) Save(_ context.Context, session models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = session
	return nil
}

// Clear removes the stored session.
func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = models.Session{}
	return nil
}

// Close is a no-op.
func (m *Memory) Close() {}
