package api

import (
	"sync"

	"commitverify/internal/models"
)

// StateStore holds the stub state shared by all handlers.
type StateStore struct {
	mu    sync.RWMutex
	state models.StubState
}

func NewStateStore(initial models.StubState) *StateStore {
	return &StateStore{state: initial}
}

// Get returns a copy of the current state.
func (s *StateStore) Get() models.StubState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Update validates and applies a partial update, returning the new state.
func (s *StateStore) Update(update models.StubStateUpdate) (models.StubState, error) {
	if err := update.Validate(); err != nil {
		return models.StubState{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Apply(update)
	return s.state, nil
}
