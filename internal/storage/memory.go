package storage

import (
	"context"
	"sync"

	"github.com/wnt/pollhub/internal/models"
)

// MemoryPersister keeps the serialized state in process memory. It backs
// single-process deployments without external storage and serves as the
// test double for the durable persisters. State is held in encoded form
// so Load/Save round-trip through the same codec as the real backends.
type MemoryPersister struct {
	mu      sync.Mutex
	payload []byte
}

// NewMemoryPersister returns an empty in-memory persister.
func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{}
}

// Load returns the last saved state, or found=false if nothing was saved.
func (m *MemoryPersister) Load(_ context.Context) (models.AppState, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.payload == nil {
		return models.AppState{}, false, nil
	}
	state, err := Decode(m.payload)
	if err != nil {
		return models.AppState{}, false, err
	}
	return state, true, nil
}

// Save replaces the stored state.
func (m *MemoryPersister) Save(_ context.Context, state models.AppState) error {
	payload, err := Encode(state)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.payload = payload
	m.mu.Unlock()
	return nil
}
