// Package storage provides the durable backends the store persists its
// state to. The whole AppState is serialized under a single versioned key
// and rewritten on every mutation; the storage medium's atomicity for one
// key is the only consistency guarantee (last writer wins across
// processes).
package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/wnt/pollhub/internal/models"
)

// SchemaVersion is embedded in the store key. A running binary only ever
// reads and writes its own version; state written under another version
// is simply not visible rather than being migrated.
const SchemaVersion = 1

// StoreKey returns the versioned key all persisters store the state under.
func StoreKey() string {
	return fmt.Sprintf("pollhub-store:v%d", SchemaVersion)
}

// Persister loads and saves the whole application state. Load returns
// found=false when nothing has been persisted yet, which is not an error.
type Persister interface {
	Load(ctx context.Context) (state models.AppState, found bool, err error)
	Save(ctx context.Context, state models.AppState) error
}

// Encode serializes the state for persistence. The payload is exactly the
// AppState shape; no envelope fields are added.
func Encode(state models.AppState) ([]byte, error) {
	payload, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("failed to encode state: %w", err)
	}
	return payload, nil
}

// Decode parses a persisted payload back into an AppState, allocating any
// missing maps so callers never see nil ones.
func Decode(payload []byte) (models.AppState, error) {
	state := models.NewAppState()
	if err := json.Unmarshal(payload, &state); err != nil {
		return models.AppState{}, fmt.Errorf("failed to decode state: %w", err)
	}
	if state.Profiles == nil {
		state.Profiles = make(map[string]models.Profile)
	}
	if state.Polls == nil {
		state.Polls = make(map[string]models.Poll)
	}
	if state.VotesByWallet == nil {
		state.VotesByWallet = make(map[string]models.VoteRecord)
	}
	return state, nil
}
