package cooldown

import (
	"context"
	"sync"

	"GoldSentinel/internal/model"
)

// MemoryStore keeps the encoded state in memory. Used for dry runs and tests.
type MemoryStore struct {
	mu   sync.Mutex
	data []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(_ context.Context) (model.CooldownState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return model.CooldownState{}, nil
	}
	return decodeState(s.data)
}

func (s *MemoryStore) Save(_ context.Context, state model.CooldownState) error {
	data, err := encodeState(state)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.data = data
	s.mu.Unlock()
	return nil
}

// SetRaw replaces the stored bytes verbatim.
func (s *MemoryStore) SetRaw(data []byte) {
	s.mu.Lock()
	s.data = append([]byte(nil), data...)
	s.mu.Unlock()
}
