package cooldown

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"

	"GoldSentinel/internal/model"
)

// FileStore keeps the state in a JSON file, replaced atomically on every save.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by path. The file is created on first save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the state file. A missing file yields the zero state.
func (s *FileStore) Load(_ context.Context) (model.CooldownState, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.CooldownState{}, nil
		}
		return model.CooldownState{}, fmt.Errorf("read state file: %w", err)
	}
	return decodeState(data)
}

// Save replaces the state file atomically through a temp file in the same directory.
func (s *FileStore) Save(_ context.Context, state model.CooldownState) error {
	data, err := encodeState(state)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	if err := renameio.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}
