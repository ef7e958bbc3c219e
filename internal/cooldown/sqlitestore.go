package cooldown

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"GoldSentinel/internal/model"
)

const cooldownSchema = `CREATE TABLE IF NOT EXISTS cooldown_state (
	id         INTEGER PRIMARY KEY CHECK (id = 1),
	payload    TEXT    NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SQLiteStore keeps the state as a single JSON row.
type SQLiteStore struct {
	db    *sql.DB
	owned bool
}

// OpenSQLiteStore opens (or creates) the database at path.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	s, err := NewSQLiteStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	s.owned = true
	return s, nil
}

// NewSQLiteStore uses an already open database, creating the table if needed.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if _, err := db.Exec(cooldownSchema); err != nil {
		return nil, fmt.Errorf("migrate cooldown_state: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load(ctx context.Context) (model.CooldownState, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM cooldown_state WHERE id = 1`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return model.CooldownState{}, nil
	}
	if err != nil {
		return model.CooldownState{}, fmt.Errorf("load cooldown state: %w", err)
	}
	return decodeState([]byte(payload))
}

func (s *SQLiteStore) Save(ctx context.Context, state model.CooldownState) error {
	data, err := encodeState(state)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO cooldown_state (id, payload, updated_at) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		string(data), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("save cooldown state: %w", err)
	}
	return nil
}

// Close closes the database when the store opened it.
func (s *SQLiteStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}
