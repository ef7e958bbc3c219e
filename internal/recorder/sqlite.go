package recorder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"GoldSentinel/internal/model"
	"GoldSentinel/internal/simulator"
)

// SQLiteRecorder persists historical data to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets the backtest CLI read while the bot writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

// DB exposes the handle so other stores can share the database file.
func (r *SQLiteRecorder) DB() *sql.DB { return r.db }

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS signals (
			id          TEXT PRIMARY KEY,
			timestamp   INTEGER NOT NULL,
			symbol      TEXT NOT NULL,
			direction   TEXT NOT NULL,
			entry       REAL,
			stop_loss   REAL,
			take_profit REAL,
			confidence  INTEGER,
			strategy    TEXT,
			reason      TEXT,
			patterns    TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_symbol_ts ON signals(symbol, timestamp)`,

		`CREATE TABLE IF NOT EXISTS trade_outcomes (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			signal_id  TEXT,
			timestamp  INTEGER NOT NULL,
			kind       TEXT NOT NULL,
			exit_price REAL,
			pnl        REAL,
			bars_held  INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_outcomes_ts ON trade_outcomes(timestamp)`,

		`CREATE TABLE IF NOT EXISTS backtest_runs (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp    INTEGER NOT NULL,
			scenario     TEXT,
			strategy     TEXT,
			total        INTEGER,
			wins         INTEGER,
			losses       INTEGER,
			timed_closes INTEGER,
			win_rate     REAL,
			total_pnl    REAL,
			from_ts      INTEGER,
			to_ts        INTEGER
		)`,

		`CREATE TABLE IF NOT EXISTS config (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordSignal(ctx context.Context, sig *model.Signal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	patterns := make([]string, len(sig.Patterns))
	for i, p := range sig.Patterns {
		patterns[i] = string(p)
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO signals
		(id, timestamp, symbol, direction, entry, stop_loss, take_profit, confidence, strategy, reason, patterns)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		sig.ID, sig.Timestamp.Unix(), sig.Symbol, string(sig.Direction),
		sig.EntryPrice, sig.StopLoss, sig.TakeProfit, sig.Confidence,
		sig.Strategy, sig.Reason, strings.Join(patterns, ","),
	)
	if err != nil {
		return fmt.Errorf("record signal: %w", err)
	}
	return nil
}

func (r *SQLiteRecorder) RecordOutcome(ctx context.Context, out model.TradeOutcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var signalID string
	if out.Signal != nil {
		signalID = out.Signal.ID
	}
	ts := out.ExitTime
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO trade_outcomes
		(signal_id, timestamp, kind, exit_price, pnl, bars_held)
		VALUES (?,?,?,?,?,?)`,
		signalID, ts.Unix(), string(out.Kind), out.ExitPrice, out.PnL, out.BarsHeld,
	)
	if err != nil {
		return fmt.Errorf("record outcome: %w", err)
	}
	return nil
}

func (r *SQLiteRecorder) RecordBacktest(ctx context.Context, rep simulator.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := rep.Stats
	_, err := r.db.ExecContext(ctx, `INSERT INTO backtest_runs
		(timestamp, scenario, strategy, total, wins, losses, timed_closes, win_rate, total_pnl, from_ts, to_ts)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), rep.Scenario, rep.Strategy,
		st.Total, st.Wins, st.Losses, st.TimedCloses, st.WinRate, st.TotalPnL,
		unixOrZero(rep.From), unixOrZero(rep.To),
	)
	if err != nil {
		return fmt.Errorf("record backtest: %w", err)
	}
	return nil
}

func (r *SQLiteRecorder) LastSignal(ctx context.Context, symbol string) (*model.Signal, error) {
	var (
		sig       model.Signal
		ts        int64
		direction string
		patterns  string
	)
	err := r.db.QueryRowContext(ctx, `SELECT id, timestamp, symbol, direction, entry, stop_loss, take_profit,
		confidence, strategy, reason, patterns
		FROM signals WHERE symbol = ? ORDER BY timestamp DESC, rowid DESC LIMIT 1`, symbol).
		Scan(&sig.ID, &ts, &sig.Symbol, &direction, &sig.EntryPrice, &sig.StopLoss, &sig.TakeProfit,
			&sig.Confidence, &sig.Strategy, &sig.Reason, &patterns)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("last signal: %w", err)
	}
	sig.Timestamp = time.Unix(ts, 0).UTC()
	sig.Direction = model.Direction(direction)
	for _, p := range strings.Split(patterns, ",") {
		if p != "" {
			sig.Patterns = append(sig.Patterns, model.PatternTag(p))
		}
	}
	return &sig, nil
}

func (r *SQLiteRecorder) Stats(ctx context.Context) (model.Stats, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT kind, pnl FROM trade_outcomes ORDER BY id`)
	if err != nil {
		return model.Stats{}, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []model.TradeOutcome
	for rows.Next() {
		var kind string
		var pnl float64
		if err := rows.Scan(&kind, &pnl); err != nil {
			return model.Stats{}, fmt.Errorf("scan outcome: %w", err)
		}
		outcomes = append(outcomes, model.TradeOutcome{Kind: model.OutcomeKind(kind), PnL: pnl})
	}
	if err := rows.Err(); err != nil {
		return model.Stats{}, err
	}
	return simulator.Summarize(outcomes), nil
}

// Get implements config.Store over the config table. Read errors fall back to def.
func (r *SQLiteRecorder) Get(key, def string) string {
	var v string
	err := r.db.QueryRow(`SELECT value FROM config WHERE key = ?`, key).Scan(&v)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Warn().Err(err).Str("key", key).Msg("config lookup failed")
		}
		return def
	}
	if v == "" {
		return def
	}
	return v
}

// Set upserts a config value.
func (r *SQLiteRecorder) Set(ctx context.Context, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := r.db.ExecContext(ctx, `INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("set config %s: %w", key, err)
	}
	return nil
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}
