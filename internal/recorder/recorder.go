package recorder

import (
	"context"

	"GoldSentinel/internal/model"
	"GoldSentinel/internal/simulator"
)

// Recorder persists signals, their outcomes and backtest runs for later analysis.
type Recorder interface {
	RecordSignal(ctx context.Context, sig *model.Signal) error
	RecordOutcome(ctx context.Context, out model.TradeOutcome) error
	RecordBacktest(ctx context.Context, rep simulator.Report) error
	// LastSignal returns the newest recorded signal for symbol, or nil when there is none.
	LastSignal(ctx context.Context, symbol string) (*model.Signal, error)
	// Stats summarizes every recorded outcome.
	Stats(ctx context.Context) (model.Stats, error)
	// Get reads a value from the config table.
	Get(key, def string) string
	Close() error
}
