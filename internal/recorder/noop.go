package recorder

import (
	"context"

	"GoldSentinel/internal/model"
	"GoldSentinel/internal/simulator"
)

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordSignal(context.Context, *model.Signal) error         { return nil }
func (n *NoopRecorder) RecordOutcome(context.Context, model.TradeOutcome) error   { return nil }
func (n *NoopRecorder) RecordBacktest(context.Context, simulator.Report) error    { return nil }
func (n *NoopRecorder) LastSignal(context.Context, string) (*model.Signal, error) { return nil, nil }
func (n *NoopRecorder) Stats(context.Context) (model.Stats, error)                { return model.Stats{}, nil }
func (n *NoopRecorder) Get(_, def string) string                                  { return def }
func (n *NoopRecorder) Close() error                                              { return nil }
