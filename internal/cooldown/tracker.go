package cooldown

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"GoldSentinel/internal/model"
	"GoldSentinel/internal/simulator"
)

// Resolution reports what UpdateTradeStatus did with the open trade.
type Resolution struct {
	Resolved bool
	Kind     model.OutcomeKind
	Trade    model.ActiveTrade
	Exit     float64
	PnL      float64
}

// Tracker owns the cooldown state. Every operation is a locked load-modify-save.
type Tracker struct {
	mu    sync.Mutex
	store Store
	now   func() time.Time
	log   zerolog.Logger
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithLogger replaces the global logger.
func WithLogger(l zerolog.Logger) Option {
	return func(t *Tracker) { t.log = l }
}

func NewTracker(store Store, opts ...Option) *Tracker {
	t := &Tracker{store: store, now: time.Now, log: log.Logger}
	for _, o := range opts {
		o(t)
	}
	return t
}

// load returns the stored state, falling back to the zero state when it is corrupt.
func (t *Tracker) load(ctx context.Context) (model.CooldownState, error) {
	st, err := t.store.Load(ctx)
	if errors.Is(err, ErrCorruptState) {
		t.log.Warn().Err(err).Msg("cooldown state unreadable, starting fresh")
		return model.CooldownState{}, nil
	}
	if err != nil {
		return model.CooldownState{}, err
	}
	return st, nil
}

// OpenTrade records sig as the active trade, replacing any previous one.
func (t *Tracker) OpenTrade(ctx context.Context, sig *model.Signal) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	st, err := t.load(ctx)
	if err != nil {
		return err
	}
	st.ActiveTrade = &model.ActiveTrade{
		SignalID:  sig.ID,
		Symbol:    sig.Symbol,
		Direction: sig.Direction,
		Entry:     sig.EntryPrice,
		SL:        sig.StopLoss,
		TP:        sig.TakeProfit,
		StartTime: model.EpochSeconds(t.now()),
	}
	if err := t.store.Save(ctx, st); err != nil {
		return fmt.Errorf("open trade: %w", err)
	}
	t.log.Info().Str("symbol", sig.Symbol).Str("direction", string(sig.Direction)).
		Float64("entry", sig.EntryPrice).Msg("trade opened")
	return nil
}

// UpdateTradeStatus checks the active trade against one bar's range. A loss clears the trade
// and starts the cooldown; a win only clears the trade.
func (t *Tracker) UpdateTradeStatus(ctx context.Context, high, low float64) (Resolution, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	st, err := t.load(ctx)
	if err != nil {
		return Resolution{}, err
	}
	trade := st.ActiveTrade
	if trade == nil {
		return Resolution{}, nil
	}
	kind, hit := simulator.CheckBar(trade.Direction, trade.SL, trade.TP, high, low)
	if !hit {
		return Resolution{}, nil
	}

	res := Resolution{Resolved: true, Kind: kind, Trade: *trade, Exit: trade.TP}
	if kind == model.OutcomeLoss {
		res.Exit = trade.SL
		st.LastLossTime = model.EpochSeconds(t.now())
	}
	res.PnL = simulator.PnL(trade.Direction, trade.Entry, res.Exit)
	st.ActiveTrade = nil

	if err := t.store.Save(ctx, st); err != nil {
		return Resolution{}, fmt.Errorf("resolve trade: %w", err)
	}
	ev := t.log.Info()
	if kind == model.OutcomeLoss {
		ev = t.log.Warn()
	}
	ev.Str("symbol", trade.Symbol).Str("outcome", string(kind)).Float64("pnl", res.PnL).Msg("trade resolved")
	return res, nil
}

// CheckCooldown reports whether a loss happened less than hours ago, and the minutes left
// rounded up.
func (t *Tracker) CheckCooldown(ctx context.Context, hours float64) (bool, int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	st, err := t.load(ctx)
	if err != nil {
		return false, 0, err
	}
	active, remaining := InCooldown(st, t.now(), time.Duration(hours*float64(time.Hour)))
	if !active {
		return false, 0, nil
	}
	return true, int(math.Ceil(remaining.Minutes())), nil
}

// State returns a copy of the current state.
func (t *Tracker) State(ctx context.Context) (model.CooldownState, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	st, err := t.load(ctx)
	if err != nil {
		return model.CooldownState{}, err
	}
	return cloneState(st), nil
}

// InCooldown reports whether now falls inside window after the recorded loss, and how much
// of the window is left.
func InCooldown(st model.CooldownState, now time.Time, window time.Duration) (bool, time.Duration) {
	if st.LastLossTime == 0 || window <= 0 {
		return false, 0
	}
	elapsed := now.Sub(model.EpochTime(st.LastLossTime))
	if elapsed >= window {
		return false, 0
	}
	return true, window - elapsed
}
