package strategy

import (
	"fmt"
	"strings"

	"GoldSentinel/internal/model"
)

// Frames carries the indicator-augmented series of one evaluation, oldest bar first.
type Frames struct {
	Higher  []model.IndicatorBar // trend and levels
	Confirm []model.IndicatorBar // candle-colour veto
	Entry   []model.IndicatorBar // candles, RSI, MACD, entry price
}

// Input is everything a pipeline needs for one evaluation.
type Input struct {
	Symbol    string
	Frames    Frames
	Sentiment *model.Sentiment // nil when no sentiment source is configured
}

// SkipReason explains why an evaluation produced no signal.
type SkipReason string

const (
	SkipNone     SkipReason = ""
	SkipNoData   SkipReason = "no_data"
	SkipNoTrend  SkipReason = "no_trend"
	SkipNoLevel  SkipReason = "no_level"
	SkipNoCandle SkipReason = "no_candle"
	SkipRSI      SkipReason = "rsi_extreme"
	SkipMomentum SkipReason = "momentum"
	SkipVeto     SkipReason = "timeframe_veto"
	SkipScore    SkipReason = "score_below_threshold"
)

// Decision is the result of one evaluation: a signal, or the reason there is none.
type Decision struct {
	Signal *model.Signal
	Skip   SkipReason
}

// Emitted reports whether the decision carries a signal.
func (d Decision) Emitted() bool { return d.Signal != nil }

func skip(r SkipReason) Decision { return Decision{Skip: r} }

// Pipeline turns indicator frames into at most one signal. Implementations are pure.
type Pipeline interface {
	Name() string
	Evaluate(in Input) Decision
}

// New builds the pipeline variant selected by cfg.
func New(cfg Config) (Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Variant {
	case VariantThreeStage:
		return &threeStage{cfg: cfg}, nil
	case VariantScoreBased:
		return &scoreBased{cfg: cfg}, nil
	}
	return nil, fmt.Errorf("unknown strategy variant %q", cfg.Variant)
}

// TrendOf classifies a bar against its slow EMA. ok is false while the EMA is undefined.
func TrendOf(b model.IndicatorBar) (trend model.Trend, ok bool) {
	ema := b.Ind.EMASlow
	if !model.Defined(ema) {
		return model.TrendNeutral, false
	}
	switch {
	case b.Close > ema:
		return model.TrendUp, true
	case b.Close < ema:
		return model.TrendDown, true
	}
	return model.TrendNeutral, true
}

// stops places the stop-loss and take-profit around entry from a volatility value.
// An undefined atr falls back to entry*cfg.ATRFallbackPct.
func stops(dir model.Direction, entry, atr float64, cfg Config) (sl, tp float64) {
	if !model.Defined(atr) || atr <= 0 {
		atr = entry * cfg.ATRFallbackPct
	}
	dist := atr * cfg.ATRMultiplier
	if dir == model.Buy {
		return entry - dist, entry + dist*cfg.RewardMultiplier
	}
	return entry + dist, entry - dist*cfg.RewardMultiplier
}

func joinReasons(parts []string) string {
	return strings.Join(parts, " | ")
}

func tail(bars []model.IndicatorBar, n int) []model.IndicatorBar {
	if n <= 0 || len(bars) <= n {
		return bars
	}
	return bars[len(bars)-n:]
}

func last(bars []model.IndicatorBar) model.IndicatorBar {
	return bars[len(bars)-1]
}
