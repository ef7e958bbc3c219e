package model

import "math"

// FibRatios are the retracement ratios carried in IndicatorSet.Fib, low to high.
var FibRatios = [7]float64{0, 0.236, 0.382, 0.5, 0.618, 0.786, 1.0}

// IndicatorSet holds the derived columns of one bar.
// A field is NaN until enough preceding bars exist; use Defined before reading it.
type IndicatorSet struct {
	EMAFast    float64
	EMASlow    float64
	RSI        float64
	MACD       float64
	MACDSignal float64
	MACDHist   float64
	BBLower    float64
	BBMiddle   float64
	BBUpper    float64
	ATR        float64
	Fib        [7]float64
}

// EmptyIndicatorSet returns a set with every field undefined.
func EmptyIndicatorSet() IndicatorSet {
	nan := math.NaN()
	s := IndicatorSet{
		EMAFast: nan, EMASlow: nan, RSI: nan,
		MACD: nan, MACDSignal: nan, MACDHist: nan,
		BBLower: nan, BBMiddle: nan, BBUpper: nan,
		ATR: nan,
	}
	for i := range s.Fib {
		s.Fib[i] = nan
	}
	return s
}

// IndicatorBar is a bar together with its derived indicator columns.
type IndicatorBar struct {
	OHLCV
	Ind IndicatorSet
}

// Defined reports whether an indicator value is present.
func Defined(v float64) bool { return !math.IsNaN(v) }

// ValueOr returns v, or def when v is undefined.
func ValueOr(v, def float64) float64 {
	if math.IsNaN(v) {
		return def
	}
	return v
}

// Bars strips indicator columns, returning the raw bars.
func Bars(in []IndicatorBar) []OHLCV {
	out := make([]OHLCV, len(in))
	for i, b := range in {
		out[i] = b.OHLCV
	}
	return out
}
