package calculator

import (
	talib "github.com/markcheno/go-talib"

	"GoldSentinel/internal/model"
)

// ATR computes Wilder's average true range. The first period positions are NaN;
// fewer than period+1 bars yields an all-NaN series.
func ATR(bars []model.OHLCV, period int) []float64 {
	out := nanSlice(len(bars))
	if period <= 0 || len(bars) <= period {
		return out
	}
	highs := make([]float64, len(bars))
	lows := make([]float64, len(bars))
	closes := make([]float64, len(bars))
	for i, b := range bars {
		highs[i], lows[i], closes[i] = b.High, b.Low, b.Close
	}
	vals := talib.Atr(highs, lows, closes, period)
	for i := period; i < len(vals) && i < len(out); i++ {
		out[i] = vals[i]
	}
	return out
}
