package calculator

import (
	"math"

	"GoldSentinel/internal/model"
)

// DefaultFibLookback is the rolling window used for retracement bands.
const DefaultFibLookback = 100

// RollingRange scans the trailing lookback bars ending at each index and returns the rolling
// high and low. Positions before lookback-1 are NaN.
func RollingRange(bars []model.OHLCV, lookback int) (highs, lows []float64) {
	highs = nanSlice(len(bars))
	lows = nanSlice(len(bars))
	if lookback <= 0 {
		return highs, lows
	}
	for i := lookback - 1; i < len(bars); i++ {
		high := math.Inf(-1)
		low := math.Inf(1)
		for j := i - lookback + 1; j <= i; j++ {
			if bars[j].High > high {
				high = bars[j].High
			}
			if bars[j].Low < low {
				low = bars[j].Low
			}
		}
		highs[i] = high
		lows[i] = low
	}
	return highs, lows
}

// FibonacciBands interpolates model.FibRatios between a low and a high.
func FibonacciBands(low, high float64) [7]float64 {
	var out [7]float64
	diff := high - low
	for i, r := range model.FibRatios {
		out[i] = low + diff*r
	}
	// keep the endpoints exact
	out[0] = low
	out[len(out)-1] = high
	return out
}
