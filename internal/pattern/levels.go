package pattern

import (
	"math"

	"GoldSentinel/internal/model"
)

// IdentifyLevels scans bars for pivot extrema. Bar i is a resistance when its high is strictly
// above every other high in [i-window, i+window], and a support when its low is strictly below
// every other low in the same range. Only bars with window <= i < len(bars)-window qualify, so the
// latest window bars never produce a level. A bar may be both.
func IdentifyLevels(bars []model.OHLCV, window int) []model.Level {
	if window <= 0 || len(bars) < 2*window+1 {
		return nil
	}
	var levels []model.Level
	for i := window; i < len(bars)-window; i++ {
		if dominatesHigh(bars, i, window) {
			levels = append(levels, model.Level{Kind: model.Resistance, Price: bars[i].High, BarIndex: i})
		}
		if dominatesLow(bars, i, window) {
			levels = append(levels, model.Level{Kind: model.Support, Price: bars[i].Low, BarIndex: i})
		}
	}
	return levels
}

func dominatesHigh(bars []model.OHLCV, i, window int) bool {
	for j := i - window; j <= i+window; j++ {
		if j != i && bars[j].High >= bars[i].High {
			return false
		}
	}
	return true
}

func dominatesLow(bars []model.OHLCV, i, window int) bool {
	for j := i - window; j <= i+window; j++ {
		if j != i && bars[j].Low <= bars[i].Low {
			return false
		}
	}
	return true
}

// NearbyLevels returns the supports and resistances lying strictly within tolerance of price.
func NearbyLevels(levels []model.Level, price, tolerance float64) (supports, resistances []model.Level) {
	for _, l := range levels {
		if math.Abs(l.Price-price) >= tolerance {
			continue
		}
		switch l.Kind {
		case model.Support:
			supports = append(supports, l)
		case model.Resistance:
			resistances = append(resistances, l)
		}
	}
	return supports, resistances
}
