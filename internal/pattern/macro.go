package pattern

import (
	"math"

	"GoldSentinel/internal/model"
)

const (
	macroWindow    = 3
	macroTolerance = 0.001 // 0.1%
	macroRecent    = 20
)

// DetectPatterns looks for double tops and bottoms among fine-grained pivots.
// The two latest pivots of one kind must sit within 0.1% of each other, and the second must
// fall within the last 20 bars.
func DetectPatterns(bars []model.OHLCV) []model.PatternTag {
	levels := IdentifyLevels(bars, macroWindow)
	if len(levels) < 2 {
		return nil
	}
	var supports, resistances []model.Level
	for _, l := range levels {
		if l.Kind == model.Support {
			supports = append(supports, l)
		} else {
			resistances = append(resistances, l)
		}
	}

	var tags []model.PatternTag
	if isDouble(supports, len(bars)) {
		tags = append(tags, model.DoubleBottom)
	}
	if isDouble(resistances, len(bars)) {
		tags = append(tags, model.DoubleTop)
	}
	return tags
}

func isDouble(pivots []model.Level, n int) bool {
	if len(pivots) < 2 {
		return false
	}
	first, second := pivots[len(pivots)-2], pivots[len(pivots)-1]
	if first.Price == 0 {
		return false
	}
	if math.Abs(second.Price-first.Price)/math.Abs(first.Price) > macroTolerance {
		return false
	}
	return second.BarIndex >= n-macroRecent
}
