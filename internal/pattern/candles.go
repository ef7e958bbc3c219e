package pattern

import (
	"math"

	"GoldSentinel/internal/model"
)

const (
	starLongBody  = 0.5 // prev2 body share of its range
	starSmallBody = 0.4 // prev body relative to prev2 body
)

// BuyCandles qualify a BUY at the confirmation stage.
var BuyCandles = []model.PatternTag{model.Hammer, model.BullishEngulfing, model.MorningStar}

// SellCandles qualify a SELL at the confirmation stage.
var SellCandles = []model.PatternTag{model.ShootingStar, model.BearishEngulfing, model.EveningStar}

// CheckCandlestickPatterns tags the reversal formations completed by bar, given the two bars
// before it. A bar with zero range yields no tags.
func CheckCandlestickPatterns(bar, prev, prev2 model.OHLCV) []model.PatternTag {
	rng := bar.High - bar.Low
	if rng <= 0 {
		return nil
	}
	body := math.Abs(bar.Close - bar.Open)
	upper := bar.High - math.Max(bar.Open, bar.Close)
	lower := math.Min(bar.Open, bar.Close) - bar.Low

	var tags []model.PatternTag
	if lower >= 2*body && upper < body {
		tags = append(tags, model.Hammer)
	}
	if upper >= 2*body && lower < body {
		tags = append(tags, model.ShootingStar)
	}

	if prev.Bearish() && bar.Bullish() && bar.Close > prev.Open && bar.Open < prev.Close {
		tags = append(tags, model.BullishEngulfing)
	}
	if prev.Bullish() && bar.Bearish() && bar.Close < prev.Open && bar.Open > prev.Close {
		tags = append(tags, model.BearishEngulfing)
	}

	if isLongBody(prev2) && smallerBody(prev, prev2) {
		mid := (prev2.Open + prev2.Close) / 2
		if prev2.Bearish() && bar.Bullish() && bar.Close > mid {
			tags = append(tags, model.MorningStar)
		}
		if prev2.Bullish() && bar.Bearish() && bar.Close < mid {
			tags = append(tags, model.EveningStar)
		}
	}
	return tags
}

// PatternsAt evaluates CheckCandlestickPatterns for bars[i]. It needs two preceding bars.
func PatternsAt(bars []model.OHLCV, i int) []model.PatternTag {
	if i < 2 || i >= len(bars) {
		return nil
	}
	return CheckCandlestickPatterns(bars[i], bars[i-1], bars[i-2])
}

func isLongBody(b model.OHLCV) bool {
	rng := b.High - b.Low
	if rng <= 0 {
		return false
	}
	return math.Abs(b.Close-b.Open) >= starLongBody*rng
}

func smallerBody(prev, prev2 model.OHLCV) bool {
	return math.Abs(prev.Close-prev.Open) < starSmallBody*math.Abs(prev2.Close-prev2.Open)
}
