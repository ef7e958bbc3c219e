package strategy

import (
	"fmt"
	"math"

	"GoldSentinel/internal/model"
	"GoldSentinel/internal/pattern"
)

// macroLookback bounds the entry bars scanned for double tops and bottoms. The second pivot
// must be among the last 20 bars, so only the previous pivot can fall outside the window.
const macroLookback = 100

// threeStage gates a signal through context, advisory pattern and confirmation stages.
type threeStage struct {
	cfg Config
}

func (p *threeStage) Name() string { return p.cfg.Name }

func (p *threeStage) Evaluate(in Input) Decision {
	higher, entry := in.Frames.Higher, in.Frames.Entry
	if len(higher) == 0 || len(entry) < 3 {
		return skip(SkipNoData)
	}

	// Stage 1: context on the higher frame.
	trend, ok := TrendOf(last(higher))
	if !ok {
		return skip(SkipNoTrend)
	}
	cur := last(entry)
	price := cur.Close
	levels := pattern.IdentifyLevels(model.Bars(tail(higher, p.cfg.LevelLookback)), p.cfg.LevelWindow)
	supports, resistances := pattern.NearbyLevels(levels, price, p.cfg.LevelTolerance)

	var dir model.Direction
	aligned := true
	switch {
	case trend == model.TrendUp && len(supports) > 0:
		dir = model.Buy
	case trend == model.TrendDown && len(resistances) > 0:
		dir = model.Sell
	case len(supports) > 0:
		dir, aligned = model.Buy, false
	case len(resistances) > 0:
		dir, aligned = model.Sell, false
	default:
		return skip(SkipNoLevel)
	}

	reasons := []string{fmt.Sprintf("trend %s", trend)}
	if dir == model.Buy {
		reasons = append(reasons, fmt.Sprintf("support %.2f", nearest(supports, price).Price))
	} else {
		reasons = append(reasons, fmt.Sprintf("resistance %.2f", nearest(resistances, price).Price))
	}
	if !aligned {
		reasons = append(reasons, "reversal")
	}

	// Stage 2: macro patterns annotate, never gate.
	macro := macroTags(entry)

	// Stage 3: confirmation on the entry frame.
	prev := entry[len(entry)-2]
	candles := pattern.CheckCandlestickPatterns(cur.OHLCV, prev.OHLCV, entry[len(entry)-3].OHLCV)
	rsi := model.ValueOr(cur.Ind.RSI, 50)
	hist := model.ValueOr(cur.Ind.MACDHist, 0)
	prevHist := model.ValueOr(prev.Ind.MACDHist, 0)

	var qualifying []model.PatternTag
	var rsiOK, momentum bool
	if dir == model.Buy {
		qualifying = pattern.BuyCandles
		rsiOK = rsi < p.cfg.RSIBuyMax
		momentum = hist > prevHist || hist > 0
	} else {
		qualifying = pattern.SellCandles
		rsiOK = rsi > p.cfg.RSISellMin
		momentum = hist < prevHist || hist < 0
	}

	if !model.HasTag(candles, qualifying...) {
		return skip(SkipNoCandle)
	}
	if !rsiOK {
		return skip(SkipRSI)
	}
	if p.cfg.MultiTFVeto && !coloursAgree(dir, in.Frames) {
		return skip(SkipVeto)
	}
	if !momentum {
		return skip(SkipMomentum)
	}

	var tags []model.PatternTag
	for _, t := range candles {
		if model.HasTag(qualifying, t) {
			tags = append(tags, t)
			reasons = append(reasons, string(t))
		}
	}
	for _, t := range macro {
		if opposes(dir, t) {
			reasons = append(reasons, "against "+string(t))
			continue
		}
		tags = append(tags, t)
		reasons = append(reasons, string(t))
	}
	reasons = append(reasons, fmt.Sprintf("RSI %.1f", rsi), fmt.Sprintf("MACD hist %.3f", hist))

	confidence := 0
	if aligned {
		confidence++
	}
	if (dir == model.Buy && hist > 0) || (dir == model.Sell && hist < 0) {
		confidence++
	}
	if p.cfg.UseSentiment && in.Sentiment != nil {
		bias := in.Sentiment.Bias()
		if (dir == model.Buy && bias > 0) || (dir == model.Sell && bias < 0) {
			confidence++
			reasons = append(reasons, "COT "+in.Sentiment.Label)
		}
	}

	sl, tp := stops(dir, price, cur.Ind.ATR, p.cfg)
	return Decision{Signal: &model.Signal{
		Symbol:     in.Symbol,
		Direction:  dir,
		EntryPrice: price,
		StopLoss:   sl,
		TakeProfit: tp,
		Reason:     joinReasons(reasons),
		Confidence: confidence,
		Timestamp:  cur.Time,
		Strategy:   p.cfg.Name,
		Patterns:   tags,
	}}
}

// coloursAgree requires the last higher and confirm candles to close in the direction of dir.
func coloursAgree(dir model.Direction, f Frames) bool {
	if len(f.Higher) == 0 || len(f.Confirm) == 0 {
		return false
	}
	h, c := last(f.Higher), last(f.Confirm)
	if dir == model.Buy {
		return h.Bullish() && c.Bullish()
	}
	return h.Bearish() && c.Bearish()
}

// macroTags scans the trailing macroLookback entry bars for chart formations.
func macroTags(entry []model.IndicatorBar) []model.PatternTag {
	return pattern.DetectPatterns(model.Bars(tail(entry, macroLookback)))
}

// opposes reports a chart formation that points against dir.
func opposes(dir model.Direction, t model.PatternTag) bool {
	return (dir == model.Buy && t == model.DoubleTop) || (dir == model.Sell && t == model.DoubleBottom)
}

// nearest returns the level closest to price. levels must not be empty.
func nearest(levels []model.Level, price float64) model.Level {
	best := levels[0]
	for _, l := range levels[1:] {
		if math.Abs(l.Price-price) < math.Abs(best.Price-price) {
			best = l
		}
	}
	return best
}
