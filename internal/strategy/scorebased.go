package strategy

import (
	"fmt"

	"GoldSentinel/internal/model"
)

// scoreBased adds sentiment, trend and RSI votes and trades when the tally clears a threshold.
type scoreBased struct {
	cfg Config
}

func (p *scoreBased) Name() string { return p.cfg.Name }

func (p *scoreBased) Evaluate(in Input) Decision {
	higher, entry := in.Frames.Higher, in.Frames.Entry
	if len(higher) == 0 || len(entry) == 0 {
		return skip(SkipNoData)
	}

	score := 0
	var reasons []string

	if p.cfg.UseSentiment && in.Sentiment != nil {
		switch in.Sentiment.Bias() {
		case 1:
			score++
			reasons = append(reasons, "COT: BULLISH (+1)")
		case -1:
			score--
			reasons = append(reasons, "COT: BEARISH (-1)")
		}
	}

	h := last(higher)
	if trend, ok := TrendOf(h); ok {
		switch trend {
		case model.TrendUp:
			score++
			reasons = append(reasons, "EMA: TREND UP (+1)")
		case model.TrendDown:
			score--
			reasons = append(reasons, "EMA: TREND DOWN (-1)")
		}
	}

	cur := last(entry)
	if rsi := cur.Ind.RSI; model.Defined(rsi) {
		switch {
		case rsi < p.cfg.ScoreRSILow:
			score++
			reasons = append(reasons, fmt.Sprintf("RSI: LOW(%.1f) (+1)", rsi))
		case rsi > p.cfg.ScoreRSIHigh:
			score--
			reasons = append(reasons, fmt.Sprintf("RSI: HIGH(%.1f) (-1)", rsi))
		}
	}

	var dir model.Direction
	switch {
	case score >= p.cfg.ScoreThreshold:
		dir = model.Buy
	case score <= -p.cfg.ScoreThreshold:
		dir = model.Sell
	default:
		return skip(SkipScore)
	}

	strength := abs(score)
	label := "[MEDIUM]"
	if strength >= 3 {
		label = "[STRONG]"
	}

	price := cur.Close
	sl, tp := stops(dir, price, h.Ind.ATR, p.cfg)
	return Decision{Signal: &model.Signal{
		Symbol:     in.Symbol,
		Direction:  dir,
		EntryPrice: price,
		StopLoss:   sl,
		TakeProfit: tp,
		Reason:     label + " | " + joinReasons(reasons),
		Confidence: strength,
		Timestamp:  cur.Time,
		Strategy:   p.cfg.Name,
	}}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
