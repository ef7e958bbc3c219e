package model

import "time"

// Direction is the side of a trade signal.
type Direction string

const (
	Buy  Direction = "BUY"
	Sell Direction = "SELL"
)

// Trend is the higher-timeframe market direction.
type Trend string

const (
	TrendUp      Trend = "UP"
	TrendDown    Trend = "DOWN"
	TrendNeutral Trend = "NEUTRAL"
)

// LevelKind distinguishes support from resistance.
type LevelKind string

const (
	Support    LevelKind = "SUPPORT"
	Resistance LevelKind = "RESISTANCE"
)

// Level is a pivot extremum that dominates its neighbourhood.
type Level struct {
	Kind     LevelKind
	Price    float64
	BarIndex int
}

// PatternTag labels a candlestick or chart formation.
type PatternTag string

const (
	Hammer           PatternTag = "HAMMER"
	ShootingStar     PatternTag = "SHOOTING_STAR"
	BullishEngulfing PatternTag = "BULLISH_ENGULFING"
	BearishEngulfing PatternTag = "BEARISH_ENGULFING"
	MorningStar      PatternTag = "MORNING_STAR"
	EveningStar      PatternTag = "EVENING_STAR"
	DoubleTop        PatternTag = "DOUBLE_TOP"
	DoubleBottom     PatternTag = "DOUBLE_BOTTOM"
)

// HasTag reports whether tags contains any of want.
func HasTag(tags []PatternTag, want ...PatternTag) bool {
	for _, t := range tags {
		for _, w := range want {
			if t == w {
				return true
			}
		}
	}
	return false
}

// Signal is the output of the decision pipeline.
type Signal struct {
	ID         string
	Symbol     string
	Direction  Direction
	EntryPrice float64
	StopLoss   float64
	TakeProfit float64
	Reason     string
	Confidence int
	Timestamp  time.Time
	Strategy   string
	Patterns   []PatternTag
}

// StopDistance returns the absolute distance between entry and stop-loss.
func (s *Signal) StopDistance() float64 {
	d := s.EntryPrice - s.StopLoss
	if d < 0 {
		return -d
	}
	return d
}

// TargetDistance returns the absolute distance between entry and take-profit.
func (s *Signal) TargetDistance() float64 {
	d := s.TakeProfit - s.EntryPrice
	if d < 0 {
		return -d
	}
	return d
}
