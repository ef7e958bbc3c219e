package model

import (
	"math"
	"time"
)

// OutcomeKind is the terminal state of a simulated or tracked trade.
type OutcomeKind string

const (
	OutcomeWin        OutcomeKind = "WIN"
	OutcomeLoss       OutcomeKind = "LOSS"
	OutcomeTimedClose OutcomeKind = "TIMED_CLOSE"
)

// TradeOutcome is the resolution of one signal.
type TradeOutcome struct {
	Signal    *Signal
	ExitPrice float64
	ExitTime  time.Time
	Kind      OutcomeKind
	PnL       float64
	BarsHeld  int
}

// Stats aggregates a list of outcomes.
type Stats struct {
	Total       int
	Wins        int
	Losses      int
	TimedCloses int
	WinRate     float64 // percent
	TotalPnL    float64
}

// ActiveTrade is the single open position tracked between ticks.
type ActiveTrade struct {
	SignalID  string    `json:"signal_id,omitempty"`
	Symbol    string    `json:"symbol"`
	Direction Direction `json:"direction"`
	Entry     float64   `json:"entry"`
	SL        float64   `json:"sl"`
	TP        float64   `json:"tp"`
	StartTime float64   `json:"start_time"`
}

// CooldownState is persisted across restarts. Times are fractional Unix seconds.
type CooldownState struct {
	LastLossTime float64      `json:"last_loss_time"`
	ActiveTrade  *ActiveTrade `json:"active_trade"`
}

// EpochSeconds converts t to fractional Unix seconds, rounded up to the microsecond.
func EpochSeconds(t time.Time) float64 {
	us := t.UnixMicro()
	if t.After(time.UnixMicro(us)) {
		us++
	}
	return float64(us) / 1e6
}

// EpochTime converts fractional Unix seconds back to a time at microsecond precision.
func EpochTime(sec float64) time.Time {
	return time.UnixMicro(int64(math.Round(sec * 1e6)))
}

// Sentiment is the fundamental bias reported by a sentiment provider.
type Sentiment struct {
	Label        string
	Score        int
	COTIndex     float64
	NetChangePct float64
	Long         int64
	Short        int64
	Details      string
}

// Sentiment labels.
const (
	SentimentBullish         = "BULLISH"
	SentimentBearish         = "BEARISH"
	SentimentReversalBullish = "REVERSAL_BULLISH"
	SentimentReversalBearish = "REVERSAL_BEARISH"
	SentimentNeutral         = "NEUTRAL"
)

// Bias maps the label to +1 (bullish), -1 (bearish) or 0.
func (s *Sentiment) Bias() int {
	if s == nil {
		return 0
	}
	switch s.Label {
	case SentimentBullish, SentimentReversalBullish:
		return 1
	case SentimentBearish, SentimentReversalBearish:
		return -1
	}
	return 0
}
