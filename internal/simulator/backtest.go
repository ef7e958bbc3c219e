package simulator

import (
	"context"
	"sort"
	"time"

	"GoldSentinel/internal/model"
	"GoldSentinel/internal/strategy"
)

// Config controls the replay loop.
type Config struct {
	Start        int // first entry bar evaluated; earlier bars only warm up indicators
	Horizon      int // future bars walked per signal
	CooldownBars int // entry bars skipped after a loss
}

// DefaultConfig matches a 15-minute entry frame: 29 bars (about 7h) to resolve and 16 bars (4h) of cooldown.
func DefaultConfig() Config {
	return Config{Start: 200, Horizon: 29, CooldownBars: 16}
}

// History is the full indicator-augmented history replayed by a backtest.
// Bars are stamped at their open; the timeframes give each frame's bar length.
// A zero timeframe treats its bars as closed the moment they are stamped.
type History struct {
	Symbol    string
	Frames    strategy.Frames
	HigherTF  model.Timeframe
	ConfirmTF model.Timeframe
	EntryTF   model.Timeframe
	Sentiment *model.Sentiment
}

// Report is the result of one replay.
type Report struct {
	Scenario string
	Strategy string
	Outcomes []model.TradeOutcome
	Stats    model.Stats
	Skips    map[strategy.SkipReason]int
	From, To time.Time
}

// Backtest replays history through a pipeline.
type Backtest struct {
	Pipeline strategy.Pipeline
	Config   Config
}

// Run walks the entry frame bar by bar. Higher and confirm frames are cut to bars that have
// closed by the time the current entry bar closes, so a still-forming bar is never evaluated.
func (b *Backtest) Run(ctx context.Context, h History) (Report, error) {
	entry := h.Frames.Entry
	rep := Report{
		Strategy: b.Pipeline.Name(),
		Skips:    make(map[strategy.SkipReason]int),
	}

	start := max(b.Config.Start, 2)
	if start < len(entry) {
		rep.From = entry[start].Time
		rep.To = entry[len(entry)-1].Time
	}

	cooldownUntil := 0
	for i := start; i < len(entry); i++ {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return Report{}, err
			}
		}
		if i < cooldownUntil {
			continue
		}
		closeAt := entry[i].Time.Add(h.EntryTF.Duration())
		d := b.Pipeline.Evaluate(strategy.Input{
			Symbol: h.Symbol,
			Frames: strategy.Frames{
				Higher:  closedBy(h.Frames.Higher, h.HigherTF, closeAt),
				Confirm: closedBy(h.Frames.Confirm, h.ConfirmTF, closeAt),
				Entry:   entry[:i+1],
			},
			Sentiment: h.Sentiment,
		})
		if !d.Emitted() {
			rep.Skips[d.Skip]++
			continue
		}
		out := Resolve(d.Signal, model.Bars(entry[i+1:]), b.Config.Horizon)
		rep.Outcomes = append(rep.Outcomes, out)
		if out.Kind == model.OutcomeLoss {
			cooldownUntil = i + b.Config.CooldownBars
		}
	}

	rep.Stats = Summarize(rep.Outcomes)
	return rep, nil
}

// closedBy returns the prefix of bars whose close (open + tf) is at or before t.
func closedBy(bars []model.IndicatorBar, tf model.Timeframe, t time.Time) []model.IndicatorBar {
	d := tf.Duration()
	n := sort.Search(len(bars), func(i int) bool { return bars[i].Time.Add(d).After(t) })
	return bars[:n]
}
