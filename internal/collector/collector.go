package collector

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"GoldSentinel/internal/calculator"
	"GoldSentinel/internal/model"
	"GoldSentinel/internal/strategy"
)

// MockFetcher returns controllable fixed data for development and testing.
// Data is served per timeframe when present; otherwise a deterministic wave around Price is generated.
type MockFetcher struct {
	Price float64
	Data  map[model.Timeframe][]model.OHLCV
	Err   error
	Now   time.Time
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchBars(_ context.Context, _ string, tf model.Timeframe, limit int) ([]model.OHLCV, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if bars, ok := m.Data[tf]; ok {
		return Normalize(bars, time.Time{}, limit), nil
	}
	now := m.Now
	if now.IsZero() {
		now = time.Now()
	}
	return generateMockBars(m.Price, tf, limit, now), nil
}

func generateMockBars(basePrice float64, tf model.Timeframe, count int, now time.Time) []model.OHLCV {
	step := tf.Duration()
	if step == 0 {
		step = time.Hour
	}
	end := now.UTC().Truncate(step)
	bars := make([]model.OHLCV, count)
	prev := basePrice
	for i := 0; i < count; i++ {
		p := basePrice * (1 + 0.004*math.Sin(float64(i)/9) + float64(i-count/2)*0.00005)
		bars[i] = model.OHLCV{
			Time:   end.Add(-time.Duration(count-1-i) * step),
			Open:   prev,
			High:   math.Max(prev, p) * 1.0008,
			Low:    math.Min(prev, p) * 0.9992,
			Close:  p,
			Volume: 1000,
		}
		prev = p
	}
	return bars
}

// FrameSet names the timeframes feeding each pipeline role and how many bars to request.
type FrameSet struct {
	Higher  model.Timeframe
	Confirm model.Timeframe
	Entry   model.Timeframe
	Limit   int
}

// FrameSetFor returns the timeframes a strategy variant was tuned on.
func FrameSetFor(v strategy.Variant) FrameSet {
	if v == strategy.VariantScoreBased {
		return FrameSet{Higher: model.M15, Confirm: model.M15, Entry: model.M5, Limit: 300}
	}
	return FrameSet{Higher: model.H4, Confirm: model.H1, Entry: model.M15, Limit: 300}
}

// Collector orchestrates data fetching and indicator computation.
type Collector struct {
	Fetcher Fetcher
	Symbol  string
	Frames  FrameSet
	Options calculator.Options
}

// NewCollector creates a new Collector with the three-stage frame set and default indicator options.
func NewCollector(fetcher Fetcher, symbol string) *Collector {
	return &Collector{
		Fetcher: fetcher,
		Symbol:  symbol,
		Frames:  FrameSetFor(strategy.VariantThreeStage),
		Options: calculator.DefaultOptions(),
	}
}

// Collect fetches the three frames concurrently and computes indicators on each.
// An empty entry or higher frame is reported as ErrNoData.
func (c *Collector) Collect(ctx context.Context) (strategy.Frames, error) {
	var higher, confirm, entry []model.OHLCV

	g, gctx := errgroup.WithContext(ctx)
	fetch := func(tf model.Timeframe, dst *[]model.OHLCV) {
		g.Go(func() error {
			bars, err := c.Fetcher.FetchBars(gctx, c.Symbol, tf, c.Frames.Limit)
			if err != nil {
				return fmt.Errorf("fetch %s bars: %w", tf, err)
			}
			*dst = bars
			return nil
		})
	}
	fetch(c.Frames.Higher, &higher)
	fetch(c.Frames.Entry, &entry)
	if c.Frames.Confirm != "" {
		fetch(c.Frames.Confirm, &confirm)
	}
	if err := g.Wait(); err != nil {
		return strategy.Frames{}, err
	}
	if len(higher) == 0 || len(entry) == 0 {
		return strategy.Frames{}, fmt.Errorf("collect %s: %w", c.Symbol, ErrNoData)
	}

	return strategy.Frames{
		Higher:  calculator.Compute(higher, c.Options),
		Confirm: calculator.Compute(confirm, c.Options),
		Entry:   calculator.Compute(entry, c.Options),
	}, nil
}
