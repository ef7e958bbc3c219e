package simulator

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"GoldSentinel/internal/strategy"
)

// Scenario is one named parameter combination.
type Scenario struct {
	Name     string
	Strategy strategy.Config
	Backtest Config
	// Pipeline, when set, is used instead of building one from Strategy.
	Pipeline strategy.Pipeline
}

// RunGrid replays every scenario over the same history in parallel and returns the reports
// ordered by total P&L, best first. History is shared read-only.
func RunGrid(ctx context.Context, h History, scenarios []Scenario) ([]Report, error) {
	reports := make([]Report, len(scenarios))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, sc := range scenarios {
		g.Go(func() error {
			p := sc.Pipeline
			if p == nil {
				var err error
				if p, err = strategy.New(sc.Strategy); err != nil {
					return fmt.Errorf("scenario %s: %w", sc.Name, err)
				}
			}
			bt := &Backtest{Pipeline: p, Config: sc.Backtest}
			rep, err := bt.Run(ctx, h)
			if err != nil {
				return fmt.Errorf("scenario %s: %w", sc.Name, err)
			}
			rep.Scenario = sc.Name
			reports[i] = rep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(reports, func(a, b int) bool {
		return reports[a].Stats.TotalPnL > reports[b].Stats.TotalPnL
	})
	return reports, nil
}
