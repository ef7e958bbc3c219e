package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"

	"GoldSentinel/internal/calculator"
	"GoldSentinel/internal/collector"
	"GoldSentinel/internal/config"
	"GoldSentinel/internal/logger"
	"GoldSentinel/internal/recorder"
	"GoldSentinel/internal/simulator"
	"GoldSentinel/internal/strategy"
)

func main() {
	var (
		cfgPath   = flag.String("config", "configs/config.yaml", "config file")
		provider  = flag.String("provider", "", "data provider override: yahoo, rest or mock")
		symbol    = flag.String("symbol", "", "symbol override")
		limit     = flag.Int("limit", 5000, "bars requested per timeframe")
		presets   = flag.String("presets", strategy.PresetThreeStage+","+strategy.PresetThreeStageMTF, "comma-separated strategy presets to compare")
		start     = flag.Int("start", simulator.DefaultConfig().Start, "first entry bar evaluated")
		horizon   = flag.Int("horizon", simulator.DefaultConfig().Horizon, "bars walked per signal")
		coolBars  = flag.Int("cooldown-bars", simulator.DefaultConfig().CooldownBars, "entry bars skipped after a loss")
		persist   = flag.Bool("persist", false, "store run summaries in the SQLite database")
		showTrade = flag.Bool("trades", false, "list every trade of the best scenario")
	)
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger.Console("goldsentinel-backtest", cfg.Log.Level)
	if *provider != "" {
		cfg.DataSource.Provider = *provider
	}
	if *symbol != "" {
		cfg.DataSource.Symbol = *symbol
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	btCfg := simulator.Config{Start: *start, Horizon: *horizon, CooldownBars: *coolBars}
	scenarios, variant, err := buildScenarios(cfg, strings.Split(*presets, ","), btCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("build scenarios")
	}

	col := collector.NewCollector(newFetcher(cfg), cfg.DataSource.Symbol)
	col.Frames = collector.FrameSetFor(variant)
	col.Frames.Limit = *limit
	col.Options = calculator.OptionsFromStore(config.MapStore(cfg.Indicators))

	log.Info().Str("symbol", cfg.DataSource.Symbol).Str("source", col.Fetcher.Name()).Int("limit", *limit).Msg("loading history")
	frames, err := col.Collect(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("load history")
	}
	log.Info().Int("higher", len(frames.Higher)).Int("confirm", len(frames.Confirm)).Int("entry", len(frames.Entry)).Msg("history loaded")

	hist := simulator.History{
		Symbol:    cfg.DataSource.Symbol,
		Frames:    frames,
		HigherTF:  col.Frames.Higher,
		ConfirmTF: col.Frames.Confirm,
		EntryTF:   col.Frames.Entry,
	}
	reports, err := simulator.RunGrid(ctx, hist, scenarios)
	if err != nil {
		log.Fatal().Err(err).Msg("run scenarios")
	}

	printSummary(os.Stdout, cfg.DataSource.Symbol, reports)
	if *showTrade && len(reports) > 0 {
		printTrades(os.Stdout, reports[0])
	}

	if *persist {
		rec, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Fatal().Err(err).Msg("open recorder")
		}
		defer rec.Close()
		for _, r := range reports {
			if err := rec.RecordBacktest(ctx, r); err != nil {
				log.Error().Err(err).Str("scenario", r.Scenario).Msg("persist run")
			}
		}
		log.Info().Int("runs", len(reports)).Str("path", cfg.Database.SQLitePath).Msg("runs persisted")
	}
}

// buildScenarios turns preset names into scenarios, applying the config's strategy overrides to each.
// All presets must share a variant since they replay the same frames.
func buildScenarios(cfg *config.Config, names []string, bt simulator.Config) ([]simulator.Scenario, strategy.Variant, error) {
	var (
		out     []simulator.Scenario
		variant strategy.Variant
	)
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		c := *cfg
		c.Strategy.Preset = name
		c.Strategy.MultiTFVeto = nil // each preset decides the veto
		sc, err := strategy.FromAppConfig(&c)
		if err != nil {
			return nil, "", fmt.Errorf("preset %s: %w", name, err)
		}
		if variant != "" && sc.Variant != variant {
			return nil, "", fmt.Errorf("preset %s uses variant %s, expected %s", name, sc.Variant, variant)
		}
		variant = sc.Variant
		out = append(out, simulator.Scenario{Name: name, Strategy: sc, Backtest: bt})
	}
	if len(out) == 0 {
		return nil, "", fmt.Errorf("no presets given, choose from %s", strings.Join(strategy.Presets(), ", "))
	}
	return out, variant, nil
}

func printSummary(w io.Writer, symbol string, reports []simulator.Report) {
	const width = 78
	line := strings.Repeat("═", width)
	fmt.Fprintf(w, "╔%s╗\n", line)
	title := fmt.Sprintf(" BACKTEST %s", symbol)
	if len(reports) > 0 && !reports[0].From.IsZero() {
		title += fmt.Sprintf("  %s → %s", reports[0].From.Format("2006-01-02"), reports[0].To.Format("2006-01-02"))
	}
	fmt.Fprintf(w, "║%-*s║\n", width, title)
	fmt.Fprintf(w, "╠%s╣\n", line)
	fmt.Fprintf(w, "║ %-4s %-22s %7s %6s %6s %6s %9s %11s ║\n", "#", "scenario", "trades", "wins", "losses", "timed", "win rate", "P&L")
	for i, r := range reports {
		st := r.Stats
		fmt.Fprintf(w, "║ %-4d %-22s %7d %6d %6d %6d %8.1f%% %+11.2f ║\n",
			i+1, r.Scenario, st.Total, st.Wins, st.Losses, st.TimedCloses, st.WinRate, st.TotalPnL)
	}
	fmt.Fprintf(w, "╚%s╝\n", line)

	for _, r := range reports {
		reasons := make([]string, 0, len(r.Skips))
		for reason := range r.Skips {
			reasons = append(reasons, string(reason))
		}
		sort.Strings(reasons)
		parts := make([]string, len(reasons))
		for i, reason := range reasons {
			parts[i] = fmt.Sprintf("%s=%d", reason, r.Skips[strategy.SkipReason(reason)])
		}
		fmt.Fprintf(w, "%s skips: %s\n", r.Scenario, strings.Join(parts, " "))
	}
}

func printTrades(w io.Writer, r simulator.Report) {
	fmt.Fprintf(w, "\nTrades of %s:\n", r.Scenario)
	for _, o := range r.Outcomes {
		s := o.Signal
		fmt.Fprintf(w, "%s %-4s entry %.2f sl %.2f tp %.2f -> %-11s exit %.2f pnl %+.2f (%d bars)\n",
			s.Timestamp.Format("2006-01-02 15:04"), s.Direction, s.EntryPrice, s.StopLoss, s.TakeProfit,
			o.Kind, o.ExitPrice, o.PnL, o.BarsHeld)
	}
}

func newFetcher(cfg *config.Config) collector.Fetcher {
	switch cfg.DataSource.Provider {
	case "rest":
		return collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	case "mock":
		return &collector.MockFetcher{Price: 2000}
	default:
		return collector.NewYahooFetcher(cfg.Proxy)
	}
}
