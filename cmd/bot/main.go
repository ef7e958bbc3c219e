package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"GoldSentinel/internal/calculator"
	"GoldSentinel/internal/collector"
	"GoldSentinel/internal/config"
	"GoldSentinel/internal/cooldown"
	"GoldSentinel/internal/logger"
	"GoldSentinel/internal/metrics"
	"GoldSentinel/internal/notifier"
	"GoldSentinel/internal/recorder"
	"GoldSentinel/internal/scheduler"
	"GoldSentinel/internal/sentiment"
	"GoldSentinel/internal/strategy"
)

func main() {
	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logger.Init("goldsentinel", cfg.Log.Level)
	log.Info().Msg("GoldSentinel starting...")

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}

	// Context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Init recorder
	var rec recorder.Recorder
	settings := config.Layered{config.MapStore(cfg.Indicators)}
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
			// values stored in the database override the YAML indicators map
			settings = config.Layered{sr, config.MapStore(cfg.Indicators)}
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Init strategy
	stratCfg, err := strategy.FromAppConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("strategy config")
	}
	pipeline, err := strategy.New(stratCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init strategy")
	}
	log.Info().Str("strategy", pipeline.Name()).Str("preset", stratCfg.Name).Msg("strategy ready")

	// Init fetcher
	fetcher := newFetcher(cfg)
	log.Info().Str("source", fetcher.Name()).Str("symbol", cfg.DataSource.Symbol).Msg("data source ready")

	col := collector.NewCollector(fetcher, cfg.DataSource.Symbol)
	col.Frames = collector.FrameSetFor(stratCfg.Variant)
	col.Options = calculator.OptionsFromStore(settings)

	// Init cooldown tracker
	store, closeStore, err := cooldown.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("open cooldown store")
	}
	defer closeStore()
	tracker := cooldown.NewTracker(store, cooldown.WithLogger(log.Logger))

	var sent sentiment.Provider
	if cfg.Sentiment.Enabled {
		sent = sentiment.NewCOTAnalyzer(cfg.Sentiment.COTURL)
	}

	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)

	m := metrics.New()
	health := metrics.NewHealth()
	if cfg.Metrics.Addr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Addr, m, health); err != nil {
				log.Error().Err(err).Msg("metrics server")
			}
		}()
	}

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, cfg.DataSource.Symbol, cfg.Cooldown.Hours, scheduler.Deps{
		Frames:    col,
		Pipeline:  pipeline,
		Sentiment: sent,
		Tracker:   tracker,
		Recorder:  rec,
		Notifier:  tn,
		Metrics:   m,
		Health:    health,
	})
	if err := sched.Seed(ctx); err != nil {
		log.Warn().Err(err).Msg("restore last signal")
	}
	if err := sched.Register(cfg.Schedule.TickInterval); err != nil {
		log.Fatal().Err(err).Msg("register tick")
	}
	sched.Start()
	defer sched.Stop()

	// Start Telegram polling
	go tn.StartPolling(ctx, sched.HandleCommand)
	log.Info().Msg("telegram polling started")

	if os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, running a tick now")
		go sched.RunNow()
	}

	log.Info().Str("interval", cfg.Schedule.TickInterval).Msg("GoldSentinel is running. Press Ctrl+C to stop.")

	<-ctx.Done()
	log.Info().Msg("shutdown signal received, stopping...")
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
