package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"GoldSentinel/internal/cooldown"
	"GoldSentinel/internal/metrics"
	"GoldSentinel/internal/model"
	"GoldSentinel/internal/notifier"
	"GoldSentinel/internal/recorder"
	"GoldSentinel/internal/risk"
	"GoldSentinel/internal/sentiment"
	"GoldSentinel/internal/strategy"
)

const sendRetries = 3

// Skip reasons the tick adds on top of strategy.SkipReason.
const (
	skipCooldown  = "cooldown"
	skipTradeOpen = "trade_open"
	skipDuplicate = "duplicate"
)

// FrameSource produces the indicator frames a pipeline evaluates.
type FrameSource interface {
	Collect(ctx context.Context) (strategy.Frames, error)
}

// Memo is what one tick remembers for the next, used to drop repeated signals.
type Memo struct {
	LastSignalTime time.Time
	LastDirection  model.Direction
}

// Deps wires the scheduler's collaborators. Sentiment may be nil.
type Deps struct {
	Frames    FrameSource
	Pipeline  strategy.Pipeline
	Sentiment sentiment.Provider
	Tracker   *cooldown.Tracker
	Recorder  recorder.Recorder
	Notifier  notifier.Notifier
	Metrics   *metrics.Metrics
	Health    *metrics.Health
}

// Scheduler runs the live signal tick on a cron spec.
type Scheduler struct {
	Deps
	Cron          *cron.Cron
	Symbol        string
	CooldownHours float64
	Account       risk.Params
	Ctx           context.Context

	now  func() time.Time
	mu   sync.Mutex
	memo Memo
}

// NewScheduler creates a new Scheduler. Overlapping runs of the tick are skipped.
func NewScheduler(ctx context.Context, symbol string, cooldownHours float64, d Deps) *Scheduler {
	if d.Metrics == nil {
		d.Metrics = metrics.New()
	}
	if d.Health == nil {
		d.Health = metrics.NewHealth()
	}
	if d.Recorder == nil {
		d.Recorder = recorder.NewNoopRecorder()
	}
	cl := cronLogger{log.Logger}
	return &Scheduler{
		Deps:          d,
		Cron:          cron.New(cron.WithSeconds(), cron.WithLogger(cl), cron.WithChain(cron.SkipIfStillRunning(cl))),
		Symbol:        symbol,
		CooldownHours: cooldownHours,
		Account:       risk.DefaultParams(),
		Ctx:           ctx,
		now:           time.Now,
	}
}

// Register schedules the tick.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.RunNow); err != nil {
		return fmt.Errorf("register tick %q: %w", spec, err)
	}
	return nil
}

// Seed restores the duplicate memo from the newest recorded signal.
func (s *Scheduler) Seed(ctx context.Context) error {
	last, err := s.Recorder.LastSignal(ctx, s.Symbol)
	if err != nil {
		return err
	}
	if last != nil {
		s.mu.Lock()
		s.memo = Memo{LastSignalTime: last.Timestamp, LastDirection: last.Direction}
		s.mu.Unlock()
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running tick.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

// RunNow executes one tick immediately.
func (s *Scheduler) RunNow() {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := s.now()
	memo, err := s.Tick(s.Ctx, s.memo)
	s.memo = memo
	s.Metrics.TickDuration.Observe(time.Since(start).Seconds())
	s.Health.RecordTick(start, err)
	if err != nil {
		log.Error().Err(err).Msg("tick failed")
	}
}

// Tick runs one pass of the live loop and returns the memo for the next pass.
// Collaborator failures abort the tick and are returned; nothing is retried.
func (s *Scheduler) Tick(ctx context.Context, memo Memo) (Memo, error) {
	s.Metrics.TicksTotal.Inc()

	frames, err := s.Frames.Collect(ctx)
	if err != nil {
		s.Metrics.TickErrors.WithLabelValues("collect").Inc()
		return memo, fmt.Errorf("collect: %w", err)
	}
	if len(frames.Entry) == 0 {
		s.skip(string(strategy.SkipNoData))
		return memo, nil
	}

	last := frames.Entry[len(frames.Entry)-1]
	res, err := s.Tracker.UpdateTradeStatus(ctx, last.High, last.Low)
	if err != nil {
		s.Metrics.TickErrors.WithLabelValues("tracker").Inc()
		return memo, fmt.Errorf("update trade: %w", err)
	}
	if res.Resolved {
		s.onResolved(ctx, res)
	}

	active, remaining, err := s.Tracker.CheckCooldown(ctx, s.CooldownHours)
	if err != nil {
		s.Metrics.TickErrors.WithLabelValues("tracker").Inc()
		return memo, fmt.Errorf("check cooldown: %w", err)
	}
	if active {
		s.Metrics.CooldownActive.Set(1)
		log.Debug().Int("remaining_min", remaining).Msg("cooldown active, skipping")
		s.skip(skipCooldown)
		return memo, nil
	}
	s.Metrics.CooldownActive.Set(0)

	st, err := s.Tracker.State(ctx)
	if err != nil {
		s.Metrics.TickErrors.WithLabelValues("tracker").Inc()
		return memo, fmt.Errorf("load state: %w", err)
	}
	if st.ActiveTrade != nil {
		s.skip(skipTradeOpen)
		return memo, nil
	}

	var sent *model.Sentiment
	if s.Sentiment != nil {
		if sent, err = s.Sentiment.Analyze(ctx); err != nil {
			s.Metrics.TickErrors.WithLabelValues("sentiment").Inc()
			log.Warn().Err(err).Msg("sentiment unavailable, evaluating without it")
			sent = nil
		}
	}

	dec := s.Pipeline.Evaluate(strategy.Input{Symbol: s.Symbol, Frames: frames, Sentiment: sent})
	if !dec.Emitted() {
		s.skip(string(dec.Skip))
		return memo, nil
	}
	sig := dec.Signal
	if s.duplicate(memo, sig) {
		log.Info().Str("direction", string(sig.Direction)).Time("bar", sig.Timestamp).Msg("duplicate signal dropped")
		s.skip(skipDuplicate)
		return memo, nil
	}

	sig.ID = uuid.NewString()
	memo = Memo{LastSignalTime: sig.Timestamp, LastDirection: sig.Direction}

	if err := s.Recorder.RecordSignal(ctx, sig); err != nil {
		s.Metrics.TickErrors.WithLabelValues("recorder").Inc()
		log.Error().Err(err).Str("signal_id", sig.ID).Msg("record signal")
	}
	if err := s.Tracker.OpenTrade(ctx, sig); err != nil {
		s.Metrics.TickErrors.WithLabelValues("tracker").Inc()
		return memo, fmt.Errorf("open trade: %w", err)
	}
	s.Metrics.SignalsTotal.WithLabelValues(string(sig.Direction)).Inc()
	log.Info().Str("signal_id", sig.ID).Str("direction", string(sig.Direction)).
		Float64("entry", sig.EntryPrice).Float64("sl", sig.StopLoss).Float64("tp", sig.TakeProfit).
		Int("confidence", sig.Confidence).Msg("signal emitted")

	s.send(ctx, notifier.FormatSignal(sig, s.Account, sent))
	return memo, nil
}

// duplicate reports a signal on the same bar as the last one, or in the same direction
// within the cooldown window of it.
func (s *Scheduler) duplicate(memo Memo, sig *model.Signal) bool {
	if memo.LastSignalTime.IsZero() {
		return false
	}
	if sig.Timestamp.Equal(memo.LastSignalTime) {
		return true
	}
	window := time.Duration(s.CooldownHours * float64(time.Hour))
	return sig.Direction == memo.LastDirection && s.now().Sub(memo.LastSignalTime) < window
}

func (s *Scheduler) onResolved(ctx context.Context, res cooldown.Resolution) {
	s.Metrics.Resolutions.WithLabelValues(string(res.Kind)).Inc()
	out := model.TradeOutcome{
		Signal:    &model.Signal{ID: res.Trade.SignalID, Symbol: res.Trade.Symbol, Direction: res.Trade.Direction},
		ExitPrice: res.Exit,
		ExitTime:  s.now(),
		Kind:      res.Kind,
		PnL:       res.PnL,
	}
	if err := s.Recorder.RecordOutcome(ctx, out); err != nil {
		s.Metrics.TickErrors.WithLabelValues("recorder").Inc()
		log.Error().Err(err).Msg("record outcome")
	}
	s.send(ctx, notifier.FormatResolution(res, s.CooldownHours))
}

func (s *Scheduler) skip(reason string) {
	s.Metrics.SkippedTicks.WithLabelValues(reason).Inc()
}

func (s *Scheduler) send(ctx context.Context, text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(ctx, text, sendRetries); err != nil {
		s.Metrics.TickErrors.WithLabelValues("notify").Inc()
		log.Error().Err(err).Msg("send notification")
	}
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	switch command {
	case "/status":
		st, err := s.Tracker.State(ctx)
		if err != nil {
			return fmt.Sprintf("❌ state unavailable: %v", err)
		}
		active, remaining, err := s.Tracker.CheckCooldown(ctx, s.CooldownHours)
		if err != nil {
			return fmt.Sprintf("❌ state unavailable: %v", err)
		}
		return notifier.FormatStatus(st, active, remaining)
	case "/stats":
		st, err := s.Recorder.Stats(ctx)
		if err != nil {
			return fmt.Sprintf("❌ stats unavailable: %v", err)
		}
		return notifier.FormatStats(st)
	default:
		return notifier.FormatHelp()
	}
}

// cronLogger routes cron's logging through zerolog.
type cronLogger struct {
	l zerolog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug().Fields(keysAndValues).Msg(msg)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
