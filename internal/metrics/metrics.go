// Package metrics exposes Prometheus instrumentation for the live bot.
package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Metrics holds all Prometheus metrics for the signal loop.
type Metrics struct {
	TicksTotal     prometheus.Counter
	TickErrors     *prometheus.CounterVec // labels: stage
	SkippedTicks   *prometheus.CounterVec // labels: reason
	SignalsTotal   *prometheus.CounterVec // labels: direction
	Resolutions    *prometheus.CounterVec // labels: outcome
	TickDuration   prometheus.Histogram
	CooldownActive prometheus.Gauge

	registry *prometheus.Registry
}

// New creates the metrics on a private registry.
func New() *Metrics {
	m := &Metrics{
		TicksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "goldsentinel_ticks_total",
			Help: "Total scheduler ticks run",
		}),
		TickErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "goldsentinel_tick_errors_total",
			Help: "Tick failures by stage",
		}, []string{"stage"}),
		SkippedTicks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "goldsentinel_skipped_ticks_total",
			Help: "Ticks that produced no signal, by reason",
		}, []string{"reason"}),
		SignalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "goldsentinel_signals_total",
			Help: "Signals emitted by direction",
		}, []string{"direction"}),
		Resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "goldsentinel_trade_resolutions_total",
			Help: "Tracked trades resolved by outcome",
		}, []string{"outcome"}),
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "goldsentinel_tick_duration_seconds",
			Help:    "Wall time of one tick, fetch included",
			Buckets: prometheus.DefBuckets,
		}),
		CooldownActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "goldsentinel_cooldown_active",
			Help: "1 while the post-loss cooldown is running",
		}),
		registry: prometheus.NewRegistry(),
	}
	m.registry.MustRegister(
		m.TicksTotal, m.TickErrors, m.SkippedTicks, m.SignalsTotal,
		m.Resolutions, m.TickDuration, m.CooldownActive,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Health tracks liveness data reported on /healthz.
type Health struct {
	mu        sync.RWMutex
	lastTick  time.Time
	lastError string
	startedAt time.Time
}

// NewHealth returns a health record started now.
func NewHealth() *Health {
	return &Health{startedAt: time.Now()}
}

// RecordTick stores the outcome of the latest tick.
func (h *Health) RecordTick(at time.Time, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastTick = at
	h.lastError = ""
	if err != nil {
		h.lastError = err.Error()
	}
}

type healthStatus struct {
	Status    string    `json:"status"`
	LastTick  time.Time `json:"last_tick"`
	LastError string    `json:"last_error,omitempty"`
	StartedAt time.Time `json:"started_at"`
}

func (h *Health) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	h.mu.RLock()
	st := healthStatus{Status: "ok", LastTick: h.lastTick, LastError: h.lastError, StartedAt: h.startedAt}
	h.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	if st.LastError != "" {
		st.Status = "degraded"
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(st)
}

// Serve exposes /metrics and /healthz on addr until ctx is done.
func Serve(ctx context.Context, addr string, m *Metrics, h *Health) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.Handle("/healthz", h)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", addr).Msg("metrics server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
