// Package refresh runs the severe-weather fetch on a fixed cadence and hands
// each result to injected sinks.
package refresh

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/weather-insights-service/internal/domain"
	"github.com/couchcryptid/weather-insights-service/internal/observability"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// FetchFunc produces the current set of alerts.
type FetchFunc func(ctx context.Context) ([]domain.WeatherAlert, error)

// Sink receives the alerts of every refresh that was not superseded.
type Sink interface {
	Deliver(ctx context.Context, alerts []domain.WeatherAlert) error
}

// FailureSink is implemented by sinks that also want to hear about failed refreshes.
type FailureSink interface {
	Fail(ctx context.Context, err error)
}

// Refresher runs fetch immediately and then once per interval until its
// context is cancelled. Starting a new run cancels the one in flight, and a
// run whose token is no longer current never reaches the sinks.
type Refresher struct {
	fetch    FetchFunc
	sinks    []Sink
	interval time.Duration
	clock    clockwork.Clock
	logger   *slog.Logger
	metrics  *observability.Metrics
	trigger  chan struct{}
	ready    atomic.Bool

	mu      sync.Mutex
	current string
	cancel  context.CancelFunc

	// deliverMu serialises the token check with delivery so an older run
	// cannot overwrite a newer one.
	deliverMu sync.Mutex
}

// New creates a Refresher.
func New(fetch FetchFunc, interval time.Duration, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics, sinks ...Sink) *Refresher {
	return &Refresher{
		fetch:    fetch,
		sinks:    sinks,
		interval: interval,
		clock:    clock,
		logger:   logger,
		metrics:  metrics,
		trigger:  make(chan struct{}, 1),
	}
}

// Trigger requests an immediate refresh. It never blocks; requests made while
// one is already pending are coalesced.
func (r *Refresher) Trigger() {
	select {
	case r.trigger <- struct{}{}:
	default:
	}
}

// CheckReadiness returns nil once at least one refresh has completed.
func (r *Refresher) CheckReadiness(_ context.Context) error {
	if !r.ready.Load() {
		return errors.New("no disaster refresh has completed yet")
	}
	return nil
}

// Run executes the refresh loop until ctx is cancelled. It waits for in-flight
// runs to finish before returning.
func (r *Refresher) Run(ctx context.Context) error {
	r.logger.Info("refresher started", "interval", r.interval)

	ticker := r.clock.NewTicker(r.interval)
	defer ticker.Stop()

	var wg sync.WaitGroup
	defer wg.Wait()

	r.start(ctx, &wg)
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("refresher stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
			r.start(ctx, &wg)
		case <-r.trigger:
			ticker.Reset(r.interval)
			r.start(ctx, &wg)
		}
	}
}

func (r *Refresher) start(ctx context.Context, wg *sync.WaitGroup) {
	runCtx, cancel := context.WithCancel(ctx)
	token := uuid.NewString()

	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	r.current = token
	r.cancel = cancel
	r.mu.Unlock()

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer cancel()
		r.run(ctx, runCtx, token)
	}()
}

func (r *Refresher) run(ctx, runCtx context.Context, token string) {
	start := time.Now()
	r.metrics.RefreshRunning.Inc()
	alerts, err := r.fetch(runCtx)
	r.metrics.RefreshRunning.Dec()

	r.deliverMu.Lock()
	defer r.deliverMu.Unlock()

	if runCtx.Err() != nil || !r.isCurrent(token) {
		r.metrics.RefreshRuns.WithLabelValues("stale").Inc()
		r.logger.Debug("discarding superseded refresh", "token", token)
		return
	}

	if err != nil {
		r.metrics.RefreshRuns.WithLabelValues("error").Inc()
		r.logger.Warn("disaster refresh failed", "token", token, "error", err)
		for _, s := range r.sinks {
			if fs, ok := s.(FailureSink); ok {
				fs.Fail(ctx, err)
			}
		}
		r.ready.Store(true)
		return
	}

	for _, s := range r.sinks {
		if err := s.Deliver(ctx, alerts); err != nil {
			r.logger.Warn("alert sink delivery failed", "token", token, "error", err)
		}
	}
	r.metrics.RefreshRuns.WithLabelValues("success").Inc()
	r.logger.Info("disaster refresh complete",
		"token", token,
		"alerts", len(alerts),
		"duration", time.Since(start),
	)
	r.ready.Store(true)
}

func (r *Refresher) isCurrent(token string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current == token
}
