// Package poller drives the reconciliation engine on a fixed interval.
package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"strafenkasse-service/internal/logging"
	"strafenkasse-service/internal/reconcile"
)

const defaultInterval = time.Hour

// Runner executes one reconciliation pass.
type Runner interface {
	Run(ctx context.Context) (reconcile.Summary, error)
}

// Poller runs the sync engine on an interval and tracks its recent health.
type Poller struct {
	runner   Runner
	logger   *slog.Logger
	interval time.Duration

	ticker   *time.Ticker
	done     chan struct{}
	stopOnce sync.Once
	startMu  sync.Mutex
	started  bool

	statusMu sync.RWMutex
	status   Status
}

// Status describes the recent health of the sync loop.
type Status struct {
	ConsecutiveFailures int
	LastError           string
	LastAttempt         time.Time
	LastSuccess         time.Time
	LastNewPenalties    int
}

// IsReady reports whether the loop has had a recent success and is not failing repeatedly.
func (s Status) IsReady() bool {
	if s.LastSuccess.IsZero() {
		return false
	}
	return s.ConsecutiveFailures < 3
}

// New constructs a Poller with sane defaults.
func New(runner Runner, logger *slog.Logger, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Poller{
		runner:   runner,
		logger:   logger,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Start begins syncing until the context is cancelled or Stop is called.
func (p *Poller) Start(ctx context.Context) {
	p.startMu.Lock()
	if p.started {
		p.startMu.Unlock()
		return
	}
	p.started = true
	p.startMu.Unlock()

	p.ticker = time.NewTicker(p.interval)

	go func() {
		p.logInfo("sync loop started", slog.Int64(logging.FieldDurationMS, p.interval.Milliseconds()))
		// Initial run to reconcile on boot.
		p.runOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				p.stopTicker()
				p.logInfo("sync loop stopped")
				return
			case <-p.done:
				p.stopTicker()
				p.logInfo("sync loop stopped")
				return
			case <-p.ticker.C:
				p.runOnce(ctx)
			}
		}
	}()
}

// Stop halts the sync loop.
func (p *Poller) Stop(ctx context.Context) error {
	_ = ctx
	p.stopOnce.Do(func() {
		close(p.done)
		p.stopTicker()
	})
	return nil
}

func (p *Poller) runOnce(ctx context.Context) {
	start := time.Now()
	p.recordAttempt(start)

	summary, err := p.runner.Run(ctx)
	if err != nil {
		p.logError("scheduled sync failed", err, slog.Int64(logging.FieldDurationMS, time.Since(start).Milliseconds()))
		p.recordFailure(err, start)
		return
	}

	p.recordSuccess(start, summary.NewPenalties)
	p.logInfo("scheduled sync complete",
		slog.Int("new_penalties", summary.NewPenalties),
		slog.Int("events_checked", summary.EventsChecked),
		slog.Int64(logging.FieldDurationMS, time.Since(start).Milliseconds()),
	)
}

func (p *Poller) stopTicker() {
	if p.ticker != nil {
		p.ticker.Stop()
	}
}

func (p *Poller) logInfo(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Poller) logError(msg string, err error, attrs ...any) {
	if p.logger != nil {
		p.logger.Error(msg, append(attrs, "error", err)...)
	}
}

func (p *Poller) recordAttempt(at time.Time) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.status.LastAttempt = at
}

func (p *Poller) recordSuccess(at time.Time, created int) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.status.ConsecutiveFailures = 0
	p.status.LastError = ""
	p.status.LastSuccess = at
	p.status.LastNewPenalties = created
}

func (p *Poller) recordFailure(err error, at time.Time) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.status.ConsecutiveFailures++
	if err != nil {
		p.status.LastError = err.Error()
	}
	p.status.LastAttempt = at
}

// Status returns a snapshot of the loop's recent health.
func (p *Poller) Status() Status {
	p.statusMu.RLock()
	defer p.statusMu.RUnlock()
	return p.status
}
