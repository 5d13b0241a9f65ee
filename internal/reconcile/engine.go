// Package reconcile turns the external attendance feed into penalty
// assessments, exactly once per (event, player) pair.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"strafenkasse-service/internal/catalog"
	"strafenkasse-service/internal/domain"
	"strafenkasse-service/internal/ledger"
	"strafenkasse-service/internal/logging"
	"strafenkasse-service/internal/metrics"
	"strafenkasse-service/internal/providers"
)

const defaultWindow = 14 * 24 * time.Hour

// Summary reports the outcome of one reconciliation run.
type Summary struct {
	EventsChecked   int      `json:"eventsChecked"`
	NewPenalties    int      `json:"newPenalties"`
	AlreadyAssessed int      `json:"alreadyAssessed"`
	SkippedUpcoming int      `json:"skippedUpcoming"`
	SkippedInvalid  int      `json:"skippedInvalid"`
	Details         []Detail `json:"details,omitempty"`
}

// Detail describes one newly assessed penalty for operator feedback.
type Detail struct {
	Player string       `json:"player"`
	Event  string       `json:"event"`
	Date   time.Time    `json:"date"`
	Amount domain.Cents `json:"amount"`
}

// Config holds the engine's tunables.
type Config struct {
	GroupID string
	// Window is how far back events are considered. Zero means 14 days.
	Window time.Duration
	// DefaultAmount applies when the non-response catalog entry is absent.
	DefaultAmount domain.Cents
}

// Engine runs the idempotent non-response sync against the ledger.
type Engine struct {
	provider providers.EventProvider
	ledger   *ledger.Service
	catalog  *catalog.Service
	logger   *slog.Logger
	metrics  *metrics.Recorder
	cfg      Config
	now      func() time.Time
}

// New constructs an Engine.
func New(provider providers.EventProvider, lgr *ledger.Service, cat *catalog.Service, logger *slog.Logger, recorder *metrics.Recorder, cfg Config) *Engine {
	if cfg.Window <= 0 {
		cfg.Window = defaultWindow
	}
	return &Engine{
		provider: provider,
		ledger:   lgr,
		catalog:  cat,
		logger:   logger,
		metrics:  recorder,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Run fetches the event window and assesses the non-response penalty for
// every member who left a started event unanswered. Re-running over an
// unchanged feed is a no-op: the sync key dedupes every (event, player) pair.
// When the provider fails, penalties already written in this run stand.
func (e *Engine) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	now := e.now().UTC()
	from := now.Add(-e.cfg.Window)

	events, err := e.provider.FetchEvents(ctx, e.cfg.GroupID, from, now)
	if err != nil {
		if e.metrics != nil {
			e.metrics.RecordSyncRun(time.Since(start), 0, err)
		}
		return Summary{}, fmt.Errorf("%w: %v", domain.ErrSyncUnavailable, err)
	}

	amount, reason := e.resolvePenalty(ctx)

	var summary Summary
	for _, ev := range events {
		summary.EventsChecked++

		if ev.ID == "" || len(ev.Members) == 0 {
			summary.SkippedInvalid++
			e.logWarn(ctx, "skipping malformed event", slog.String("event_id", ev.ID), slog.String("heading", ev.Heading))
			continue
		}
		// Events that have not started yet still accept answers.
		if ev.StartTime.After(now) {
			summary.SkippedUpcoming++
			continue
		}

		for _, m := range ev.Members {
			if m.Response != domain.ResponseUnanswered {
				continue
			}
			if domain.NormalizeName(m.Name) == "" {
				continue
			}

			rec, created, err := e.ledger.Assess(ctx, ledger.Assessment{
				Player:  m.Name,
				Reason:  reason,
				Amount:  amount,
				Source:  domain.SourceAutoSync,
				SyncKey: domain.SyncKey(ev.ID, m.Name),
			})
			if err != nil {
				e.logError(ctx, "assessment failed during sync", err,
					slog.String("event_id", ev.ID), slog.String("player", m.Name))
				continue
			}
			if created {
				summary.NewPenalties++
				summary.Details = append(summary.Details, Detail{
					Player: rec.Player,
					Event:  ev.Heading,
					Date:   ev.StartTime,
					Amount: rec.Amount,
				})
			} else {
				summary.AlreadyAssessed++
			}
		}
	}

	if e.metrics != nil {
		e.metrics.RecordSyncRun(time.Since(start), summary.NewPenalties, nil)
	}
	e.logInfo(ctx, "sync run complete",
		slog.Int("events_checked", summary.EventsChecked),
		slog.Int("new_penalties", summary.NewPenalties),
		slog.Int("already_assessed", summary.AlreadyAssessed),
		slog.Int("skipped_upcoming", summary.SkippedUpcoming),
		slog.Int64(logging.FieldDurationMS, time.Since(start).Milliseconds()),
	)
	return summary, nil
}

// resolvePenalty reads the non-response catalog entry at run time so catalog
// edits take effect on the next sync; records keep their resolved amount.
func (e *Engine) resolvePenalty(ctx context.Context) (domain.Cents, string) {
	if e.catalog != nil {
		if entry, ok, err := e.catalog.Find(ctx, catalog.NonResponseTypeName); err == nil && ok {
			return entry.Amount, entry.Name
		}
	}
	return e.cfg.DefaultAmount, catalog.NonResponseTypeName
}

func (e *Engine) logInfo(ctx context.Context, msg string, args ...any) {
	if logger := logging.FromContext(ctx, e.logger); logger != nil {
		logger.Info(msg, args...)
	}
}

func (e *Engine) logWarn(ctx context.Context, msg string, args ...any) {
	if logger := logging.FromContext(ctx, e.logger); logger != nil {
		logger.Warn(msg, args...)
	}
}

func (e *Engine) logError(ctx context.Context, msg string, err error, args ...any) {
	if logger := logging.FromContext(ctx, e.logger); logger != nil {
		logger.Error(msg, append(args, "error", err)...)
	}
}
