package worker

import (
	"context"
	"sync"
	"time"

	"apiwatch/internals/modules/alert"
	"apiwatch/internals/modules/monitor"
	"apiwatch/internals/modules/probe"
	"apiwatch/internals/modules/result"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type MonitorStore interface {
	ListActive(ctx context.Context) ([]monitor.Monitor, error)
	UpdateLastChecked(ctx context.Context, monitorID uuid.UUID, checkedAt time.Time) error
}

type LogStore interface {
	Insert(ctx context.Context, log result.ProbeLog) error
	LatestByMonitor(ctx context.Context, monitorID uuid.UUID) (result.ProbeLog, bool, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type Checker interface {
	Check(ctx context.Context, url string) probe.Outcome
}

type Dispatcher interface {
	Dispatch(ctx context.Context, in alert.DispatchInput) error
}

// StatusCache mirrors the latest observation into fast storage. Optional,
// best effort only.
type StatusCache interface {
	StoreStatus(ctx context.Context, monitorID uuid.UUID, status string, statusCode int32, latencyMs int64, checkedAt time.Time) error
}

// Worker runs one full poll cycle: fan out probes across all active
// monitors under the limiter, record each result, and hand confirmed
// transitions to the dispatcher. Each monitor fails independently.
type Worker struct {
	monitors   MonitorStore
	logs       LogStore
	prober     Checker
	dispatcher Dispatcher
	cache      StatusCache
	limiter    *Limiter
	cooldown   time.Duration
	retention  time.Duration
	logger     *zerolog.Logger
}

func New(
	monitors MonitorStore,
	logs LogStore,
	prober Checker,
	dispatcher Dispatcher,
	cache StatusCache,
	limiter *Limiter,
	cooldown time.Duration,
	retention time.Duration,
	logger *zerolog.Logger,
) *Worker {
	return &Worker{
		monitors:   monitors,
		logs:       logs,
		prober:     prober,
		dispatcher: dispatcher,
		cache:      cache,
		limiter:    limiter,
		cooldown:   cooldown,
		retention:  retention,
		logger:     logger,
	}
}

// RunCycle checks every active monitor and returns once all checks finish.
func (w *Worker) RunCycle(ctx context.Context) error {
	started := time.Now()

	monitors, err := w.monitors.ListActive(ctx)
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	for _, m := range monitors {
		m := m
		if goErr := w.limiter.Go(ctx, &wg, func() {
			w.checkMonitor(ctx, m)
		}); goErr != nil {
			// ctx cancelled mid fan-out, stop admitting new checks
			break
		}
	}
	wg.Wait()

	w.logger.Info().
		Int("monitors", len(monitors)).
		Dur("took", time.Since(started)).
		Msg("poll cycle finished")

	return nil
}

// RunCleanup drops probe logs older than the retention window.
func (w *Worker) RunCleanup(ctx context.Context) error {
	cutoff := time.Now().Add(-w.retention)

	deleted, err := w.logs.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return err
	}

	w.logger.Info().
		Int64("deleted", deleted).
		Time("cutoff", cutoff).
		Msg("log retention cleanup finished")

	return nil
}

func (w *Worker) checkMonitor(ctx context.Context, m monitor.Monitor) {
	log := w.logger.With().Str("monitor_id", m.ID.String()).Logger()

	outcome := w.prober.Check(ctx, m.URL)
	checkedAt := time.Now()

	if outcome.Status == probe.StatusDown {
		log.Warn().
			Str("url", m.URL).
			Str("failure_kind", string(outcome.Kind)).
			Str("detail", outcome.Detail).
			Msg("monitor check failed")
	}

	// previous state must be read before this check's row lands, else this
	// row would compare against itself
	prev, hasPrev, err := w.logs.LatestByMonitor(ctx, m.ID)
	if err != nil {
		log.Error().Err(err).Msg("failed to load previous log, skipping monitor")
		return
	}

	if err := w.logs.Insert(ctx, result.ProbeLog{
		MonitorID:      m.ID,
		Status:         outcome.Status,
		StatusCode:     outcome.Code,
		ResponseTimeMs: int32(outcome.LatencyMs),
		CheckedAt:      checkedAt,
	}); err != nil {
		log.Error().Err(err).Msg("failed to persist probe log, skipping monitor")
		return
	}

	if err := w.monitors.UpdateLastChecked(ctx, m.ID, checkedAt); err != nil {
		log.Error().Err(err).Msg("failed to update last_checked_at")
	}

	if w.cache != nil {
		if err := w.cache.StoreStatus(ctx, m.ID, string(outcome.Status), outcome.Code, outcome.LatencyMs, checkedAt); err != nil {
			log.Warn().Err(err).Msg("failed to cache latest status")
		}
	}

	tr := result.Detect(prev, hasPrev, outcome.Status)
	if !tr.Occurred {
		return
	}

	log.Info().
		Str("prev_status", string(tr.PrevStatus)).
		Str("new_status", string(tr.NewStatus)).
		Msg("status transition detected")

	if !alert.CooldownElapsed(m.LastAlertSentAt, checkedAt, w.cooldown) {
		log.Info().
			Time("last_alert_sent_at", m.LastAlertSentAt).
			Msg("alert suppressed by cooldown")
		return
	}

	if err := w.dispatcher.Dispatch(ctx, alert.DispatchInput{
		Monitor:    m,
		Transition: tr,
		Outcome:    outcome,
		CheckedAt:  checkedAt,
	}); err != nil {
		log.Error().Err(err).Msg("alert dispatch failed")
	}
}
