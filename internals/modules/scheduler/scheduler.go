package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"apiwatch/pkg/retry"

	"github.com/rs/zerolog"
)

type CycleRunner interface {
	RunCycle(ctx context.Context) error
	RunCleanup(ctx context.Context) error
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// Scheduler fires the poll cycle on a fixed cadence and the retention
// cleanup on a daily one. Ticks that arrive while a cycle is still
// running are skipped, never queued.
type Scheduler struct {
	runner          CycleRunner
	db              Pinger
	pollInterval    time.Duration
	cleanupInterval time.Duration
	pingRetry       retry.Policy
	running         atomic.Bool
	logger          *zerolog.Logger
}

func New(
	runner CycleRunner,
	db Pinger,
	pollInterval time.Duration,
	cleanupInterval time.Duration,
	pingRetry retry.Policy,
	logger *zerolog.Logger,
) *Scheduler {
	return &Scheduler{
		runner:          runner,
		db:              db,
		pollInterval:    pollInterval,
		cleanupInterval: cleanupInterval,
		pingRetry:       pingRetry,
		logger:          logger,
	}
}

// Start blocks until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	pollTicker := time.NewTicker(s.pollInterval)
	defer pollTicker.Stop()

	cleanupTicker := time.NewTicker(s.cleanupInterval)
	defer cleanupTicker.Stop()

	s.logger.Info().
		Dur("poll_interval", s.pollInterval).
		Dur("cleanup_interval", s.cleanupInterval).
		Msg("scheduler started")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("scheduler stopped")
			return
		case <-pollTicker.C:
			// fired off the loop so ticks keep arriving while a cycle
			// runs; the guard inside firePoll skips the overlapping ones
			go s.firePoll(ctx)
		case <-cleanupTicker.C:
			// retention cleanup is independent of the poll guard and may
			// overlap a running cycle
			go s.fireCleanup(ctx)
		}
	}
}

// firePoll runs one cycle unless the previous one is still in flight.
func (s *Scheduler) firePoll(ctx context.Context) {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Warn().Msg("previous poll cycle still running, tick skipped")
		return
	}
	defer s.running.Store(false)

	if err := s.pingRetry.Do(ctx, func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return s.db.Ping(pingCtx)
	}); err != nil {
		s.logger.Error().Err(err).Msg("database unreachable, poll cycle skipped")
		return
	}

	if err := s.runner.RunCycle(ctx); err != nil {
		s.logger.Error().Err(err).Msg("poll cycle failed")
	}
}

func (s *Scheduler) fireCleanup(ctx context.Context) {
	if err := s.runner.RunCleanup(ctx); err != nil {
		s.logger.Error().Err(err).Msg("cleanup cycle failed")
	}
}
