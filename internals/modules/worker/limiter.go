package worker

import (
	"context"
	"runtime/debug"
	"sync"

	"github.com/rs/zerolog"
)

// Limiter bounds how many check tasks run at once. Acquisition happens on
// the submitting goroutine, so tasks are admitted in submission order.
type Limiter struct {
	sem    chan struct{}
	logger *zerolog.Logger
}

func NewLimiter(capacity int, logger *zerolog.Logger) *Limiter {
	if capacity < 1 {
		capacity = 1
	}
	return &Limiter{
		sem:    make(chan struct{}, capacity),
		logger: logger,
	}
}

// Go blocks until a slot frees up, then runs task on its own goroutine.
// A panicking task is contained and logged; the slot is always returned.
func (l *Limiter) Go(ctx context.Context, wg *sync.WaitGroup, task func()) error {
	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	wg.Add(1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				l.logger.Error().
					Interface("panic", rec).
					Bytes("stack", debug.Stack()).
					Msg("check task panicked")
			}
			<-l.sem
			wg.Done()
		}()

		task()
	}()

	return nil
}
