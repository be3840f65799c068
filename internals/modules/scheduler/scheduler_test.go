package scheduler

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"apiwatch/pkg/retry"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type fakeRunner struct {
	cycles   atomic.Int32
	cleanups atomic.Int32
	block    chan struct{}
}

func (f *fakeRunner) RunCycle(ctx context.Context) error {
	f.cycles.Add(1)
	if f.block != nil {
		<-f.block
	}
	return nil
}

func (f *fakeRunner) RunCleanup(ctx context.Context) error {
	f.cleanups.Add(1)
	return nil
}

type fakePinger struct {
	err error
}

func (f *fakePinger) Ping(ctx context.Context) error {
	return f.err
}

// syncBuffer lets concurrently fired cycles log safely into one buffer.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestScheduler(runner *fakeRunner, db *fakePinger, poll, cleanup time.Duration, out *syncBuffer) *Scheduler {
	log := zerolog.Nop()
	if out != nil {
		log = zerolog.New(out)
	}
	return New(runner, db, poll, cleanup, retry.Policy{Attempts: 1}, &log)
}

func TestSchedulerFiresPollTicks(t *testing.T) {
	runner := &fakeRunner{}
	s := newTestScheduler(runner, &fakePinger{}, 20*time.Millisecond, time.Hour, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	s.Start(ctx)

	assert.GreaterOrEqual(t, runner.cycles.Load(), int32(2))
	assert.Zero(t, runner.cleanups.Load())
}

func TestSchedulerSkipsOverlappingTicks(t *testing.T) {
	runner := &fakeRunner{block: make(chan struct{})}
	out := &syncBuffer{}
	s := newTestScheduler(runner, &fakePinger{}, 20*time.Millisecond, time.Hour, out)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	// several ticks arrive while the first cycle is stuck; the guard must
	// turn each of them into a logged no-op, not queue them up
	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, int32(1), runner.cycles.Load(), "overlapping ticks must not start cycles")
	assert.Contains(t, out.String(), "previous poll cycle still running")

	cancel()
	<-done
	close(runner.block)

	// skipped firings stay skipped: releasing the stuck cycle must not
	// replay them
	assert.Equal(t, int32(1), runner.cycles.Load())
	skips := strings.Count(out.String(), "previous poll cycle still running")
	assert.GreaterOrEqual(t, skips, 2)
}

func TestSchedulerGuardReleasedAfterCycle(t *testing.T) {
	runner := &fakeRunner{}
	s := newTestScheduler(runner, &fakePinger{}, 20*time.Millisecond, time.Hour, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	s.Start(ctx)

	// fast cycles mean every tick should run
	assert.GreaterOrEqual(t, runner.cycles.Load(), int32(3))
}

func TestSchedulerSkipsCycleWhenDBUnreachable(t *testing.T) {
	runner := &fakeRunner{}
	s := newTestScheduler(runner, &fakePinger{err: context.DeadlineExceeded}, 20*time.Millisecond, time.Hour, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	s.Start(ctx)

	assert.Zero(t, runner.cycles.Load())
}

func TestSchedulerCleanupRunsDuringPollCycle(t *testing.T) {
	runner := &fakeRunner{block: make(chan struct{})}
	s := newTestScheduler(runner, &fakePinger{}, 20*time.Millisecond, 30*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	// the first poll cycle stays stuck the whole time; cleanup must still fire
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), runner.cycles.Load(), "poll cycle is still blocked")
	assert.GreaterOrEqual(t, runner.cleanups.Load(), int32(2), "cleanup must not wait for the poll guard")

	cancel()
	<-done
	close(runner.block)
}
