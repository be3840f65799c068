package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiterBoundsConcurrency(t *testing.T) {
	log := zerolog.Nop()
	l := NewLimiter(2, &log)

	var current, peak atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		err := l.Go(context.Background(), &wg, func() {
			n := current.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			current.Add(-1)
		})
		require.NoError(t, err)
	}
	wg.Wait()

	assert.LessOrEqual(t, peak.Load(), int32(2))
	assert.Greater(t, peak.Load(), int32(0))
}

func TestLimiterContainsPanics(t *testing.T) {
	log := zerolog.Nop()
	l := NewLimiter(1, &log)

	var wg sync.WaitGroup
	require.NoError(t, l.Go(context.Background(), &wg, func() {
		panic("boom")
	}))

	// the slot must come back after the panic
	var ran atomic.Bool
	require.NoError(t, l.Go(context.Background(), &wg, func() {
		ran.Store(true)
	}))
	wg.Wait()

	assert.True(t, ran.Load())
}

func TestLimiterRespectsCancellation(t *testing.T) {
	log := zerolog.Nop()
	l := NewLimiter(1, &log)

	var wg sync.WaitGroup
	release := make(chan struct{})
	require.NoError(t, l.Go(context.Background(), &wg, func() {
		<-release
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := l.Go(ctx, &wg, func() {})
	assert.ErrorIs(t, err, context.Canceled)

	close(release)
	wg.Wait()
}
