package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"apiwatch/internals/modules/alert"
	"apiwatch/internals/modules/monitor"
	"apiwatch/internals/modules/probe"
	"apiwatch/internals/modules/result"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMonitorStore struct {
	mu          sync.Mutex
	monitors    []monitor.Monitor
	listErr     error
	lastChecked map[uuid.UUID]time.Time
}

func (f *fakeMonitorStore) ListActive(ctx context.Context) ([]monitor.Monitor, error) {
	return f.monitors, f.listErr
}

func (f *fakeMonitorStore) UpdateLastChecked(ctx context.Context, monitorID uuid.UUID, checkedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lastChecked == nil {
		f.lastChecked = make(map[uuid.UUID]time.Time)
	}
	f.lastChecked[monitorID] = checkedAt
	return nil
}

type fakeLogStore struct {
	mu        sync.Mutex
	latest    map[uuid.UUID]result.ProbeLog
	inserted  []result.ProbeLog
	insertErr map[uuid.UUID]error
	cutoff    time.Time
}

func (f *fakeLogStore) Insert(ctx context.Context, log result.ProbeLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.insertErr[log.MonitorID]; ok {
		return err
	}
	f.inserted = append(f.inserted, log)
	return nil
}

func (f *fakeLogStore) LatestByMonitor(ctx context.Context, monitorID uuid.UUID) (result.ProbeLog, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	prev, ok := f.latest[monitorID]
	return prev, ok, nil
}

func (f *fakeLogStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cutoff = cutoff
	return 3, nil
}

type fakeChecker struct {
	outcomes map[string]probe.Outcome
}

func (f *fakeChecker) Check(ctx context.Context, url string) probe.Outcome {
	if out, ok := f.outcomes[url]; ok {
		return out
	}
	return probe.Outcome{Status: probe.StatusUp, Code: 200}
}

type fakeDispatcher struct {
	mu    sync.Mutex
	calls []alert.DispatchInput
	err   error
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, in alert.DispatchInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, in)
	return f.err
}

type workerFixture struct {
	monitors   *fakeMonitorStore
	logs       *fakeLogStore
	checker    *fakeChecker
	dispatcher *fakeDispatcher
	w          *Worker
}

func newWorkerFixture(monitors ...monitor.Monitor) *workerFixture {
	log := zerolog.Nop()

	f := &workerFixture{
		monitors:   &fakeMonitorStore{monitors: monitors},
		logs:       &fakeLogStore{latest: make(map[uuid.UUID]result.ProbeLog)},
		checker:    &fakeChecker{outcomes: make(map[string]probe.Outcome)},
		dispatcher: &fakeDispatcher{},
	}
	f.w = New(
		f.monitors,
		f.logs,
		f.checker,
		f.dispatcher,
		nil,
		NewLimiter(2, &log),
		30*time.Minute,
		7*24*time.Hour,
		&log,
	)
	return f
}

func activeMonitor(url string) monitor.Monitor {
	return monitor.Monitor{
		ID:       uuid.New(),
		UserID:   uuid.New(),
		URL:      url,
		IsActive: true,
	}
}

func TestRunCycleWritesOneLogPerMonitor(t *testing.T) {
	m1 := activeMonitor("https://a.example.com")
	m2 := activeMonitor("https://b.example.com")
	f := newWorkerFixture(m1, m2)

	require.NoError(t, f.w.RunCycle(context.Background()))

	assert.Len(t, f.logs.inserted, 2)
	assert.Contains(t, f.monitors.lastChecked, m1.ID)
	assert.Contains(t, f.monitors.lastChecked, m2.ID)
	assert.Empty(t, f.dispatcher.calls, "no history means no transition")
}

func TestRunCycleDispatchesOnTransition(t *testing.T) {
	m := activeMonitor("https://a.example.com")
	f := newWorkerFixture(m)

	f.logs.latest[m.ID] = result.ProbeLog{ID: 1, MonitorID: m.ID, Status: probe.StatusUp}
	f.checker.outcomes[m.URL] = probe.Outcome{
		Status: probe.StatusDown,
		Code:   500,
		Kind:   probe.FailureNonSuccessStatus,
	}

	require.NoError(t, f.w.RunCycle(context.Background()))

	require.Len(t, f.dispatcher.calls, 1)
	call := f.dispatcher.calls[0]
	assert.Equal(t, m.ID, call.Monitor.ID)
	assert.Equal(t, probe.StatusUp, call.Transition.PrevStatus)
	assert.Equal(t, probe.StatusDown, call.Transition.NewStatus)
	assert.Equal(t, int32(500), call.Outcome.Code)

	require.Len(t, f.logs.inserted, 1)
	assert.Equal(t, probe.StatusDown, f.logs.inserted[0].Status)
}

func TestRunCycleRecoveryAlsoDispatches(t *testing.T) {
	m := activeMonitor("https://a.example.com")
	f := newWorkerFixture(m)

	f.logs.latest[m.ID] = result.ProbeLog{ID: 1, MonitorID: m.ID, Status: probe.StatusDown}
	f.checker.outcomes[m.URL] = probe.Outcome{Status: probe.StatusUp, Code: 200}

	require.NoError(t, f.w.RunCycle(context.Background()))

	require.Len(t, f.dispatcher.calls, 1)
	assert.Equal(t, probe.StatusDown, f.dispatcher.calls[0].Transition.PrevStatus)
	assert.Equal(t, probe.StatusUp, f.dispatcher.calls[0].Transition.NewStatus)
}

func TestRunCycleCooldownSuppressesDispatchNotLog(t *testing.T) {
	m := activeMonitor("https://a.example.com")
	m.LastAlertSentAt = time.Now().Add(-5 * time.Minute)
	f := newWorkerFixture(m)

	f.logs.latest[m.ID] = result.ProbeLog{ID: 1, MonitorID: m.ID, Status: probe.StatusUp}
	f.checker.outcomes[m.URL] = probe.Outcome{Status: probe.StatusDown, Code: 502}

	require.NoError(t, f.w.RunCycle(context.Background()))

	assert.Empty(t, f.dispatcher.calls, "within cooldown window")
	assert.Len(t, f.logs.inserted, 1, "probe log is still written")
}

func TestRunCycleNoTransitionNoDispatch(t *testing.T) {
	m := activeMonitor("https://a.example.com")
	f := newWorkerFixture(m)

	f.logs.latest[m.ID] = result.ProbeLog{ID: 1, MonitorID: m.ID, Status: probe.StatusUp}

	require.NoError(t, f.w.RunCycle(context.Background()))
	require.NoError(t, f.w.RunCycle(context.Background()))

	assert.Empty(t, f.dispatcher.calls)
	assert.Len(t, f.logs.inserted, 2, "one row per tick")
}

func TestRunCycleIsolatesMonitorFailures(t *testing.T) {
	m1 := activeMonitor("https://broken.example.com")
	m2 := activeMonitor("https://fine.example.com")
	f := newWorkerFixture(m1, m2)

	f.logs.insertErr = map[uuid.UUID]error{m1.ID: errors.New("db unavailable")}

	require.NoError(t, f.w.RunCycle(context.Background()))

	require.Len(t, f.logs.inserted, 1)
	assert.Equal(t, m2.ID, f.logs.inserted[0].MonitorID)
	assert.Contains(t, f.monitors.lastChecked, m2.ID)
}

func TestRunCycleListFailure(t *testing.T) {
	f := newWorkerFixture()
	f.monitors.listErr = errors.New("db unavailable")

	assert.Error(t, f.w.RunCycle(context.Background()))
}

func TestRunCleanupUsesRetentionWindow(t *testing.T) {
	f := newWorkerFixture()

	require.NoError(t, f.w.RunCleanup(context.Background()))

	want := time.Now().Add(-7 * 24 * time.Hour)
	assert.WithinDuration(t, want, f.logs.cutoff, 5*time.Second)
}
