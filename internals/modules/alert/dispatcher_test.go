package alert

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"apiwatch/internals/modules/monitor"
	"apiwatch/internals/modules/probe"
	"apiwatch/internals/modules/result"
	"apiwatch/pkg/report"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	email string
	err   error
}

func (f *fakeResolver) GetEmailByMonitorID(ctx context.Context, monitorID uuid.UUID) (string, error) {
	return f.email, f.err
}

type sendCall struct {
	to             string
	subject        string
	body           string
	attachmentPath string
	attachmentSeen bool
}

type fakeSender struct {
	err   error
	calls []sendCall
}

func (f *fakeSender) Send(to, subject, body, attachmentPath string) error {
	_, statErr := os.Stat(attachmentPath)
	f.calls = append(f.calls, sendCall{
		to:             to,
		subject:        subject,
		body:           body,
		attachmentPath: attachmentPath,
		attachmentSeen: statErr == nil,
	})
	return f.err
}

type fakeReports struct {
	dir  string
	err  error
	path string
}

func (f *fakeReports) Generate(r report.AlertReport) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.path = filepath.Join(f.dir, "alert.pdf")
	if err := os.WriteFile(f.path, []byte("%PDF-1.4"), 0o644); err != nil {
		return "", err
	}
	return f.path, nil
}

type fakeAlertStore struct {
	inserted []Alert
	err      error
}

func (f *fakeAlertStore) Insert(ctx context.Context, a Alert) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.inserted = append(f.inserted, a)
	return int64(len(f.inserted)), nil
}

type fakeBookkeeper struct {
	calls int
}

func (f *fakeBookkeeper) UpdateAlertBookkeeping(ctx context.Context, monitorID uuid.UUID, sentAt time.Time) error {
	f.calls++
	return nil
}

type dispatcherFixture struct {
	resolver *fakeResolver
	sender   *fakeSender
	reports  *fakeReports
	alerts   *fakeAlertStore
	books    *fakeBookkeeper
	d        *Dispatcher
}

func newFixture(t *testing.T) *dispatcherFixture {
	t.Helper()
	log := zerolog.Nop()

	f := &dispatcherFixture{
		resolver: &fakeResolver{email: "owner@example.com"},
		sender:   &fakeSender{},
		reports:  &fakeReports{dir: t.TempDir()},
		alerts:   &fakeAlertStore{},
		books:    &fakeBookkeeper{},
	}
	f.d = NewDispatcher(f.resolver, f.sender, f.reports, f.alerts, f.books, nil, &log)
	return f
}

func sampleInput() DispatchInput {
	return DispatchInput{
		Monitor: monitor.Monitor{
			ID:  uuid.New(),
			URL: "https://api.example.com/health",
		},
		Transition: result.Transition{
			Occurred:   true,
			PrevStatus: probe.StatusUp,
			NewStatus:  probe.StatusDown,
		},
		Outcome: probe.Outcome{
			Status:    probe.StatusDown,
			Code:      500,
			LatencyMs: 120,
		},
		CheckedAt: time.Now(),
	}
}

func TestDispatchHappyPath(t *testing.T) {
	f := newFixture(t)
	in := sampleInput()

	err := f.d.Dispatch(context.Background(), in)
	require.NoError(t, err)

	require.Len(t, f.sender.calls, 1)
	call := f.sender.calls[0]
	assert.Equal(t, "owner@example.com", call.to)
	assert.Equal(t, "Status changed from UP to DOWN", call.body)
	assert.True(t, call.attachmentSeen, "attachment must exist during send")

	require.Len(t, f.alerts.inserted, 1)
	row := f.alerts.inserted[0]
	assert.Equal(t, in.Monitor.ID, row.MonitorID)
	assert.Equal(t, "Status changed from UP to DOWN", row.Reason)
	assert.Empty(t, row.ErrorDetail)

	assert.Equal(t, 1, f.books.calls)

	_, statErr := os.Stat(f.reports.path)
	assert.True(t, os.IsNotExist(statErr), "artifact must be removed after send")
}

func TestDispatchEmailFailureStillWritesAlert(t *testing.T) {
	f := newFixture(t)
	f.sender.err = errors.New("smtp: connection reset")

	err := f.d.Dispatch(context.Background(), sampleInput())
	require.NoError(t, err)

	require.Len(t, f.alerts.inserted, 1)
	assert.Contains(t, f.alerts.inserted[0].ErrorDetail, "email delivery failed")
	assert.Equal(t, 1, f.books.calls)

	_, statErr := os.Stat(f.reports.path)
	assert.True(t, os.IsNotExist(statErr), "artifact must be removed even on send failure")
}

func TestDispatchReportFailureSkipsSend(t *testing.T) {
	f := newFixture(t)
	f.reports.err = errors.New("disk full")

	err := f.d.Dispatch(context.Background(), sampleInput())
	require.NoError(t, err)

	assert.Empty(t, f.sender.calls)
	require.Len(t, f.alerts.inserted, 1)
	assert.Contains(t, f.alerts.inserted[0].ErrorDetail, "report generation failed")
}

func TestDispatchMissingEmailIsSilentNoop(t *testing.T) {
	f := newFixture(t)
	f.resolver.email = ""

	err := f.d.Dispatch(context.Background(), sampleInput())
	require.NoError(t, err)

	assert.Empty(t, f.sender.calls)
	assert.Empty(t, f.alerts.inserted)
	assert.Zero(t, f.books.calls)
}

func TestDispatchAlertInsertFailurePropagates(t *testing.T) {
	f := newFixture(t)
	f.alerts.err = errors.New("db unavailable")

	err := f.d.Dispatch(context.Background(), sampleInput())
	assert.Error(t, err)
	assert.Zero(t, f.books.calls)
}

func TestCooldownElapsed(t *testing.T) {
	now := time.Now()
	cooldown := 30 * time.Minute

	assert.True(t, CooldownElapsed(time.Time{}, now, cooldown), "never alerted permits dispatch")
	assert.True(t, CooldownElapsed(now.Add(-31*time.Minute), now, cooldown))
	assert.True(t, CooldownElapsed(now.Add(-30*time.Minute), now, cooldown))
	assert.False(t, CooldownElapsed(now.Add(-29*time.Minute), now, cooldown))
	assert.False(t, CooldownElapsed(now, now, cooldown))
}
