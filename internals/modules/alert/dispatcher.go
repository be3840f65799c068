package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"apiwatch/internals/modules/monitor"
	"apiwatch/internals/modules/probe"
	"apiwatch/internals/modules/result"
	"apiwatch/pkg/report"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CooldownElapsed reports whether a monitor is eligible for another
// notification. A zero lastAlertSentAt means no alert was ever sent and
// always permits dispatch.
func CooldownElapsed(lastAlertSentAt, now time.Time, cooldown time.Duration) bool {
	if lastAlertSentAt.IsZero() {
		return true
	}
	return now.Sub(lastAlertSentAt) >= cooldown
}

type EmailResolver interface {
	GetEmailByMonitorID(ctx context.Context, monitorID uuid.UUID) (string, error)
}

type EmailSender interface {
	Send(to, subject, body, attachmentPath string) error
}

type ReportGenerator interface {
	Generate(r report.AlertReport) (string, error)
}

type AlertStore interface {
	Insert(ctx context.Context, a Alert) (int64, error)
}

type Bookkeeper interface {
	UpdateAlertBookkeeping(ctx context.Context, monitorID uuid.UUID, sentAt time.Time) error
}

// EventPublisher fans the alert out to the message broker. Optional.
type EventPublisher interface {
	Publish(ctx context.Context, body []byte) error
}

// Dispatcher turns a confirmed transition into a PDF report, an email,
// an alert row, and updated monitor bookkeeping. Every step tolerates
// failure of the previous one: the alert row is written even when the
// email could not be delivered, with the delivery error recorded on it.
type Dispatcher struct {
	emails    EmailResolver
	sender    EmailSender
	reports   ReportGenerator
	alerts    AlertStore
	monitors  Bookkeeper
	publisher EventPublisher
	logger    *zerolog.Logger
}

func NewDispatcher(
	emails EmailResolver,
	sender EmailSender,
	reports ReportGenerator,
	alerts AlertStore,
	monitors Bookkeeper,
	publisher EventPublisher,
	logger *zerolog.Logger,
) *Dispatcher {
	return &Dispatcher{
		emails:    emails,
		sender:    sender,
		reports:   reports,
		alerts:    alerts,
		monitors:  monitors,
		publisher: publisher,
		logger:    logger,
	}
}

// DispatchInput is everything known about the check that tripped the alert.
type DispatchInput struct {
	Monitor    monitor.Monitor
	Transition result.Transition
	Outcome    probe.Outcome
	CheckedAt  time.Time
}

type alertEvent struct {
	MonitorID  string `json:"monitor_id"`
	URL        string `json:"url"`
	PrevStatus string `json:"prev_status"`
	NewStatus  string `json:"new_status"`
	Reason     string `json:"reason"`
	CheckedAt  string `json:"checked_at"`
}

// Dispatch runs the full notification sequence for one transition.
// It returns an error only when the alert row itself could not be
// persisted; delivery problems are absorbed into the row.
func (d *Dispatcher) Dispatch(ctx context.Context, in DispatchInput) error {
	m := in.Monitor
	reason := fmt.Sprintf("Status changed from %s to %s", in.Transition.PrevStatus, in.Transition.NewStatus)

	email, err := d.emails.GetEmailByMonitorID(ctx, m.ID)
	if err != nil || email == "" {
		d.logger.Warn().
			Err(err).
			Str("monitor_id", m.ID.String()).
			Msg("no owner email for monitor, skipping alert")
		return nil
	}

	var errDetail string

	artifactPath, genErr := d.reports.Generate(report.AlertReport{
		MonitorID:      m.ID,
		URL:            m.URL,
		CheckedAt:      in.CheckedAt,
		Status:         string(in.Transition.NewStatus),
		PrevStatus:     string(in.Transition.PrevStatus),
		HTTPCode:       in.Outcome.Code,
		ResponseTimeMs: int32(in.Outcome.LatencyMs),
		Reason:         reason,
	})
	if genErr != nil {
		errDetail = fmt.Sprintf("report generation failed: %v", genErr)
		d.logger.Error().
			Err(genErr).
			Str("monitor_id", m.ID.String()).
			Msg("alert report generation failed")
	} else {
		defer func() {
			if rmErr := os.Remove(artifactPath); rmErr != nil && !os.IsNotExist(rmErr) {
				d.logger.Warn().
					Err(rmErr).
					Str("path", artifactPath).
					Msg("failed to remove alert report artifact")
			}
		}()

		subject := fmt.Sprintf("[apiwatch] %s is %s", m.URL, in.Transition.NewStatus)
		if sendErr := d.sender.Send(email, subject, reason, artifactPath); sendErr != nil {
			errDetail = fmt.Sprintf("email delivery failed: %v", sendErr)
			d.logger.Error().
				Err(sendErr).
				Str("monitor_id", m.ID.String()).
				Str("to", email).
				Msg("alert email delivery failed")
		}
	}

	// The alert row is the audit trail. It is written regardless of how
	// the delivery steps went.
	alertID, err := d.alerts.Insert(ctx, Alert{
		MonitorID:   m.ID,
		Reason:      reason,
		ErrorDetail: errDetail,
		TriggeredAt: in.CheckedAt,
	})
	if err != nil {
		return err
	}

	if err := d.monitors.UpdateAlertBookkeeping(ctx, m.ID, time.Now()); err != nil {
		d.logger.Error().
			Err(err).
			Str("monitor_id", m.ID.String()).
			Msg("failed to update monitor alert bookkeeping")
	}

	d.publishEvent(ctx, m, in, reason)

	d.logger.Info().
		Int64("alert_id", alertID).
		Str("monitor_id", m.ID.String()).
		Str("reason", reason).
		Bool("delivered", errDetail == "").
		Msg("alert dispatched")

	return nil
}

func (d *Dispatcher) publishEvent(ctx context.Context, m monitor.Monitor, in DispatchInput, reason string) {
	if d.publisher == nil {
		return
	}

	body, err := json.Marshal(alertEvent{
		MonitorID:  m.ID.String(),
		URL:        m.URL,
		PrevStatus: string(in.Transition.PrevStatus),
		NewStatus:  string(in.Transition.NewStatus),
		Reason:     reason,
		CheckedAt:  in.CheckedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return
	}

	if err := d.publisher.Publish(ctx, body); err != nil {
		d.logger.Warn().
			Err(err).
			Str("monitor_id", m.ID.String()).
			Msg("failed to publish alert event")
	}
}
