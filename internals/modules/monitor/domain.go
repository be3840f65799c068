package monitor

import (
	"time"

	"github.com/google/uuid"
)

type CreateMonitorCmd struct {
	UserID          uuid.UUID
	URL             string
	IntervalMinutes int32
	AlertThreshold  int32
}

type UpdateMonitorCmd struct {
	UserID          uuid.UUID
	MonitorID       uuid.UUID
	URL             string
	IntervalMinutes int32
	AlertThreshold  int32
	IsActive        bool
}

// Monitor is a user-owned watched endpoint. The worker only ever touches
// LastCheckedAt, LastAlertSentAt and StatusChangeCount; everything else
// belongs to the CRUD layer. AlertThreshold is accepted and stored but the
// detector fires on any single-step transition (see DESIGN.md).
type Monitor struct {
	ID                uuid.UUID
	UserID            uuid.UUID
	URL               string
	IntervalMinutes   int32
	AlertThreshold    int32
	IsActive          bool
	LastCheckedAt     time.Time // zero when never checked
	LastAlertSentAt   time.Time // zero when never alerted
	StatusChangeCount int32
	CreatedAt         time.Time
}
