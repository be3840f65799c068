package alert

import (
	"time"

	"github.com/google/uuid"
)

// Alert is the audit record of a notification attempt. ErrorDetail is empty
// when the email went out cleanly.
type Alert struct {
	ID          int64
	MonitorID   uuid.UUID
	Reason      string
	ErrorDetail string
	TriggeredAt time.Time
}
