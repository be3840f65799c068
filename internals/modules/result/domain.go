package result

import (
	"time"

	"apiwatch/internals/modules/probe"

	"github.com/google/uuid"
)

// ProbeLog is one immutable observation of a monitor. Rows are append
// only; the newest row per monitor drives transition detection.
type ProbeLog struct {
	ID             int64
	MonitorID      uuid.UUID
	Status         probe.Status
	StatusCode     int32
	ResponseTimeMs int32
	CheckedAt      time.Time
}

// UptimeStats is the aggregate view over a monitor's recent logs.
type UptimeStats struct {
	MonitorID     uuid.UUID
	TotalChecks   int64
	UpChecks      int64
	UptimePercent float64
	AvgLatencyMs  float64
	P95LatencyMs  float64
}

// TimeBucket is one point of the bucketed series for charts.
type TimeBucket struct {
	BucketStart  time.Time
	TotalChecks  int64
	UpChecks     int64
	AvgLatencyMs float64
}
