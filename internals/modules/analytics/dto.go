package analytics

import "time"

type SummaryResponse struct {
	MonitorID     string  `json:"monitor_id"`
	WindowHours   int     `json:"window_hours"`
	TotalChecks   int64   `json:"total_checks"`
	UpChecks      int64   `json:"up_checks"`
	UptimePercent float64 `json:"uptime_percent"`
	AvgLatencyMs  float64 `json:"avg_latency_ms"`
	P95LatencyMs  float64 `json:"p95_latency_ms"`
}

type SeriesPoint struct {
	BucketStart  time.Time `json:"bucket_start"`
	TotalChecks  int64     `json:"total_checks"`
	UpChecks     int64     `json:"up_checks"`
	AvgLatencyMs float64   `json:"avg_latency_ms"`
}

type SeriesResponse struct {
	MonitorID     string        `json:"monitor_id"`
	WindowHours   int           `json:"window_hours"`
	BucketMinutes int           `json:"bucket_minutes"`
	Points        []SeriesPoint `json:"points"`
}
