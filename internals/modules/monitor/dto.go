package monitor

type CreateMonitorRequest struct {
	URL             string `json:"url" validate:"required,url"`
	IntervalMinutes int32  `json:"interval_minutes" validate:"required,gte=1,lte=60"`
	AlertThreshold  int32  `json:"alert_threshold" validate:"required,gte=1,lte=10"`
}

type UpdateMonitorRequest struct {
	URL             string `json:"url" validate:"required,url"`
	IntervalMinutes int32  `json:"interval_minutes" validate:"required,gte=1,lte=60"`
	AlertThreshold  int32  `json:"alert_threshold" validate:"required,gte=1,lte=10"`
	IsActive        bool   `json:"is_active"`
}

type SetActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

type GetMonitorResponse struct {
	ID                string `json:"id"`
	URL               string `json:"url"`
	IntervalMinutes   int32  `json:"interval_minutes"`
	AlertThreshold    int32  `json:"alert_threshold"`
	IsActive          bool   `json:"is_active"`
	LastCheckedAt     string `json:"last_checked_at,omitempty"`
	LastAlertSentAt   string `json:"last_alert_sent_at,omitempty"`
	StatusChangeCount int32  `json:"status_change_count"`
}

type GetAllMonitorsResponse struct {
	UserID   string               `json:"user_id"`
	Limit    int32                `json:"limit"`
	Offset   int32                `json:"offset"`
	Monitors []GetMonitorResponse `json:"monitors"`
}

type LatestStatusResponse struct {
	Status     string `json:"status,omitempty"`
	StatusCode string `json:"status_code,omitempty"`
	LatencyMs  string `json:"latency_ms,omitempty"`
	CheckedAt  string `json:"checked_at,omitempty"`
}
