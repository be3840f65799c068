package alert

import "time"

type AlertResponse struct {
	ID          int64     `json:"id"`
	MonitorID   string    `json:"monitor_id"`
	Reason      string    `json:"reason"`
	ErrorDetail string    `json:"error_detail,omitempty"`
	TriggeredAt time.Time `json:"triggered_at"`
}

type ListAlertsResponse struct {
	Alerts []AlertResponse `json:"alerts"`
	Limit  int32           `json:"limit"`
	Offset int32           `json:"offset"`
}
