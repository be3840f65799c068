package analytics

import (
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/{monitorID}/summary", h.GetSummary)
	r.Get("/{monitorID}/series", h.GetSeries)

	return r
}

/*
- GET: /analytics/{monitorID}/summary?window_hours={} -> uptime %, avg/p95 latency
- GET: /analytics/{monitorID}/series?window_hours={}&bucket_minutes={} -> bucketed series
*/
