package analytics

import (
	"net/http"
	"strconv"
	"time"

	middle "apiwatch/internals/middleware"
	"apiwatch/pkg/apperror"
	"apiwatch/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := middleware.GetReqID(ctx)
	user, ok := middle.UserFromContext(ctx)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, reqID, apperror.Unauthorised, "")
		return
	}

	monitorID, err := uuid.Parse(chi.URLParam(r, "monitorID"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, reqID, apperror.InvalidInput, "invalid monitor id")
		return
	}

	windowHours := queryInt(r, "window_hours", 24, 1, 24*30)

	stats, err := h.service.UptimeSummary(ctx, user.UserID, monitorID, time.Duration(windowHours)*time.Hour)
	if err != nil {
		utils.FromAppError(w, reqID, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, reqID, "uptime summary retrieved", SummaryResponse{
		MonitorID:     monitorID.String(),
		WindowHours:   windowHours,
		TotalChecks:   stats.TotalChecks,
		UpChecks:      stats.UpChecks,
		UptimePercent: stats.UptimePercent,
		AvgLatencyMs:  stats.AvgLatencyMs,
		P95LatencyMs:  stats.P95LatencyMs,
	})
}

func (h *Handler) GetSeries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := middleware.GetReqID(ctx)
	user, ok := middle.UserFromContext(ctx)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, reqID, apperror.Unauthorised, "")
		return
	}

	monitorID, err := uuid.Parse(chi.URLParam(r, "monitorID"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, reqID, apperror.InvalidInput, "invalid monitor id")
		return
	}

	windowHours := queryInt(r, "window_hours", 24, 1, 24*30)
	bucketMinutes := queryInt(r, "bucket_minutes", 60, 1, 24*60)

	buckets, err := h.service.LatencySeries(ctx, user.UserID, monitorID,
		time.Duration(windowHours)*time.Hour,
		time.Duration(bucketMinutes)*time.Minute,
	)
	if err != nil {
		utils.FromAppError(w, reqID, err)
		return
	}

	resp := SeriesResponse{
		MonitorID:     monitorID.String(),
		WindowHours:   windowHours,
		BucketMinutes: bucketMinutes,
		Points:        make([]SeriesPoint, 0, len(buckets)),
	}
	for _, b := range buckets {
		resp.Points = append(resp.Points, SeriesPoint{
			BucketStart:  b.BucketStart,
			TotalChecks:  b.TotalChecks,
			UpChecks:     b.UpChecks,
			AvgLatencyMs: b.AvgLatencyMs,
		})
	}

	utils.WriteJSON(w, http.StatusOK, reqID, "latency series retrieved", resp)
}

func queryInt(r *http.Request, key string, def, min, max int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < min || v > max {
		return def
	}
	return v
}
