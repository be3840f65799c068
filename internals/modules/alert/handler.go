package alert

import (
	"net/http"
	"strconv"

	middle "apiwatch/internals/middleware"
	"apiwatch/pkg/apperror"
	"apiwatch/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Handler struct {
	repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := middleware.GetReqID(ctx)
	user, ok := middle.UserFromContext(ctx)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, reqID, apperror.Unauthorised, "")
		return
	}

	limit := queryInt32(r, "limit", 20)
	offset := queryInt32(r, "offset", 0)
	if limit > 100 {
		limit = 100
	}

	alerts, err := h.repo.ListByUser(ctx, user.UserID, limit, offset)
	if err != nil {
		utils.FromAppError(w, reqID, err)
		return
	}

	resp := ListAlertsResponse{
		Alerts: make([]AlertResponse, 0, len(alerts)),
		Limit:  limit,
		Offset: offset,
	}
	for _, a := range alerts {
		resp.Alerts = append(resp.Alerts, AlertResponse{
			ID:          a.ID,
			MonitorID:   a.MonitorID.String(),
			Reason:      a.Reason,
			ErrorDetail: a.ErrorDetail,
			TriggeredAt: a.TriggeredAt,
		})
	}

	utils.WriteJSON(w, http.StatusOK, reqID, "alerts retrieved", resp)
}

func (h *Handler) DeleteAlert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := middleware.GetReqID(ctx)
	user, ok := middle.UserFromContext(ctx)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, reqID, apperror.Unauthorised, "")
		return
	}

	alertID, err := strconv.ParseInt(chi.URLParam(r, "alertID"), 10, 64)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, reqID, apperror.InvalidInput, "invalid alert id")
		return
	}

	if err := h.repo.Delete(ctx, user.UserID, alertID); err != nil {
		utils.FromAppError(w, reqID, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, reqID, "alert deleted successfully", alertID)
}

func queryInt32(r *http.Request, key string, def int32) int32 {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || v < 0 {
		return def
	}
	return int32(v)
}
