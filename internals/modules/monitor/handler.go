package monitor

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	middle "apiwatch/internals/middleware"
	"apiwatch/pkg/apperror"
	"apiwatch/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service, validator *validator.Validate) *Handler {
	return &Handler{
		service:   service,
		validator: validator,
	}
}

func (h *Handler) CreateMonitor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := middleware.GetReqID(ctx)
	user, ok := middle.UserFromContext(ctx)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, reqID, apperror.Unauthorised, "")
		return
	}

	// decode request body
	var req CreateMonitorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, reqID, apperror.InvalidInput, "")
		return
	}

	// validate request body
	if err := h.validator.Struct(req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, reqID, apperror.InvalidInput, err.Error())
		return
	}

	mID, err := h.service.CreateMonitor(ctx, CreateMonitorCmd{
		UserID:          user.UserID,
		URL:             req.URL,
		IntervalMinutes: req.IntervalMinutes,
		AlertThreshold:  req.AlertThreshold,
	})
	if err != nil {
		utils.FromAppError(w, reqID, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, reqID, "monitor created successfully", mID)
}

func (h *Handler) GetMonitor(w http.ResponseWriter, r *http.Request) {
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

	mon, err := h.service.GetMonitor(ctx, user.UserID, monitorID)
	if err != nil {
		utils.FromAppError(w, reqID, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, reqID, "monitor retrieved", toMonitorResponse(mon))
}

// /monitors?offset=0&limit=20
func (h *Handler) GetAllMonitors(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := middleware.GetReqID(ctx)
	user, ok := middle.UserFromContext(ctx)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, reqID, apperror.Unauthorised, "")
		return
	}

	limit := queryInt32(r, "limit", 20)
	offset := queryInt32(r, "offset", 0)

	monitors, err := h.service.GetAllMonitors(ctx, user.UserID, limit, offset)
	if err != nil {
		utils.FromAppError(w, reqID, err)
		return
	}

	m := make([]GetMonitorResponse, 0, len(monitors))
	for i := range monitors {
		m = append(m, toMonitorResponse(monitors[i]))
	}

	resp := GetAllMonitorsResponse{
		UserID:   user.UserID.String(),
		Limit:    limit,
		Offset:   offset,
		Monitors: m,
	}

	utils.WriteJSON(w, http.StatusOK, reqID, "", resp)
}

func (h *Handler) UpdateMonitor(w http.ResponseWriter, r *http.Request) {
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

	var req UpdateMonitorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, reqID, apperror.InvalidInput, "")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, reqID, apperror.InvalidInput, err.Error())
		return
	}

	err = h.service.UpdateMonitor(ctx, UpdateMonitorCmd{
		UserID:          user.UserID,
		MonitorID:       monitorID,
		URL:             req.URL,
		IntervalMinutes: req.IntervalMinutes,
		AlertThreshold:  req.AlertThreshold,
		IsActive:        req.IsActive,
	})
	if err != nil {
		utils.FromAppError(w, reqID, err)
		return
	}

	utils.WriteJSON[any](w, http.StatusOK, reqID, "monitor updated", nil)
}

// Patch : /monitors/{monitorID}/active  { "active": false }
func (h *Handler) SetMonitorActive(w http.ResponseWriter, r *http.Request) {
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

	var req SetActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, reqID, apperror.InvalidInput, "")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, reqID, apperror.InvalidInput, err.Error())
		return
	}

	if err := h.service.SetMonitorActive(ctx, user.UserID, monitorID, *req.Active); err != nil {
		utils.FromAppError(w, reqID, err)
		return
	}

	utils.WriteJSON[any](w, http.StatusOK, reqID, "monitor status updated", nil)
}

func (h *Handler) DeleteMonitor(w http.ResponseWriter, r *http.Request) {
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

	if err := h.service.DeleteMonitor(ctx, user.UserID, monitorID); err != nil {
		utils.FromAppError(w, reqID, err)
		return
	}

	utils.WriteJSON[any](w, http.StatusOK, reqID, "monitor deleted", nil)
}

func (h *Handler) GetLatestStatus(w http.ResponseWriter, r *http.Request) {
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

	status, err := h.service.GetLatestStatus(ctx, user.UserID, monitorID)
	if err != nil {
		utils.FromAppError(w, reqID, err)
		return
	}

	resp := LatestStatusResponse{
		Status:     status["status"],
		StatusCode: status["status_code"],
		LatencyMs:  status["latency_ms"],
		CheckedAt:  status["checked_at"],
	}

	utils.WriteJSON(w, http.StatusOK, reqID, "latest status retrieved", resp)
}

func toMonitorResponse(m Monitor) GetMonitorResponse {
	resp := GetMonitorResponse{
		ID:                m.ID.String(),
		URL:               m.URL,
		IntervalMinutes:   m.IntervalMinutes,
		AlertThreshold:    m.AlertThreshold,
		IsActive:          m.IsActive,
		StatusChangeCount: m.StatusChangeCount,
	}
	if !m.LastCheckedAt.IsZero() {
		resp.LastCheckedAt = m.LastCheckedAt.UTC().Format(time.RFC3339)
	}
	if !m.LastAlertSentAt.IsZero() {
		resp.LastAlertSentAt = m.LastAlertSentAt.UTC().Format(time.RFC3339)
	}
	return resp
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
