package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/irihojaphet/kozi-chatbot-admin/internal/api"
	"github.com/irihojaphet/kozi-chatbot-admin/internal/service"
)

type AdminService interface {
	PaymentReminders(ctx context.Context) (*service.PaymentRemindersResult, error)
	QueryDatabase(ctx context.Context, q service.DatabaseQuery) (any, error)
	ProcessEmail(ctx context.Context, action string) (any, error)
	Analytics(ctx context.Context, period string) (*service.AnalyticsResult, error)
}

type DashboardProvider interface {
	Snapshot(ctx context.Context) *service.DashboardSnapshot
}

// AdminHandler serves the admin reporting views. All routes sit behind
// AdminAuth.
type AdminHandler struct {
	svc       AdminService
	dashboard DashboardProvider
}

func NewAdminHandler(svc AdminService, dashboard DashboardProvider) *AdminHandler {
	return &AdminHandler{svc: svc, dashboard: dashboard}
}

type ProcessEmailRequest struct {
	Action string `json:"action"`
}

func (h *AdminHandler) PaymentReminders(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.PaymentReminders(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, res)
}

func (h *AdminHandler) QueryDatabase(w http.ResponseWriter, r *http.Request) {
	var req service.DatabaseQuery
	if err := decodeOptionalBody(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.svc.QueryDatabase(r.Context(), req)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, res)
}

func (h *AdminHandler) ProcessEmail(w http.ResponseWriter, r *http.Request) {
	var req ProcessEmailRequest
	if err := decodeOptionalBody(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.svc.ProcessEmail(r.Context(), req.Action)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, res)
}

func (h *AdminHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Analytics(r.Context(), r.URL.Query().Get("period"))
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, res)
}

// Dashboard always answers 200; sources that failed are listed in the
// snapshot's errors map.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	api.Success(w, http.StatusOK, h.dashboard.Snapshot(r.Context()))
}

// decodeOptionalBody decodes a JSON body, treating an empty body as the zero
// value.
func decodeOptionalBody(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
