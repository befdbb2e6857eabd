package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/irihojaphet/kozi-chatbot-admin/internal/api"
	"github.com/irihojaphet/kozi-chatbot-admin/internal/domain"
	"github.com/irihojaphet/kozi-chatbot-admin/internal/service"
)

type ChatService interface {
	StartSession(ctx context.Context, userID, botType string) (*service.StartSessionResult, error)
	SendMessage(ctx context.Context, sessionID, userID, message string) (domain.Reply, error)
	History(ctx context.Context, sessionID string, limit int, cursor string) (*service.HistoryPage, error)
	EndSession(ctx context.Context, sessionID string) error
}

type ChatHandler struct {
	svc ChatService
}

func NewChatHandler(svc ChatService) *ChatHandler {
	return &ChatHandler{svc: svc}
}

type StartChatRequest struct {
	UserID  string `json:"user_id"`
	BotType string `json:"bot_type"`
}

type SendMessageRequest struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
	Message   string `json:"message"`
}

type EndChatRequest struct {
	SessionID string `json:"session_id"`
}

type EndChatResponse struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
}

func (h *ChatHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req StartChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		api.Error(w, http.StatusBadRequest, "user_id is required")
		return
	}

	res, err := h.svc.StartSession(r.Context(), req.UserID, req.BotType)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusCreated, res)
}

func (h *ChatHandler) Message(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SessionID == "" {
		api.Error(w, http.StatusBadRequest, "session_id is required")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		api.Error(w, http.StatusBadRequest, "message is required")
		return
	}

	reply, err := h.svc.SendMessage(r.Context(), req.SessionID, req.UserID, req.Message)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, reply)
}

func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session_id")
	if sessionID == "" {
		api.Error(w, http.StatusBadRequest, "session_id is required")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			api.Error(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	page, err := h.svc.History(r.Context(), sessionID, limit, r.URL.Query().Get("cursor"))
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, page)
}

func (h *ChatHandler) End(w http.ResponseWriter, r *http.Request) {
	var req EndChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SessionID == "" {
		api.Error(w, http.StatusBadRequest, "session_id is required")
		return
	}

	if err := h.svc.EndSession(r.Context(), req.SessionID); err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, EndChatResponse{SessionID: req.SessionID, Status: "ended"})
}
