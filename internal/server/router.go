package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/irihojaphet/kozi-chatbot-admin/internal/api"
	"github.com/irihojaphet/kozi-chatbot-admin/internal/api/handlers"
	"github.com/irihojaphet/kozi-chatbot-admin/internal/api/middleware"
)

type RouterConfig struct {
	AdminLookup      middleware.AdminLookup
	Logger           *slog.Logger
	HealthHandler    *handlers.HealthHandler
	ChatHandler      *handlers.ChatHandler
	AdminHandler     *handlers.AdminHandler
	KnowledgeHandler *handlers.KnowledgeHandler
	HRHandler        *handlers.HRHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 5 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog(cfg.Logger))
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		api.Error(w, http.StatusNotFound, r.Method+" "+r.URL.Path+" is not a valid endpoint")
	})

	r.Get("/health", cfg.HealthHandler.Health)
	r.Get("/health/db", cfg.HealthHandler.Database)

	r.Route("/chat", func(r chi.Router) {
		r.Post("/start", cfg.ChatHandler.Start)
		r.Post("/message", cfg.ChatHandler.Message)
		r.Get("/history/{session_id}", cfg.ChatHandler.History)
		r.Post("/end", cfg.ChatHandler.End)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.AdminAuth(cfg.AdminLookup))

		r.Get("/payment-reminders", cfg.AdminHandler.PaymentReminders)
		r.Post("/database/query", cfg.AdminHandler.QueryDatabase)
		r.Post("/gmail/process", cfg.AdminHandler.ProcessEmail)
		r.Get("/analytics", cfg.AdminHandler.Analytics)
		r.Get("/dashboard", cfg.AdminHandler.Dashboard)

		r.Post("/knowledge/search", cfg.KnowledgeHandler.Search)
		r.Post("/knowledge/reload", cfg.KnowledgeHandler.Reload)

		r.Route("/hr", func(r chi.Router) {
			r.Get("/status", cfg.HRHandler.Status)
			r.Get("/response-times", cfg.HRHandler.ResponseTimes)
			r.Post("/cache/clear", cfg.HRHandler.ClearCache)
		})
	})

	return r
}
