package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/irihojaphet/kozi-chatbot-admin/internal/api"
	"github.com/irihojaphet/kozi-chatbot-admin/internal/domain"
)

type contextKey string

const (
	UserIDKey   contextKey = "user_id"
	UserTypeKey contextKey = "user_type"
)

// UserIDHeader carries the caller's platform user id.
const UserIDHeader = "X-User-ID"

// AdminLookup resolves active admin accounts.
type AdminLookup interface {
	GetActiveAdmin(ctx context.Context, userID string) (*domain.AdminUser, error)
	TouchLogin(ctx context.Context, userID string) error
}

// AdminAuth admits requests whose X-User-ID header (or user_id query
// parameter) names an active admin or super_admin.
func AdminAuth(lookup AdminLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := strings.TrimSpace(r.Header.Get(UserIDHeader))
			if userID == "" {
				userID = strings.TrimSpace(r.URL.Query().Get("user_id"))
			}
			if userID == "" {
				api.HandleError(w, domain.ErrMissingUserID)
				return
			}

			admin, err := lookup.GetActiveAdmin(r.Context(), userID)
			if err != nil {
				if errors.Is(err, domain.ErrAdminNotFound) {
					api.HandleError(w, domain.ErrNotAdmin)
					return
				}
				slog.Error("admin lookup failed", "user_id", userID, "error", err)
				api.Error(w, http.StatusInternalServerError, "authentication failed")
				return
			}

			if err := lookup.TouchLogin(r.Context(), admin.UserID); err != nil {
				slog.Warn("failed to record admin login", "user_id", admin.UserID, "error", err)
			}

			// Outer middleware reads the header once the request has returned.
			r.Header.Set(UserIDHeader, admin.UserID)
			ctx := context.WithValue(r.Context(), UserIDKey, admin.UserID)
			ctx = context.WithValue(ctx, UserTypeKey, admin.UserType)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetUserID(ctx context.Context) string {
	userID, _ := ctx.Value(UserIDKey).(string)
	return userID
}

func GetUserType(ctx context.Context) string {
	userType, _ := ctx.Value(UserTypeKey).(string)
	return userType
}
