//go:build e2e

package e2e

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestE2E_Health_DegradedWhenHRDown(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	resp := env.Get("/health", "")
	require.Equal(t, http.StatusOK, resp.Status)

	var health struct {
		Status   string `json:"status"`
		Services struct {
			Database string `json:"database"`
			HRAPI    string `json:"hr_api"`
		} `json:"services"`
	}
	require.NoError(t, resp.Decode(&health))
	assert.Equal(t, "degraded", health.Status)
	assert.Equal(t, "connected", health.Services.Database)
	assert.Equal(t, "disconnected", health.Services.HRAPI)
}

func TestE2E_ChatFlow(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()
	env.SeedPaymentSchedule("PAY-E2E-1", 3)

	start := env.Post("/chat/start", map[string]string{"user_id": "42"}, "")
	require.Equal(t, http.StatusCreated, start.Status, start.Error)

	var session struct {
		SessionID string `json:"session_id"`
		Message   string `json:"message"`
	}
	require.NoError(t, start.Decode(&session))
	require.NotEmpty(t, session.SessionID)
	assert.Contains(t, session.Message, "Kozi Assistant")

	t.Run("payroll falls back to local schedules", func(t *testing.T) {
		resp := env.Post("/chat/message", map[string]string{
			"session_id": session.SessionID,
			"user_id":    "42",
			"message":    "show payroll reminders",
		}, "")
		require.Equal(t, http.StatusOK, resp.Status, resp.Error)

		var reply struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		}
		require.NoError(t, resp.Decode(&reply))
		assert.Equal(t, "payment_reminder", reply.Type)
		assert.NotEmpty(t, reply.Message)
	})

	t.Run("history records the exchange", func(t *testing.T) {
		resp := env.Get("/chat/history/"+session.SessionID, "")
		require.Equal(t, http.StatusOK, resp.Status, resp.Error)

		var page struct {
			Messages []struct {
				Message string `json:"message"`
				Sender  string `json:"sender"`
			} `json:"messages"`
		}
		require.NoError(t, resp.Decode(&page))

		var userMessages []string
		for _, m := range page.Messages {
			if m.Sender == "user" {
				userMessages = append(userMessages, m.Message)
			}
		}
		assert.Equal(t, []string{"show payroll reminders"}, userMessages)
	})

	t.Run("ended session rejects messages", func(t *testing.T) {
		end := env.Post("/chat/end", map[string]string{"session_id": session.SessionID}, "")
		require.Equal(t, http.StatusOK, end.Status, end.Error)

		resp := env.Post("/chat/message", map[string]string{
			"session_id": session.SessionID,
			"user_id":    "42",
			"message":    "hello again",
		}, "")
		assert.Equal(t, http.StatusBadRequest, resp.Status)
	})

	t.Run("unknown session", func(t *testing.T) {
		resp := env.Get("/chat/history/admin_missing", "")
		assert.Equal(t, http.StatusNotFound, resp.Status)
	})
}

func TestE2E_AdminAccess(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	env.SeedUser("1", "admin")
	env.SeedUser("2", "employee")
	env.SeedPaymentSchedule("PAY-E2E-2", 2)

	t.Run("missing identity", func(t *testing.T) {
		resp := env.Get("/admin/payment-reminders", "")
		assert.Equal(t, http.StatusUnauthorized, resp.Status)
	})

	t.Run("non admin", func(t *testing.T) {
		resp := env.Get("/admin/payment-reminders", "2")
		assert.Equal(t, http.StatusForbidden, resp.Status)
	})

	t.Run("admin sees pending payroll", func(t *testing.T) {
		resp := env.Get("/admin/payment-reminders", "1")
		require.Equal(t, http.StatusOK, resp.Status, resp.Error)

		var reminders struct {
			UpcomingPayments []struct {
				ID string `json:"schedule_id"`
			} `json:"upcoming_payments"`
		}
		require.NoError(t, resp.Decode(&reminders))
		require.Len(t, reminders.UpcomingPayments, 1)
		assert.Equal(t, "PAY-E2E-2", reminders.UpcomingPayments[0].ID)
	})

	t.Run("dashboard reports unavailable HR data", func(t *testing.T) {
		resp := env.Get("/admin/dashboard", "1")
		require.Equal(t, http.StatusOK, resp.Status, resp.Error)

		var dash struct {
			Errors map[string]string `json:"errors"`
		}
		require.NoError(t, resp.Decode(&dash))
		assert.NotEmpty(t, dash.Errors)
	})

	t.Run("unknown query type", func(t *testing.T) {
		resp := env.Post("/admin/database/query", map[string]any{"query_type": "salaries"}, "1")
		assert.Equal(t, http.StatusBadRequest, resp.Status)
	})
}
