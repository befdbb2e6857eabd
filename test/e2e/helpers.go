//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/irihojaphet/kozi-chatbot-admin/internal/api/handlers"
	"github.com/irihojaphet/kozi-chatbot-admin/internal/hrapi"
	"github.com/irihojaphet/kozi-chatbot-admin/internal/repository"
	"github.com/irihojaphet/kozi-chatbot-admin/internal/server"
	"github.com/irihojaphet/kozi-chatbot-admin/internal/service"
	"github.com/irihojaphet/kozi-chatbot-admin/internal/testutil"
	"github.com/jackc/pgx/v5/pgxpool"
)

// E2ETestEnv holds all resources needed for E2E tests
type E2ETestEnv struct {
	T          *testing.T
	Ctx        context.Context
	PostgresC  *testutil.PostgresContainer
	Pool       *pgxpool.Pool
	HRServer   *httptest.Server
	Server     *httptest.Server
	HTTPClient *http.Client
}

// APIResponse mirrors the API envelope.
type APIResponse struct {
	Status int
	Data   json.RawMessage `json:"data"`
	Error  string          `json:"error"`
}

// SetupE2EEnv starts Postgres, a stand-in HR platform that is down, and the
// API server wired the way koziadmind serve wires it.
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	hrSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"maintenance"}`, http.StatusServiceUnavailable)
	}))

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	hr := hrapi.NewClient(hrapi.Config{
		BaseURL:  hrSrv.URL,
		Email:    "admin@kozi.rw",
		Password: "secret",
		Timeout:  2 * time.Second,
		Logger:   logger,
	})

	chatRepo := repository.NewChatRepository(pool)
	localRepo := repository.NewLocalDataRepository(pool)

	assistant := service.NewAssistantService(service.AssistantDeps{
		HR:        hr,
		Local:     localRepo,
		Responder: service.NewRetrievalService(nil, nil, logger),
		Sessions:  chatRepo,
		Logger:    logger,
	})

	router := server.NewRouter(server.RouterConfig{
		AdminLookup:   repository.NewAdminRepository(pool),
		Logger:        logger,
		HealthHandler: handlers.NewHealthHandler(pool, hr),
		ChatHandler: handlers.NewChatHandler(
			service.NewChatService(chatRepo, repository.NewTxRunner(pool), assistant, logger),
		),
		AdminHandler: handlers.NewAdminHandler(
			service.NewAdminService(localRepo, logger),
			service.NewDashboardService(hr, localRepo, chatRepo, logger),
		),
		HRHandler: handlers.NewHRHandler(hr),
	})

	return &E2ETestEnv{
		T:          t,
		Ctx:        ctx,
		PostgresC:  pgC,
		Pool:       pool,
		HRServer:   hrSrv,
		Server:     httptest.NewServer(router),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Cleanup releases all resources
func (e *E2ETestEnv) Cleanup() {
	if e.Server != nil {
		e.Server.Close()
	}
	if e.HRServer != nil {
		e.HRServer.Close()
	}
	if e.Pool != nil {
		e.Pool.Close()
	}
	if e.PostgresC != nil {
		e.PostgresC.Terminate(e.Ctx)
	}
}

// SeedUser inserts a user profile of the given type.
func (e *E2ETestEnv) SeedUser(userID, userType string) {
	_, err := e.Pool.Exec(e.Ctx,
		`INSERT INTO user_profiles (user_id, email, user_type, full_name) VALUES ($1, $2, $3, $4)`,
		userID, userID+"@kozi.rw", userType, "User "+userID)
	if err != nil {
		e.T.Fatalf("failed to seed user %s: %v", userID, err)
	}
}

// SeedPaymentSchedule inserts a pending payroll run due in the given number of days.
func (e *E2ETestEnv) SeedPaymentSchedule(id string, dueInDays int) {
	_, err := e.Pool.Exec(e.Ctx,
		`INSERT INTO payment_schedules (schedule_id, employee_count, total_amount, due_date, payment_period)
		 VALUES ($1, 12, 2500000, CURRENT_DATE + $2::int, 'March 2025')`,
		id, dueInDays)
	if err != nil {
		e.T.Fatalf("failed to seed payment schedule: %v", err)
	}
}

// Get performs a GET request as userID. An empty userID sends no identity.
func (e *E2ETestEnv) Get(path, userID string) *APIResponse {
	return e.do(http.MethodGet, path, nil, userID)
}

// Post performs a POST request with a JSON body as userID.
func (e *E2ETestEnv) Post(path string, body any, userID string) *APIResponse {
	return e.do(http.MethodPost, path, body, userID)
}

func (e *E2ETestEnv) do(method, path string, body any, userID string) *APIResponse {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			e.T.Fatalf("failed to marshal body: %v", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(e.Ctx, method, e.Server.URL+path, reqBody)
	if err != nil {
		e.T.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		e.T.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		e.T.Fatalf("failed to read response: %v", err)
	}

	out := &APIResponse{Status: resp.StatusCode}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			e.T.Fatalf("failed to parse response %s: %v", raw, err)
		}
	}
	return out
}

// Decode unmarshals the data envelope into v.
func (r *APIResponse) Decode(v any) error {
	if err := json.Unmarshal(r.Data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", r.Data, err)
	}
	return nil
}
