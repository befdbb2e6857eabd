package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/irihojaphet/kozi-chatbot-admin/internal/domain"
	"github.com/irihojaphet/kozi-chatbot-admin/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestAdminHandler_PaymentReminders_Success(t *testing.T) {
	svc := new(MockAdminService)
	svc.On("PaymentReminders", mock.Anything).Return(&service.PaymentRemindersResult{
		UpcomingPayments: []domain.PaymentSchedule{{ID: "PAY-1", PaymentPeriod: "March 2025", TotalAmount: 2500000}},
		OverdueSummary:   domain.OverdueSummary{Count: 1, Amount: 300000},
		TotalPending:     1,
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/admin/payment-reminders", nil)
	w := httptest.NewRecorder()

	NewAdminHandler(svc, nil).PaymentReminders(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var got service.PaymentRemindersResult
	decodeData(t, w, &got)
	assert.Equal(t, 1, got.TotalPending)
	assert.Equal(t, "PAY-1", got.UpcomingPayments[0].ID)
}

func TestAdminHandler_PaymentReminders_Error(t *testing.T) {
	svc := new(MockAdminService)
	svc.On("PaymentReminders", mock.Anything).Return(nil, errors.New("relation does not exist"))

	req := httptest.NewRequest(http.MethodGet, "/admin/payment-reminders", nil)
	w := httptest.NewRecorder()

	NewAdminHandler(svc, nil).PaymentReminders(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "relation")
}

func TestAdminHandler_QueryDatabase_Filters(t *testing.T) {
	svc := new(MockAdminService)
	query := service.DatabaseQuery{QueryType: "employees", Filters: service.DatabaseFilter{Location: "Kigali", Department: "Cleaning"}}
	svc.On("QueryDatabase", mock.Anything, query).Return(&domain.EmployeeQueryResult{Total: 3, Locations: 1, Departments: 1}, nil)

	body := `{"query_type":"employees","filters":{"location":"Kigali","department":"Cleaning"}}`
	req := httptest.NewRequest(http.MethodPost, "/admin/database/query", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	NewAdminHandler(svc, nil).QueryDatabase(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var got domain.EmployeeQueryResult
	decodeData(t, w, &got)
	assert.Equal(t, 3, got.Total)
	svc.AssertExpectations(t)
}

func TestAdminHandler_QueryDatabase_EmptyBodyMeansOverview(t *testing.T) {
	svc := new(MockAdminService)
	svc.On("QueryDatabase", mock.Anything, service.DatabaseQuery{}).Return(&service.OverviewResult{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/admin/database/query", http.NoBody)
	w := httptest.NewRecorder()

	NewAdminHandler(svc, nil).QueryDatabase(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestAdminHandler_QueryDatabase_UnknownType(t *testing.T) {
	svc := new(MockAdminService)
	svc.On("QueryDatabase", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("%q: %w", "payroll", domain.ErrInvalidQueryType))

	req := httptest.NewRequest(http.MethodPost, "/admin/database/query", bytes.NewBufferString(`{"query_type":"payroll"}`))
	w := httptest.NewRecorder()

	NewAdminHandler(svc, nil).QueryDatabase(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid query type")
}

func TestAdminHandler_QueryDatabase_InvalidJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/admin/database/query", bytes.NewBufferString(`{"query_type":`))
	w := httptest.NewRecorder()

	NewAdminHandler(new(MockAdminService), nil).QueryDatabase(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminHandler_ProcessEmail(t *testing.T) {
	svc := new(MockAdminService)
	svc.On("ProcessEmail", mock.Anything, "draft_replies").Return(&service.DraftRepliesResult{
		PendingEmails: []domain.PendingEmail{},
		Action:        "drafts_ready",
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/admin/gmail/process", bytes.NewBufferString(`{"action":"draft_replies"}`))
	w := httptest.NewRecorder()

	NewAdminHandler(svc, nil).ProcessEmail(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var got service.DraftRepliesResult
	decodeData(t, w, &got)
	assert.Equal(t, "drafts_ready", got.Action)
}

func TestAdminHandler_ProcessEmail_UnknownAction(t *testing.T) {
	svc := new(MockAdminService)
	svc.On("ProcessEmail", mock.Anything, "archive").Return(nil, fmt.Errorf("%q: %w", "archive", domain.ErrInvalidAction))

	req := httptest.NewRequest(http.MethodPost, "/admin/gmail/process", bytes.NewBufferString(`{"action":"archive"}`))
	w := httptest.NewRecorder()

	NewAdminHandler(svc, nil).ProcessEmail(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminHandler_Analytics_PassesPeriod(t *testing.T) {
	svc := new(MockAdminService)
	svc.On("Analytics", mock.Anything, "weekly").Return(&service.AnalyticsResult{Period: "weekly"}, nil)

	req := httptest.NewRequest(http.MethodGet, "/admin/analytics?period=weekly", nil)
	w := httptest.NewRecorder()

	NewAdminHandler(svc, nil).Analytics(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var got service.AnalyticsResult
	decodeData(t, w, &got)
	assert.Equal(t, "weekly", got.Period)
}

func TestAdminHandler_Dashboard_PartialResults(t *testing.T) {
	dash := new(MockDashboardProvider)
	dash.On("Snapshot", mock.Anything).Return(&service.DashboardSnapshot{
		HR:          service.DashboardHR{TotalJobs: 2},
		Errors:      map[string]string{"payroll": "hr api unavailable"},
		LastUpdated: time.Date(2025, 3, 26, 9, 0, 0, 0, time.UTC),
	})

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	w := httptest.NewRecorder()

	NewAdminHandler(new(MockAdminService), dash).Dashboard(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var got service.DashboardSnapshot
	decodeData(t, w, &got)
	assert.Equal(t, 2, got.HR.TotalJobs)
	assert.Equal(t, "hr api unavailable", got.Errors["payroll"])
}
