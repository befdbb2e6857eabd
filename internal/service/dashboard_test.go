package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/irihojaphet/kozi-chatbot-admin/internal/domain"
	"github.com/irihojaphet/kozi-chatbot-admin/internal/hrapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

var dashboardNow = time.Date(2025, 3, 26, 15, 0, 0, 0, time.UTC)

func newTestDashboard(hr DashboardHRSource, local DashboardLocalStore, sessions SessionCounter) *DashboardService {
	s := NewDashboardService(hr, local, sessions, nil)
	s.now = func() time.Time { return dashboardNow }
	return s
}

func dashboardPayroll() []domain.PayrollRecord {
	return []domain.PayrollRecord{
		{Period: "March A", Amount: 100, DueDate: dashboardNow.Add(24 * time.Hour), Status: "pending"},
		{Period: "March B", Amount: 200, DueDate: dashboardNow.Add(10 * 24 * time.Hour), Status: "pending"},
		{Period: "February", Amount: 300, DueDate: dashboardNow.Add(-48 * time.Hour), Status: "pending"},
		{Period: "January", Amount: 400, DueDate: dashboardNow.Add(-30 * 24 * time.Hour), Status: "paid"},
	}
}

func TestDashboardService_Snapshot(t *testing.T) {
	opts := hrapi.FetchOptions{UseCache: true}

	hr := new(MockHRDataSource)
	hr.On("GetAllJobs", mock.Anything, opts).Return([]domain.Job{{ID: "1"}, {ID: "2"}}, nil)
	hr.On("GetAllJobSeekers", mock.Anything, opts).Return([]domain.JobSeeker{
		{ID: "1", Status: "active"},
		{ID: "2", IsActive: true},
		{ID: "3"},
	}, nil)
	hr.On("GetIncompleteProfiles", mock.Anything, opts).Return([]domain.IncompleteProfile{
		{ID: "3", Completion: 40},
		{ID: "4", Completion: 60},
	}, nil)
	hr.On("GetPayrollData", mock.Anything, opts).Return(dashboardPayroll(), nil)

	local := new(MockLocalData)
	local.On("OverviewStats", mock.Anything).Return(domain.OverviewStats{TotalEmployees: 40, TotalEmployers: 12}, nil)
	local.On("PendingTasks", mock.Anything).Return(domain.PendingTasks{UpcomingPayments: 3, HighPriorityEmails: 1}, nil)

	sessions := new(MockSessionCounter)
	midnight := time.Date(2025, 3, 26, 0, 0, 0, 0, time.UTC)
	sessions.On("CountSessionsSince", mock.Anything, domain.BotTypeAdmin, midnight).Return(5, nil)

	snap := newTestDashboard(hr, local, sessions).Snapshot(context.Background())

	assert.Empty(t, snap.Errors)
	assert.Equal(t, DashboardHR{
		TotalJobs:          2,
		TotalJobSeekers:    3,
		ActiveJobSeekers:   2,
		IncompleteProfiles: 2,
		AverageCompletion:  50,
		PayrollRecords:     4,
		PendingPayroll:     2,
		UrgentPayroll:      1,
		OverduePayroll:     1,
	}, snap.HR)
	assert.Equal(t, 40, snap.Overview.TotalEmployees)
	assert.Equal(t, 3, snap.PendingTasks.UpcomingPayments)
	assert.Equal(t, 5, snap.Activity.AdminSessionsToday)
	assert.Equal(t, dashboardNow, snap.LastUpdated)
}

func TestDashboardService_Snapshot_PartialFailure(t *testing.T) {
	hr := new(MockHRDataSource)
	hr.On("GetAllJobs", mock.Anything, mock.Anything).Return(nil, domain.ErrUpstreamUnavailable)
	hr.On("GetAllJobSeekers", mock.Anything, mock.Anything).Return([]domain.JobSeeker{{ID: "1", Status: "active"}}, nil)
	hr.On("GetIncompleteProfiles", mock.Anything, mock.Anything).Return(nil, nil)
	hr.On("GetPayrollData", mock.Anything, mock.Anything).Return(nil, domain.ErrAuthFailed)

	local := new(MockLocalData)
	local.On("OverviewStats", mock.Anything).Return(domain.OverviewStats{}, errors.New("relation does not exist"))
	local.On("PendingTasks", mock.Anything).Return(domain.PendingTasks{PendingVerifications: 2}, nil)

	snap := newTestDashboard(hr, local, nil).Snapshot(context.Background())

	assert.Len(t, snap.Errors, 3)
	assert.Equal(t, domain.ErrUpstreamUnavailable.Error(), snap.Errors[ResourceJobs])
	assert.Equal(t, domain.ErrAuthFailed.Error(), snap.Errors[ResourcePayroll])
	assert.Equal(t, "relation does not exist", snap.Errors[ResourceOverview])
	assert.Equal(t, 1, snap.HR.TotalJobSeekers)
	assert.Equal(t, 1, snap.HR.ActiveJobSeekers)
	assert.Zero(t, snap.HR.TotalJobs)
	assert.Zero(t, snap.HR.PayrollRecords)
	assert.Equal(t, 2, snap.PendingTasks.PendingVerifications)
}

func TestDashboardService_Snapshot_NoSources(t *testing.T) {
	snap := newTestDashboard(nil, nil, nil).Snapshot(context.Background())

	assert.Nil(t, snap.Errors)
	assert.Equal(t, DashboardHR{}, snap.HR)
	assert.Equal(t, dashboardNow, snap.LastUpdated)
}
