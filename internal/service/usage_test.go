package service

import (
	"context"
	"testing"
	"time"

	"github.com/ewaller/leadloop/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthBounds(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	tests := []struct {
		name      string
		asOf      time.Time
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "mid month",
			asOf:      time.Date(2025, time.June, 15, 12, 30, 0, 0, time.UTC),
			wantStart: time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "last instant of month stays inside",
			asOf:      time.Date(2025, time.June, 30, 23, 59, 59, 999000000, time.UTC),
			wantStart: time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "first instant of next month rolls over",
			asOf:      time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC),
			wantStart: time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "december wraps the year",
			asOf:      time.Date(2025, time.December, 20, 8, 0, 0, 0, time.UTC),
			wantStart: time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "local timezone is preserved",
			asOf:      time.Date(2025, time.March, 10, 6, 0, 0, 0, loc),
			wantStart: time.Date(2025, time.March, 1, 0, 0, 0, 0, loc),
			wantEnd:   time.Date(2025, time.April, 1, 0, 0, 0, 0, loc),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := MonthBounds(tt.asOf)
			assert.True(t, start.Equal(tt.wantStart), "start = %v, want %v", start, tt.wantStart)
			assert.True(t, end.Equal(tt.wantEnd), "end = %v, want %v", end, tt.wantEnd)
		})
	}
}

func TestGetUsageSummary_FreePlan(t *testing.T) {
	fq := newFakeQuerier()
	svc := NewUsageService(fq, testLogger())
	userID := fq.addUser("free")

	fq.addLead(userID, "Alice")
	fq.addLead(userID, "Bob")

	start, _ := MonthBounds(time.Now())
	fq.addLogEntry(userID, start.Add(time.Hour))
	fq.addLogEntry(userID, start.Add(2*time.Hour))
	fq.addLogEntry(userID, start.Add(3*time.Hour))
	// Last month does not count.
	fq.addLogEntry(userID, start.Add(-time.Hour))
	// Neither does another account.
	other := fq.addUser("free")
	fq.addLogEntry(other, start.Add(time.Hour))

	summary, err := svc.GetUsageSummary(context.Background(), userID)
	require.NoError(t, err)

	assert.Equal(t, domain.PlanFree, summary.Plan)
	assert.Equal(t, 2, summary.LeadCount)
	require.NotNil(t, summary.LeadLimit)
	assert.Equal(t, domain.FreePlanLeadLimit, *summary.LeadLimit)
	assert.Equal(t, 3, summary.AIUsageThisMonth)
	require.NotNil(t, summary.AILimit)
	assert.Equal(t, domain.FreePlanAILimit, *summary.AILimit)
	assert.True(t, summary.CanCreateLead)
	assert.True(t, summary.CanUseAI)
}

func TestGetUsageSummary_WindowEdges(t *testing.T) {
	fq := newFakeQuerier()
	svc := NewUsageService(fq, testLogger())
	userID := fq.addUser("free")

	start, end := MonthBounds(time.Now())
	fq.addLogEntry(userID, start)                          // first instant counts
	fq.addLogEntry(userID, end.Add(-time.Millisecond))     // last instant counts
	fq.addLogEntry(userID, end)                            // next month's first instant does not
	fq.addLogEntry(userID, start.Add(-time.Nanosecond))    // previous month does not
	fq.addLogEntry(userID, end.AddDate(0, 1, 0))           // well outside

	summary, err := svc.GetUsageSummary(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.AIUsageThisMonth)
}

func TestGetUsageSummary_ProPlan(t *testing.T) {
	fq := newFakeQuerier()
	svc := NewUsageService(fq, testLogger())
	userID := fq.addUser("pro")

	start, _ := MonthBounds(time.Now())
	for i := 0; i < 50; i++ {
		fq.addLogEntry(userID, start.Add(time.Duration(i)*time.Minute))
	}
	for i := 0; i < 20; i++ {
		fq.addLead(userID, "lead")
	}

	summary, err := svc.GetUsageSummary(context.Background(), userID)
	require.NoError(t, err)

	assert.Equal(t, domain.PlanPro, summary.Plan)
	assert.Nil(t, summary.LeadLimit)
	assert.Nil(t, summary.AILimit)
	assert.Equal(t, 20, summary.LeadCount)
	assert.Equal(t, 50, summary.AIUsageThisMonth)
	assert.True(t, summary.CanCreateLead)
	assert.True(t, summary.CanUseAI)
}

func TestGetUsageSummary_Idempotent(t *testing.T) {
	fq := newFakeQuerier()
	svc := NewUsageService(fq, testLogger())
	userID := fq.addUser("free")

	start, _ := MonthBounds(time.Now())
	fq.addLogEntry(userID, start.Add(time.Hour))

	first, err := svc.GetUsageSummary(context.Background(), userID)
	require.NoError(t, err)
	second, err := svc.GetUsageSummary(context.Background(), userID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGetUsageSummary_UserNotFound(t *testing.T) {
	fq := newFakeQuerier()
	svc := NewUsageService(fq, testLogger())

	_, err := svc.GetUsageSummary(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))
}

func TestSetPlan(t *testing.T) {
	fq := newFakeQuerier()
	svc := NewUsageService(fq, testLogger())
	userID := fq.addUser("free")

	err := svc.SetPlan(context.Background(), userID, domain.PlanPro)
	require.NoError(t, err)

	summary, err := svc.GetUsageSummary(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, domain.PlanPro, summary.Plan)
	assert.Nil(t, summary.AILimit)

	// Downgrading re-applies the free limits immediately.
	err = svc.SetPlan(context.Background(), userID, domain.PlanFree)
	require.NoError(t, err)

	summary, err = svc.GetUsageSummary(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, domain.PlanFree, summary.Plan)
	require.NotNil(t, summary.AILimit)
	assert.Equal(t, domain.FreePlanAILimit, *summary.AILimit)
}

func TestSetPlan_InvalidPlan(t *testing.T) {
	fq := newFakeQuerier()
	svc := NewUsageService(fq, testLogger())
	userID := fq.addUser("free")

	err := svc.SetPlan(context.Background(), userID, domain.Plan("enterprise"))
	require.Error(t, err)
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
}

func TestSetPlan_UserNotFound(t *testing.T) {
	fq := newFakeQuerier()
	svc := NewUsageService(fq, testLogger())

	err := svc.SetPlan(context.Background(), uuid.New(), domain.PlanPro)
	require.Error(t, err)
	assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))
}
