package statistics

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/vendahub/billing/internal/models"
	"github.com/vendahub/billing/pkg/tool"
	"github.com/vendahub/billing/pkg/types"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Subscription{}))
	return NewService(db, zap.NewNop().Sugar())
}

func seedSub(t *testing.T, db *gorm.DB, status types.SubscriptionStatus, interval types.PlanInterval, amount float64, scheduledCancel bool) {
	t.Helper()
	now := time.Now()
	require.NoError(t, db.Create(&models.Subscription{
		ID:                 tool.GenerateUUIDV7(),
		UserID:             tool.GenerateUUIDV7(),
		ProductID:          "prod-1",
		Status:             status,
		PlanInterval:       interval,
		Amount:             decimal.NewFromFloat(amount),
		CurrentPeriodStart: now,
		CurrentPeriodEnd:   now.AddDate(0, 1, 0),
		CancelAtPeriodEnd:  scheduledCancel,
	}).Error)
}

func TestOverview(t *testing.T) {
	svc := newTestService(t)
	seedSub(t, svc.db, types.SubscriptionStatusActive, types.PlanIntervalMonthly, 30, false)
	seedSub(t, svc.db, types.SubscriptionStatusActive, types.PlanIntervalYearly, 120, true)
	seedSub(t, svc.db, types.SubscriptionStatusPastDue, types.PlanIntervalMonthly, 50, false)
	seedSub(t, svc.db, types.SubscriptionStatusCanceled, types.PlanIntervalMonthly, 10, true)

	overview, err := svc.Overview(context.Background())
	require.NoError(t, err)

	assert.EqualValues(t, 2, overview.CountByStatus[types.SubscriptionStatusActive])
	assert.EqualValues(t, 1, overview.CountByStatus[types.SubscriptionStatusPastDue])
	assert.EqualValues(t, 1, overview.CountByStatus[types.SubscriptionStatusCanceled])
	assert.EqualValues(t, 1, overview.ScheduledCancellations, "canceled rows do not count as scheduled")

	// 30 monthly + 120/12 yearly = 40
	assert.True(t, overview.MonthlyRecurringRevenue.Equal(decimal.NewFromInt(40)),
		"got %s", overview.MonthlyRecurringRevenue)
}

func TestMonthlyRate(t *testing.T) {
	weekly := monthlyRate(types.PlanIntervalWeekly, decimal.NewFromInt(12))
	assert.True(t, weekly.Equal(decimal.NewFromInt(52)), "12 weekly = 52 monthly, got %s", weekly)
	assert.True(t, monthlyRate(types.PlanIntervalMonthly, decimal.NewFromInt(7)).Equal(decimal.NewFromInt(7)))
	assert.True(t, monthlyRate(types.PlanIntervalYearly, decimal.NewFromInt(24)).Equal(decimal.NewFromInt(2)))
}

func TestOverview_Empty(t *testing.T) {
	svc := newTestService(t)
	overview, err := svc.Overview(context.Background())
	require.NoError(t, err)
	assert.Empty(t, overview.CountByStatus)
	assert.True(t, overview.MonthlyRecurringRevenue.IsZero())
}
