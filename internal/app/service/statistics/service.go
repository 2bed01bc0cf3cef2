package statistics

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vendahub/billing/internal/models"
	"github.com/vendahub/billing/pkg/types"
)

// Service computes back-office subscription metrics for the admin panels.
type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewService(db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{db: db, log: log}
}

type Overview struct {
	// CountByStatus holds row counts per subscription status.
	CountByStatus map[types.SubscriptionStatus]int64 `json:"count_by_status"`
	// ScheduledCancellations counts billable subscriptions flagged
	// cancel_at_period_end.
	ScheduledCancellations int64 `json:"scheduled_cancellations"`
	// MonthlyRecurringRevenue normalizes active subscription amounts to a
	// monthly rate: weekly * 52/12, yearly / 12.
	MonthlyRecurringRevenue decimal.Decimal `json:"monthly_recurring_revenue"`
}

func monthlyRate(interval types.PlanInterval, amount decimal.Decimal) decimal.Decimal {
	switch interval {
	case types.PlanIntervalWeekly:
		return amount.Mul(decimal.NewFromInt(52)).Div(decimal.NewFromInt(12))
	case types.PlanIntervalYearly:
		return amount.Div(decimal.NewFromInt(12))
	default:
		return amount
	}
}

func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	type statusCount struct {
		Status types.SubscriptionStatus
		Total  int64
	}
	var counts []statusCount
	if err := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Select("status, count(*) as total").
		Group("status").
		Scan(&counts).Error; err != nil {
		return nil, fmt.Errorf("failed to count subscriptions: %w", err)
	}

	var scheduled int64
	if err := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("cancel_at_period_end = ? AND status <> ?", true, types.SubscriptionStatusCanceled).
		Count(&scheduled).Error; err != nil {
		return nil, fmt.Errorf("failed to count scheduled cancellations: %w", err)
	}

	var active []*models.Subscription
	if err := s.db.WithContext(ctx).
		Where("status = ?", types.SubscriptionStatusActive).
		Find(&active).Error; err != nil {
		return nil, fmt.Errorf("failed to load active subscriptions: %w", err)
	}

	mrr := lo.Reduce(active, func(acc decimal.Decimal, sub *models.Subscription, _ int) decimal.Decimal {
		return acc.Add(monthlyRate(sub.PlanInterval, sub.Amount))
	}, decimal.Zero)

	return &Overview{
		CountByStatus: lo.SliceToMap(counts, func(c statusCount) (types.SubscriptionStatus, int64) {
			return c.Status, c.Total
		}),
		ScheduledCancellations:  scheduled,
		MonthlyRecurringRevenue: mrr.Round(2),
	}, nil
}

var Module = fx.Options(
	fx.Provide(NewService),
)
