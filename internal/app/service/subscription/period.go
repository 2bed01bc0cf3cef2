package subscription

import (
	"time"

	"github.com/vendahub/billing/pkg/types"
)

// PeriodEnd computes the end of the billing period opening at start. Pure;
// callers validate the interval at the boundary via types.ParsePlanInterval.
//
// Monthly and yearly use calendar arithmetic: Jan 31 + 1 month normalizes
// per time.AddDate (Mar 2/3). That is the accepted overflow semantics, not
// something to special-case.
func PeriodEnd(start time.Time, interval types.PlanInterval) time.Time {
	switch interval {
	case types.PlanIntervalWeekly:
		return start.AddDate(0, 0, 7)
	case types.PlanIntervalMonthly:
		return start.AddDate(0, 1, 0)
	case types.PlanIntervalYearly:
		return start.AddDate(1, 0, 0)
	}
	// Unreachable for parsed intervals; keep the zero-risk fallback explicit.
	return start
}
