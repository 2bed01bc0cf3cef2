package types

import "fmt"

type SubscriptionStatus string

const (
	SubscriptionStatusPending  SubscriptionStatus = "pending"
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusPastDue  SubscriptionStatus = "past_due"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
)

type PlanInterval string

const (
	PlanIntervalWeekly  PlanInterval = "weekly"
	PlanIntervalMonthly PlanInterval = "monthly"
	PlanIntervalYearly  PlanInterval = "yearly"
)

// ParsePlanInterval validates an interval value arriving from a request body.
// Undefined intervals are rejected here, at the boundary, so the period
// arithmetic never has to see one.
func ParsePlanInterval(s string) (PlanInterval, error) {
	switch PlanInterval(s) {
	case PlanIntervalWeekly, PlanIntervalMonthly, PlanIntervalYearly:
		return PlanInterval(s), nil
	default:
		return "", fmt.Errorf("unknown plan interval: %q", s)
	}
}

type SubscriptionChangeReason string

const (
	SubscriptionChangeReasonCreate         SubscriptionChangeReason = "create"
	SubscriptionChangeReasonActivate       SubscriptionChangeReason = "activate"
	SubscriptionChangeReasonRenew          SubscriptionChangeReason = "renew"
	SubscriptionChangeReasonCancel         SubscriptionChangeReason = "cancel"
	SubscriptionChangeReasonScheduleCancel SubscriptionChangeReason = "schedule_cancel"
	SubscriptionChangeReasonPaymentFailure SubscriptionChangeReason = "payment_failure"
)

type NotificationSeverity string

const (
	NotificationSeverityInfo    NotificationSeverity = "info"
	NotificationSeveritySuccess NotificationSeverity = "success"
	NotificationSeverityWarning NotificationSeverity = "warning"
	NotificationSeverityError   NotificationSeverity = "error"
)
