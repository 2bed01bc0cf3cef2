package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/vendahub/billing/pkg/types"
)

// Subscription is the system of record for a recurring-billing agreement
// between a buyer and a product. Rows are never deleted; canceled
// subscriptions are retained for audit and history.
type Subscription struct {
	ID        string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	UserID    string `gorm:"column:user_id;type:varchar(64);not null;index:idx_user_product,priority:1" json:"user_id"`
	ProductID string `gorm:"column:product_id;type:varchar(64);not null;index:idx_user_product,priority:2" json:"product_id"`

	Status types.SubscriptionStatus `gorm:"column:status;type:varchar(32);not null" json:"status"`
	// PlanInterval is fixed at creation and never changes afterwards.
	PlanInterval  types.PlanInterval `gorm:"column:plan_interval;type:varchar(16);not null" json:"plan_interval"`
	Amount        decimal.Decimal    `gorm:"column:amount;type:numeric(12,2);not null" json:"amount"`
	PaymentMethod string             `gorm:"column:payment_method;type:varchar(64)" json:"payment_method"`

	// CurrentPeriodStart/End define the currently paid-for window.
	CurrentPeriodStart time.Time `gorm:"column:current_period_start;not null" json:"current_period_start"`
	CurrentPeriodEnd   time.Time `gorm:"column:current_period_end;not null" json:"current_period_end"`

	// StartedAt is the instant of first activation; nil until activated.
	StartedAt *time.Time `gorm:"column:started_at;default:null" json:"started_at"`

	// CancelAtPeriodEnd marks a scheduled cancellation. It is orthogonal to
	// Status: the subscription stays functional until an external expiry
	// sweep enforces the period end.
	CancelAtPeriodEnd bool       `gorm:"column:cancel_at_period_end;not null;default:false" json:"cancel_at_period_end"`
	CanceledAt        *time.Time `gorm:"column:canceled_at;default:null" json:"canceled_at"`

	// External references into the payment provider. Sanitized free text
	// (trimmed, capped at 100 chars, angle brackets stripped) because they
	// arrive from webhook payloads and are rendered in admin UIs.
	ExternalSubscriptionID *string `gorm:"column:external_subscription_id;type:varchar(100);default:null;index" json:"external_subscription_id"`
	ExternalCustomerID     *string `gorm:"column:external_customer_id;type:varchar(100);default:null" json:"external_customer_id"`

	// Metadata may carry "sale_id" linking back to the originating one-time
	// sale record, used for enrollment correlation.
	Metadata datatypes.JSONMap `gorm:"column:metadata;type:jsonb;default:'{}'" json:"metadata"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Subscription) TableName() string {
	return "subscription"
}

// Billable reports whether the subscription occupies the one-per-pair slot:
// creation of a second subscription for the same (user, product) must be
// rejected while one of these states holds.
func (s *Subscription) Billable() bool {
	if s == nil {
		return false
	}
	switch s.Status {
	case types.SubscriptionStatusActive, types.SubscriptionStatusPending, types.SubscriptionStatusPastDue:
		return true
	}
	return false
}

// AccessValid reports whether the subscription currently grants storefront
// access: active status and an unexpired paid-for period.
func (s *Subscription) AccessValid(now time.Time) bool {
	return s != nil &&
		s.Status == types.SubscriptionStatusActive &&
		s.CurrentPeriodEnd.After(now)
}

// SaleID extracts the optional sale correlation id from metadata.
func (s *Subscription) SaleID() string {
	if s == nil || s.Metadata == nil {
		return ""
	}
	if v, ok := s.Metadata["sale_id"].(string); ok {
		return v
	}
	return ""
}
