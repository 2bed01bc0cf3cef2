package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/vendahub/billing/pkg/types"
)

// SubscriptionLog records every lifecycle transition with before/after
// snapshots. Use case: troubleshooting webhook redelivery disputes.
type SubscriptionLog struct {
	ID             string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	SubscriptionID string `gorm:"column:subscription_id;type:uuid;index:idx_subscription_id_id,priority:1;not null"`
	UserID         string `gorm:"column:user_id;type:varchar(64);index;not null"`
	// Reason is the transition that produced this entry.
	Reason types.SubscriptionChangeReason `gorm:"column:reason;type:varchar(32);not null"`
	// Before stores the subscription state prior to the change; nil on create.
	Before datatypes.JSONType[*Subscription] `gorm:"column:before;type:jsonb;default:'null'"`
	After  datatypes.JSONType[*Subscription] `gorm:"column:after;type:jsonb;default:'null'"`
	// Extra stores additional context such as the trigger source.
	Extra     datatypes.JSONMap `gorm:"column:extra;type:jsonb;default:'{}'"`
	CreatedAt time.Time
}

func (SubscriptionLog) TableName() string {
	return "subscription_log"
}
