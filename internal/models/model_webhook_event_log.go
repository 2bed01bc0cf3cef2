package models

import (
	"time"

	"gorm.io/datatypes"
)

// WebhookEventLog keeps the raw body of every lifecycle RPC call. Billing
// providers redeliver events; the raw trail is what makes duplicate
// deliveries diagnosable after the fact.
type WebhookEventLog struct {
	ID        string            `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Action    string            `gorm:"column:action;type:varchar(32);not null;index" json:"action"`
	Payload   datatypes.JSON    `gorm:"column:payload;type:jsonb;default:'{}'" json:"payload"`
	Extra     datatypes.JSONMap `gorm:"column:extra;type:jsonb;default:'{}'" json:"extra"`
	CreatedAt time.Time         `json:"created_at"`
}

func (WebhookEventLog) TableName() string {
	return "webhook_event_log"
}
