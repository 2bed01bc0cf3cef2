package models

import (
	"time"

	"github.com/vendahub/billing/pkg/types"
)

// Notification is the fire-and-forget side channel row consumed by the
// admin/storefront UI. Severity is purely advisory for rendering.
type Notification struct {
	ID        string                     `gorm:"column:id;type:uuid;primary_key" json:"id"`
	UserID    string                     `gorm:"column:user_id;type:varchar(64);not null;index" json:"user_id"`
	Title     string                     `gorm:"column:title;type:varchar(255);not null" json:"title"`
	Message   string                     `gorm:"column:message;type:text;not null" json:"message"`
	Type      types.NotificationSeverity `gorm:"column:type;type:varchar(16);not null" json:"type"`
	Link      *string                    `gorm:"column:link;type:text;default:null" json:"link"`
	CreatedAt time.Time                  `json:"created_at"`
}

func (Notification) TableName() string {
	return "notification"
}
