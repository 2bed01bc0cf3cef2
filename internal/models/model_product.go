package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vendahub/billing/pkg/types"
)

// Product is the catalog entry a subscription points at. The seller is
// UserID; DeliveryMethod decides whether enrollment sync applies.
type Product struct {
	ID             string               `gorm:"column:id;type:uuid;primary_key" json:"id"`
	UserID         string               `gorm:"column:user_id;type:varchar(64);not null;index" json:"user_id"`
	Name           string               `gorm:"column:name;type:varchar(255);not null" json:"name"`
	PaymentType    types.PaymentType    `gorm:"column:payment_type;type:varchar(32);not null" json:"payment_type"`
	DeliveryMethod types.DeliveryMethod `gorm:"column:delivery_method;type:varchar(32);not null" json:"delivery_method"`
	Price          decimal.Decimal      `gorm:"column:price;type:numeric(12,2)" json:"price"`
	ImageURL       string               `gorm:"column:image_url;type:text" json:"image_url"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

func (Product) TableName() string {
	return "product"
}

func (p *Product) IsSubscription() bool {
	return p != nil && p.PaymentType == types.PaymentTypeSubscription
}

func (p *Product) IsMemberArea() bool {
	return p != nil && p.DeliveryMethod == types.DeliveryMethodMemberArea
}
