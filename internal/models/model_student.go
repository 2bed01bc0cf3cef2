package models

import (
	"time"

	"github.com/vendahub/billing/pkg/types"
)

// Student is the member-area enrollment record, keyed by (email, product)
// or by the originating sale. The enrollment store owns grant/revoke
// semantics; this service only flips status on subscription transitions.
type Student struct {
	ID        string  `gorm:"column:id;type:uuid;primary_key" json:"id"`
	SaleID    *string `gorm:"column:sale_id;type:uuid;default:null;index" json:"sale_id"`
	Email     string  `gorm:"column:email;type:varchar(255);not null;index:idx_email_product,priority:1" json:"email"`
	Name      string  `gorm:"column:name;type:varchar(255)" json:"name"`
	ProductID string  `gorm:"column:product_id;type:varchar(64);not null;index:idx_email_product,priority:2" json:"product_id"`

	Status          types.EnrollmentStatus `gorm:"column:status;type:varchar(32);not null" json:"status"`
	AccessRevokedAt *time.Time             `gorm:"column:access_revoked_at;default:null" json:"access_revoked_at"`
	RevokeReason    *string                `gorm:"column:revoke_reason;type:varchar(255);default:null" json:"revoke_reason"`

	EnrolledAt time.Time `gorm:"column:enrolled_at;not null" json:"enrolled_at"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Student) TableName() string {
	return "student"
}
