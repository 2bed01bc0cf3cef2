package models

import "time"

// Profile holds the contact identity for a platform user. Entitlement sync
// resolves the subscriber's email through it.
type Profile struct {
	UserID    string    `gorm:"column:user_id;type:varchar(64);primary_key" json:"user_id"`
	Email     string    `gorm:"column:email;type:varchar(255);not null;index" json:"email"`
	FullName  string    `gorm:"column:full_name;type:varchar(255)" json:"full_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Profile) TableName() string {
	return "profile"
}
