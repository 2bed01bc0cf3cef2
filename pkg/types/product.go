package types

type PaymentType string

const (
	PaymentTypeOneTime      PaymentType = "one_time"
	PaymentTypeSubscription PaymentType = "subscription"
)

type DeliveryMethod string

const (
	DeliveryMethodMemberArea DeliveryMethod = "member_area"
	DeliveryMethodDownload   DeliveryMethod = "download"
	DeliveryMethodExternal   DeliveryMethod = "external"
)

type EnrollmentStatus string

const (
	EnrollmentStatusActive    EnrollmentStatus = "active"
	EnrollmentStatusCancelled EnrollmentStatus = "cancelled"
)
