package payment

import (
	"time"

	"gorm.io/datatypes"
)

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
	StatusRefunded  = "refunded"
)

const (
	TypeCourse   = "course"
	TypeWorkshop = "workshop"
	TypeService  = "service"
	TypeProduct  = "product"
)

const GatewayMock = "mock"

// Payment records one checkout attempt. Amount is in whole currency units;
// gateways receive it converted to minor units.
type Payment struct {
	ID            int64  `gorm:"primaryKey"`
	Receipt       string `gorm:"column:receipt;uniqueIndex;not null"`
	Amount        int64  `gorm:"column:amount;not null"`
	Currency      string `gorm:"column:currency;size:3;not null"`
	Status        string `gorm:"column:status;index;not null"`
	PaymentType   string `gorm:"column:payment_type;not null"`
	CustomerName  string `gorm:"column:customer_name;not null"`
	CustomerEmail string `gorm:"column:customer_email;index;not null"`
	CustomerPhone string `gorm:"column:customer_phone"`

	Gateway          string         `gorm:"column:gateway;not null"`
	GatewayOrderID   string         `gorm:"column:gateway_order_id;index"`
	GatewayPaymentID *string        `gorm:"column:gateway_payment_id"`
	GatewaySignature *string        `gorm:"column:gateway_signature"`
	GatewayResponse  datatypes.JSON `gorm:"column:gateway_response"`
	FailureReason    *string        `gorm:"column:failure_reason"`

	CourseID              *int64 `gorm:"column:course_id"`
	WorkshopApplicationID *int64 `gorm:"column:workshop_application_id"`
	ServiceBookingID      *int64 `gorm:"column:service_booking_id"`

	CompletedAt *time.Time `gorm:"column:completed_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Payment) IsPending() bool {
	return p.Status == StatusPending
}

func (p *Payment) IsFree() bool {
	return p.Amount == 0
}
