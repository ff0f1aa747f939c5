package payment

import (
	"errors"
	"time"

	paymentDatamodel "github.com/frahmantamala/tradedesk/internal/core/datamodel/payment"
)

var (
	// ErrNotPending is returned by the store when the pending guard of a
	// status transition matched no row.
	ErrNotPending          = errors.New("payment is not pending")
	ErrDuplicateEnrollment = errors.New("student already enrolled in course")
)

// Completion outcomes carried on payment.completed.
const (
	OutcomeEnrolled        = "enrolled"
	OutcomeAlreadyEnrolled = "already_enrolled"
	OutcomeApproved        = "approved"
	OutcomeWaitlist        = "waitlist"
	OutcomeConfirmed       = "confirmed"
	OutcomeNone            = "none"
)

type CompletionResult struct {
	Outcome   string
	ItemTitle string
}

type PaymentFilter struct {
	Status      string
	PaymentType string
	Email       string
	Limit       int
	Offset      int
}

type PaymentView struct {
	ID                    int64      `json:"id"`
	Receipt               string     `json:"receipt"`
	Amount                int64      `json:"amount"`
	Currency              string     `json:"currency"`
	Status                string     `json:"status"`
	PaymentType           string     `json:"payment_type"`
	CustomerName          string     `json:"customer_name"`
	CustomerEmail         string     `json:"customer_email"`
	Gateway               string     `json:"gateway"`
	GatewayOrderID        string     `json:"gateway_order_id"`
	GatewayPaymentID      *string    `json:"gateway_payment_id,omitempty"`
	FailureReason         *string    `json:"failure_reason,omitempty"`
	CourseID              *int64     `json:"course_id,omitempty"`
	WorkshopApplicationID *int64     `json:"workshop_application_id,omitempty"`
	ServiceBookingID      *int64     `json:"service_booking_id,omitempty"`
	CompletedAt           *time.Time `json:"completed_at,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
}

func ToView(p *paymentDatamodel.Payment) PaymentView {
	return PaymentView{
		ID:                    p.ID,
		Receipt:               p.Receipt,
		Amount:                p.Amount,
		Currency:              p.Currency,
		Status:                p.Status,
		PaymentType:           p.PaymentType,
		CustomerName:          p.CustomerName,
		CustomerEmail:         p.CustomerEmail,
		Gateway:               p.Gateway,
		GatewayOrderID:        p.GatewayOrderID,
		GatewayPaymentID:      p.GatewayPaymentID,
		FailureReason:         p.FailureReason,
		CourseID:              p.CourseID,
		WorkshopApplicationID: p.WorkshopApplicationID,
		ServiceBookingID:      p.ServiceBookingID,
		CompletedAt:           p.CompletedAt,
		CreatedAt:             p.CreatedAt,
	}
}

// StatusView is what an anonymous caller may see about a payment.
type StatusView struct {
	ID            int64      `json:"id"`
	Receipt       string     `json:"receipt"`
	Amount        int64      `json:"amount"`
	Currency      string     `json:"currency"`
	Status        string     `json:"status"`
	PaymentType   string     `json:"payment_type"`
	FailureReason *string    `json:"failure_reason,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func ToStatusView(p *paymentDatamodel.Payment) StatusView {
	return StatusView{
		ID:            p.ID,
		Receipt:       p.Receipt,
		Amount:        p.Amount,
		Currency:      p.Currency,
		Status:        p.Status,
		PaymentType:   p.PaymentType,
		FailureReason: p.FailureReason,
		CompletedAt:   p.CompletedAt,
		CreatedAt:     p.CreatedAt,
	}
}

// CheckoutResponse is returned by every order endpoint. Free items carry only
// the record they created; paid items also carry what the checkout widget needs.
type CheckoutResponse struct {
	ItemType        string `json:"item_type"`
	ItemID          int64  `json:"item_id"`
	ItemTitle       string `json:"item_title"`
	RequiresPayment bool   `json:"requires_payment"`
	Status          string `json:"status"`

	PaymentID      int64  `json:"payment_id,omitempty"`
	Receipt        string `json:"receipt,omitempty"`
	Gateway        string `json:"gateway,omitempty"`
	GatewayOrderID string `json:"gateway_order_id,omitempty"`
	GatewayKeyID   string `json:"gateway_key_id,omitempty"`
	Amount         int64  `json:"amount"`
	AmountMinor    int64  `json:"amount_minor,omitempty"`
	Currency       string `json:"currency"`

	ApplicationID *int64 `json:"application_id,omitempty"`
	BookingID     *int64 `json:"booking_id,omitempty"`
	EnrollmentID  *int64 `json:"enrollment_id,omitempty"`
}

type CompletionResponse struct {
	PaymentID   int64  `json:"payment_id"`
	Receipt     string `json:"receipt"`
	Status      string `json:"status"`
	PaymentType string `json:"payment_type"`
	Outcome     string `json:"outcome,omitempty"`
}
