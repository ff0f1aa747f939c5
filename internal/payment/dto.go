package payment

import (
	"strings"
	"time"
)

type CourseOrderDTO struct {
	CourseID int64  `json:"course_id" validate:"required,gt=0"`
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Phone    string `json:"phone" validate:"max=32"`
}

type WorkshopOrderDTO struct {
	WorkshopID      int64  `json:"workshop_id" validate:"required,gt=0"`
	Name            string `json:"name" validate:"required,max=120"`
	Email           string `json:"email" validate:"required,email,max=254"`
	Phone           string `json:"phone" validate:"max=32"`
	ExperienceLevel string `json:"experience_level" validate:"omitempty,oneof=beginner intermediate advanced"`
	Message         string `json:"message" validate:"max=2000"`
}

type ServiceOrderDTO struct {
	ServiceID int64  `json:"service_id" validate:"required,gt=0"`
	Name      string `json:"name" validate:"required,max=120"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Phone     string `json:"phone" validate:"max=32"`
	// PreferredDate is a calendar date, YYYY-MM-DD.
	PreferredDate string `json:"preferred_date" validate:"omitempty,datetime=2006-01-02"`
	Message       string `json:"message" validate:"max=2000"`
}

func (d *ServiceOrderDTO) preferredDate() *time.Time {
	if d.PreferredDate == "" {
		return nil
	}
	t, err := time.Parse(time.DateOnly, d.PreferredDate)
	if err != nil {
		return nil
	}
	return &t
}

type CompleteDTO struct {
	GatewayOrderID   string `json:"gateway_order_id" validate:"required"`
	GatewayPaymentID string `json:"gateway_payment_id" validate:"required"`
	GatewaySignature string `json:"gateway_signature" validate:"required"`
}

// FailDTO must name the order the checkout returned; the payment id alone is
// guessable.
type FailDTO struct {
	GatewayOrderID string `json:"gateway_order_id" validate:"required"`
	Reason         string `json:"reason" validate:"max=500"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
