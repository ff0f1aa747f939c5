package booking

import (
	"time"

	bookingDatamodel "github.com/frahmantamala/tradedesk/internal/core/datamodel/booking"
)

type BookingResponse struct {
	ID            int64      `json:"id"`
	ServiceID     int64      `json:"service_id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone,omitempty"`
	PreferredDate *time.Time `json:"preferred_date,omitempty"`
	Message       string     `json:"message,omitempty"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type UpdateBookingDTO struct {
	Status string `json:"status" validate:"required,oneof=pending contacted confirmed completed cancelled"`
}

type BookingFilter struct {
	ServiceID int64
	Status    string
	Limit     int
	Offset    int
}

func FromDataModel(b *bookingDatamodel.ServiceBooking) BookingResponse {
	return BookingResponse{
		ID:            b.ID,
		ServiceID:     b.ServiceID,
		Name:          b.Name,
		Email:         b.Email,
		Phone:         b.Phone,
		PreferredDate: b.PreferredDate,
		Message:       b.Message,
		Status:        b.Status,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}
