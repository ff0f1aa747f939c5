package newsletter

import (
	"time"

	newsletterDatamodel "github.com/frahmantamala/tradedesk/internal/core/datamodel/newsletter"
)

const (
	StatePendingConfirmation = "pending_confirmation"
	StateConfirmed           = "confirmed"
	StateUnsubscribed        = "unsubscribed"
)

type SubscribeDTO struct {
	Email string `json:"email" validate:"required,email,max=254"`
	Name  string `json:"name" validate:"max=120"`
}

type SubscriberResponse struct {
	ID             int64      `json:"id"`
	Email          string     `json:"email"`
	Name           string     `json:"name,omitempty"`
	State          string     `json:"state"`
	ConfirmedAt    *time.Time `json:"confirmed_at,omitempty"`
	UnsubscribedAt *time.Time `json:"unsubscribed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

type SubscriberFilter struct {
	ActiveOnly bool
	Limit      int
	Offset     int
}

func stateOf(s *newsletterDatamodel.Subscriber) string {
	switch {
	case !s.IsActive:
		return StateUnsubscribed
	case s.IsConfirmed:
		return StateConfirmed
	default:
		return StatePendingConfirmation
	}
}

func FromDataModel(s *newsletterDatamodel.Subscriber) SubscriberResponse {
	return SubscriberResponse{
		ID:             s.ID,
		Email:          s.Email,
		Name:           s.Name,
		State:          stateOf(s),
		ConfirmedAt:    s.ConfirmedAt,
		UnsubscribedAt: s.UnsubscribedAt,
		CreatedAt:      s.CreatedAt,
	}
}
