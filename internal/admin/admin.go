package admin

import (
	"time"

	adminDatamodel "github.com/frahmantamala/tradedesk/internal/core/datamodel/admin"
	"github.com/golang-jwt/jwt/v5"
)

type LoginDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AdminResponse struct {
	ID          int64      `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

type LoginResponse struct {
	AccessToken string        `json:"access_token"`
	TokenType   string        `json:"token_type"`
	ExpiresAt   time.Time     `json:"expires_at"`
	Admin       AdminResponse `json:"admin"`
}

// Claims represents JWT token claims
type Claims struct {
	AdminID int64  `json:"admin_id"`
	Email   string `json:"email"`
	jwt.RegisteredClaims
}

// RevenueLine is the completed payment total for one currency.
type RevenueLine struct {
	Currency string `db:"currency" json:"currency"`
	Payments int64  `db:"payments" json:"payments"`
	Amount   int64  `db:"amount" json:"amount"`
}

type DashboardStats struct {
	ActiveCourses       int64         `db:"active_courses" json:"active_courses"`
	UpcomingWorkshops   int64         `db:"upcoming_workshops" json:"upcoming_workshops"`
	Enrollments         int64         `db:"enrollments" json:"enrollments"`
	PendingApplications int64         `db:"pending_applications" json:"pending_applications"`
	PendingBookings     int64         `db:"pending_bookings" json:"pending_bookings"`
	UnreadContacts      int64         `db:"unread_contacts" json:"unread_contacts"`
	ActiveSubscribers   int64         `db:"active_subscribers" json:"active_subscribers"`
	PendingPayments     int64         `db:"pending_payments" json:"pending_payments"`
	Revenue             []RevenueLine `db:"-" json:"revenue"`
}

func FromDataModel(u *adminDatamodel.User) AdminResponse {
	return AdminResponse{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		LastLoginAt: u.LastLoginAt,
	}
}
