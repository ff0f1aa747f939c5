package booking

import "time"

const (
	StatusPending   = "pending"
	StatusContacted = "contacted"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

var Statuses = []string{StatusPending, StatusContacted, StatusConfirmed, StatusCompleted, StatusCancelled}

type ServiceBooking struct {
	ID            int64      `gorm:"primaryKey"`
	ServiceID     int64      `gorm:"column:service_id;index;not null"`
	Name          string     `gorm:"column:name;not null"`
	Email         string     `gorm:"column:email;not null"`
	Phone         string     `gorm:"column:phone"`
	PreferredDate *time.Time `gorm:"column:preferred_date"`
	Message       string     `gorm:"column:message"`
	Status        string     `gorm:"column:status;index;not null"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
