package application

import "time"

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
	StatusWaitlist = "waitlist"
)

var Statuses = []string{StatusPending, StatusApproved, StatusRejected, StatusWaitlist}

type WorkshopApplication struct {
	ID              int64     `gorm:"primaryKey"`
	WorkshopID      int64     `gorm:"column:workshop_id;index;not null"`
	Name            string    `gorm:"column:name;not null"`
	Email           string    `gorm:"column:email;not null"`
	Phone           string    `gorm:"column:phone"`
	ExperienceLevel string    `gorm:"column:experience_level"`
	Message         string    `gorm:"column:message"`
	Status          string    `gorm:"column:status;index;not null"`
	AdminNotes      string    `gorm:"column:admin_notes"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
