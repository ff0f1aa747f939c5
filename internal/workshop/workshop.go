package workshop

import (
	"time"

	"github.com/frahmantamala/tradedesk/internal/core/datamodel/application"
)

type ApplicationResponse struct {
	ID              int64     `json:"id"`
	WorkshopID      int64     `json:"workshop_id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone,omitempty"`
	ExperienceLevel string    `json:"experience_level,omitempty"`
	Message         string    `json:"message,omitempty"`
	Status          string    `json:"status"`
	AdminNotes      string    `json:"admin_notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type UpdateApplicationDTO struct {
	Status     string `json:"status" validate:"required,oneof=pending approved rejected waitlist"`
	AdminNotes string `json:"admin_notes" validate:"max=2000"`
}

type ApplicationFilter struct {
	WorkshopID int64
	Status     string
	Limit      int
	Offset     int
}

func FromDataModel(a *application.WorkshopApplication) ApplicationResponse {
	return ApplicationResponse{
		ID:              a.ID,
		WorkshopID:      a.WorkshopID,
		Name:            a.Name,
		Email:           a.Email,
		Phone:           a.Phone,
		ExperienceLevel: a.ExperienceLevel,
		Message:         a.Message,
		Status:          a.Status,
		AdminNotes:      a.AdminNotes,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}
