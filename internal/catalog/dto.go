package catalog

import "time"

type CourseDTO struct {
	Title       string `json:"title" validate:"required,max=200"`
	Slug        string `json:"slug" validate:"required,max=200"`
	Summary     string `json:"summary" validate:"max=500"`
	Description string `json:"description"`
	Price       int64  `json:"price" validate:"gte=0"`
	Currency    string `json:"currency" validate:"required,len=3"`
	IsActive    bool   `json:"is_active"`
}

type WorkshopDTO struct {
	Title           string    `json:"title" validate:"required,max=200"`
	Slug            string    `json:"slug" validate:"required,max=200"`
	Summary         string    `json:"summary" validate:"max=500"`
	Description     string    `json:"description"`
	Price           int64     `json:"price" validate:"gte=0"`
	Currency        string    `json:"currency" validate:"required,len=3"`
	StartsAt        time.Time `json:"starts_at" validate:"required"`
	Location        string    `json:"location" validate:"max=200"`
	MaxParticipants int       `json:"max_participants" validate:"required,min=1"`
	IsActive        bool      `json:"is_active"`
}

type ServiceDTO struct {
	Title       string `json:"title" validate:"required,max=200"`
	Slug        string `json:"slug" validate:"required,max=200"`
	Summary     string `json:"summary" validate:"max=500"`
	Description string `json:"description"`
	ServiceType string `json:"service_type" validate:"required,oneof=mentorship portfolio_review signals consultation"`
	Price       int64  `json:"price" validate:"gte=0"`
	Currency    string `json:"currency" validate:"required,len=3"`
	IsActive    bool   `json:"is_active"`
}

type PostDTO struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Slug        string   `json:"slug" validate:"required,max=200"`
	Excerpt     string   `json:"excerpt" validate:"max=500"`
	Body        string   `json:"body" validate:"required"`
	Tags        []string `json:"tags" validate:"max=20,dive,max=50"`
	IsPublished bool     `json:"is_published"`
}
