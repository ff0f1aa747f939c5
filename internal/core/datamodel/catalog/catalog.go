package catalog

import (
	"time"

	"gorm.io/datatypes"
)

type Course struct {
	ID          int64     `gorm:"primaryKey"`
	Title       string    `gorm:"column:title;not null"`
	Slug        string    `gorm:"column:slug;uniqueIndex;not null"`
	Summary     string    `gorm:"column:summary"`
	Description string    `gorm:"column:description"`
	Price       int64     `gorm:"column:price;not null"`
	Currency    string    `gorm:"column:currency;size:3;not null"`
	IsActive    bool      `gorm:"column:is_active;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

type Workshop struct {
	ID              int64     `gorm:"primaryKey"`
	Title           string    `gorm:"column:title;not null"`
	Slug            string    `gorm:"column:slug;uniqueIndex;not null"`
	Summary         string    `gorm:"column:summary"`
	Description     string    `gorm:"column:description"`
	Price           int64     `gorm:"column:price;not null"`
	Currency        string    `gorm:"column:currency;size:3;not null"`
	StartsAt        time.Time `gorm:"column:starts_at;not null"`
	Location        string    `gorm:"column:location"`
	MaxParticipants int       `gorm:"column:max_participants;not null"`
	RegisteredCount int       `gorm:"column:registered_count;not null"`
	IsActive        bool      `gorm:"column:is_active;not null"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (w *Workshop) IsFull() bool {
	return w.RegisteredCount >= w.MaxParticipants
}

func (w *Workshop) SeatsLeft() int {
	if w.IsFull() {
		return 0
	}
	return w.MaxParticipants - w.RegisteredCount
}

type TradingService struct {
	ID          int64     `gorm:"primaryKey"`
	Title       string    `gorm:"column:title;not null"`
	Slug        string    `gorm:"column:slug;uniqueIndex;not null"`
	Summary     string    `gorm:"column:summary"`
	Description string    `gorm:"column:description"`
	ServiceType string    `gorm:"column:service_type;not null"`
	Price       int64     `gorm:"column:price;not null"`
	Currency    string    `gorm:"column:currency;size:3;not null"`
	IsActive    bool      `gorm:"column:is_active;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

type BlogPost struct {
	ID          int64          `gorm:"primaryKey"`
	Title       string         `gorm:"column:title;not null"`
	Slug        string         `gorm:"column:slug;uniqueIndex;not null"`
	Excerpt     string         `gorm:"column:excerpt"`
	Body        string         `gorm:"column:body;not null"`
	Tags        datatypes.JSON `gorm:"column:tags"`
	IsPublished bool           `gorm:"column:is_published;not null"`
	PublishedAt *time.Time     `gorm:"column:published_at"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
