package newsletter

import "time"

type Subscriber struct {
	ID             int64      `gorm:"primaryKey"`
	Email          string     `gorm:"column:email;uniqueIndex;not null"`
	Name           string     `gorm:"column:name"`
	Token          string     `gorm:"column:token;uniqueIndex;not null"`
	IsConfirmed    bool       `gorm:"column:is_confirmed;not null"`
	IsActive       bool       `gorm:"column:is_active;not null"`
	ConfirmedAt    *time.Time `gorm:"column:confirmed_at"`
	UnsubscribedAt *time.Time `gorm:"column:unsubscribed_at"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Subscriber) TableName() string {
	return "newsletter_subscribers"
}
