package contact

import "time"

type Message struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	Email     string    `gorm:"column:email;not null"`
	Phone     string    `gorm:"column:phone"`
	Subject   string    `gorm:"column:subject"`
	Message   string    `gorm:"column:message;not null"`
	IsRead    bool      `gorm:"column:is_read;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Message) TableName() string {
	return "contact_messages"
}
