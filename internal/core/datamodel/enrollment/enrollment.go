package enrollment

import "time"

type Enrollment struct {
	ID           int64     `gorm:"primaryKey"`
	CourseID     int64     `gorm:"column:course_id;uniqueIndex:idx_enrollment_course_email;not null"`
	PaymentID    *int64    `gorm:"column:payment_id;uniqueIndex"`
	StudentName  string    `gorm:"column:student_name;not null"`
	StudentEmail string    `gorm:"column:student_email;uniqueIndex:idx_enrollment_course_email;not null"`
	EnrolledAt   time.Time `gorm:"column:enrolled_at;autoCreateTime"`
}
