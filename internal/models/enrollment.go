package models

import (
	"time"
)

// Enrollment grants a student access to a course. The composite unique
// index is what makes concurrent activation safe: two racing verifies
// cannot both insert for the same pair.
type Enrollment struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	StudentID       uint      `gorm:"not null;uniqueIndex:idx_student_course" json:"student_id"`
	CourseID        uint      `gorm:"not null;uniqueIndex:idx_student_course" json:"course_id"`
	Status          string    `gorm:"size:20;not null;default:'PENDING'" json:"status"` // PENDING, ACTIVE
	PaymentVerified bool      `gorm:"default:false" json:"payment_verified"`
	Progress        float64   `gorm:"default:0" json:"progress"` // owned by progress tracking, not written here
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	Student User   `gorm:"foreignKey:StudentID" json:"-"`
	Course  Course `gorm:"foreignKey:CourseID" json:"-"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}
