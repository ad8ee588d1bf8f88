package models

import "time"

// User roles recognised by the auth middleware.
const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// User represents an authenticated account, either a teacher or a student.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Role      string    `gorm:"size:32;not null" json:"role"`
	Phone     string    `gorm:"size:32;uniqueIndex" json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
