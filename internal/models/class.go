package models

import "time"

// Class is a teacher-owned group of students that assignments are published to.
type Class struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Name             string    `gorm:"size:255;not null" json:"name"`
	ClassCode        string    `gorm:"size:16;uniqueIndex;not null" json:"class_code"`
	VerificationCode string    `gorm:"size:8;not null" json:"verification_code"`
	GradeName        string    `gorm:"size:64" json:"grade_name"`
	CreatorID        uint      `gorm:"not null;index" json:"creator_id"`
	CreatorName      string    `gorm:"size:255" json:"creator_name"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ClassMembership records a student having joined a class.
type ClassMembership struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	StudentID uint      `gorm:"not null;index:idx_class_member,unique" json:"student_id"`
	ClassID   uint      `gorm:"not null;index:idx_class_member,unique" json:"class_id"`
	JoinedAt  time.Time `json:"joined_at"`
}
