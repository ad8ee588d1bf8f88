package models

import "time"

// Exercise set lifecycle states. Students only see published sets.
const (
	ExerciseSetStatusEditing   = "editing"
	ExerciseSetStatusPublished = "published"
)

// ExerciseSet is a teacher-authored collection of questions.
type ExerciseSet struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"size:255;not null" json:"name"`
	Subject       string    `gorm:"size:64" json:"subject"`
	Status        string    `gorm:"size:32;not null;default:editing" json:"status"`
	QuestionCount int       `gorm:"not null;default:0" json:"question_count"`
	CreatorID     uint      `gorm:"not null;index" json:"creator_id"`
	CreatorName   string    `gorm:"size:255" json:"creator_name"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// IsPublished reports whether students may view and answer the set.
func (s ExerciseSet) IsPublished() bool {
	return s.Status == ExerciseSetStatusPublished
}
