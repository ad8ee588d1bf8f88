package models

import (
	"time"

	"gorm.io/datatypes"
)

// Question types. Choice and fill questions are graded by string comparison;
// subjective questions are delegated to the AI grader.
const (
	QuestionTypeChoice     = "choice"
	QuestionTypeFill       = "fill"
	QuestionTypeSubjective = "subjective"
)

// DefaultQuestionScore is applied when a teacher creates a question without a score.
const DefaultQuestionScore = 5

// Question is a single gradable unit inside an exercise set. The grading
// pipeline treats questions as read-only.
type Question struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	ExerciseSetID uint           `gorm:"not null;index" json:"exercise_set_id"`
	ChapterID     *uint          `gorm:"index" json:"chapter_id"`
	Type          string         `gorm:"size:32;not null" json:"type"`
	Content       string         `gorm:"type:text;not null" json:"content"`
	Options       datatypes.JSON `gorm:"type:json" json:"options"`
	Answer        string         `gorm:"type:text" json:"answer"`
	Score         int            `gorm:"not null" json:"score"`
	SortOrder     int            `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// IsObjective reports whether the question can be graded by comparison.
func (q Question) IsObjective() bool {
	return q.Type == QuestionTypeChoice || q.Type == QuestionTypeFill
}
