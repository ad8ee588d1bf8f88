package models

import (
	"time"

	"gorm.io/datatypes"
)

// Answer payload kinds.
const (
	AnswerTypeText  = 1
	AnswerTypeImage = 2
)

// Correctness states for a graded exercise answer.
const (
	CorrectStatusPending   = 0
	CorrectStatusCorrect   = 1
	CorrectStatusIncorrect = 2
)

// ExerciseAnswer is one student's answer to one question. At most one live row
// exists per (student, question); a resubmission replaces the previous row and
// bumps Generation so a stale async grading callback cannot overwrite it.
type ExerciseAnswer struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	StudentID     uint           `gorm:"not null;index:idx_student_question,unique" json:"student_id"`
	QuestionID    uint           `gorm:"not null;index:idx_student_question,unique" json:"question_id"`
	Answer        string         `gorm:"type:text" json:"answer"`
	AnswerType    int            `gorm:"not null;default:1" json:"answer_type"`
	ImageURLs     datatypes.JSON `gorm:"type:json" json:"image_urls"`
	Score         *int           `json:"score"`
	Remark        string         `gorm:"type:text" json:"remark"`
	CorrectStatus int            `gorm:"not null;default:0" json:"correct_status"`
	Generation    uint64         `gorm:"not null;default:1" json:"-"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// IsGraded reports whether a grading result has been written back.
func (a ExerciseAnswer) IsGraded() bool {
	return a.CorrectStatus != CorrectStatusPending
}
