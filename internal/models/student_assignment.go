package models

import "time"

// Grading progress markers for an assignment submission. These track grading
// progress only; pending/submitted/expired bucketing is always derived by the
// lifecycle classifier and never read from a stored field.
const (
	StudentAssignmentStatusSubmitted = "submitted"
	StudentAssignmentStatusGraded    = "graded"
)

// StudentAssignment is one student's submission for one assignment. At most
// one row exists per (student, assignment); resubmission is rejected.
type StudentAssignment struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	AssignmentID uint       `gorm:"not null;index:idx_assignment_student,unique" json:"assignment_id"`
	StudentID    uint       `gorm:"not null;index:idx_assignment_student,unique" json:"student_id"`
	StudentName  string     `gorm:"size:255" json:"student_name"`
	Answer       string     `gorm:"type:text" json:"answer"`
	Score        *int       `json:"score"`
	Feedback     string     `gorm:"type:text" json:"feedback"`
	Status       string     `gorm:"size:32;not null" json:"status"`
	SubmittedAt  time.Time  `json:"submitted_at"`
	GradedAt     *time.Time `json:"graded_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// IsGraded reports whether the AI grading result has been written back.
func (s StudentAssignment) IsGraded() bool {
	return s.Status == StudentAssignmentStatusGraded
}
