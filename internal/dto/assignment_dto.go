package dto

import (
	"time"

	"github.com/ChenBaiWa/studentSystem/internal/models"
)

// PublishAssignmentRequest creates one assignment per target class.
type PublishAssignmentRequest struct {
	Title      string    `json:"title" validate:"required,min=1,max=255"`
	Content    string    `json:"content"`
	ChapterID  *uint     `json:"chapterId" validate:"omitempty,gt=0"`
	TotalScore int       `json:"totalScore" validate:"omitempty,gt=0"`
	Deadline   time.Time `json:"deadline" validate:"required"`
	ClassIDs   []uint    `json:"classIds" validate:"required,min=1,dive,gt=0"`
}

// AssignmentUpdateRequest edits a published assignment.
type AssignmentUpdateRequest struct {
	Title      *string    `json:"title" validate:"omitempty,min=1,max=255"`
	Content    *string    `json:"content"`
	TotalScore *int       `json:"totalScore" validate:"omitempty,gt=0"`
	Deadline   *time.Time `json:"deadline"`
}

// AssignmentResponse serializes an assignment for teacher listings.
type AssignmentResponse struct {
	ID              uint      `json:"id"`
	Title           string    `json:"title"`
	Content         string    `json:"content"`
	ClassID         uint      `json:"classId"`
	ClassName       string    `json:"className"`
	ChapterID       *uint     `json:"chapterId"`
	ChapterName     string    `json:"chapterName"`
	TotalScore      int       `json:"totalScore"`
	Deadline        time.Time `json:"deadline"`
	CreatorID       uint      `json:"creatorId"`
	CreatorName     string    `json:"creatorName"`
	SubmissionCount int64     `json:"submissionCount"`
	CreatedAt       time.Time `json:"createTime"`
}

// NewAssignmentResponse converts an Assignment model into a DTO.
func NewAssignmentResponse(model models.Assignment, submissionCount int64) AssignmentResponse {
	return AssignmentResponse{
		ID:              model.ID,
		Title:           model.Title,
		Content:         model.Content,
		ClassID:         model.ClassID,
		ClassName:       model.ClassName,
		ChapterID:       model.ChapterID,
		ChapterName:     model.ChapterName,
		TotalScore:      model.TotalScore,
		Deadline:        model.Deadline,
		CreatorID:       model.CreatorID,
		CreatorName:     model.CreatorName,
		SubmissionCount: submissionCount,
		CreatedAt:       model.CreatedAt,
	}
}

// SubmitAssignmentRequest is the payload for submitting homework images.
// Answer carries comma-joined image references.
type SubmitAssignmentRequest struct {
	AssignmentID uint   `json:"assignmentId" validate:"required,gt=0"`
	Answer       string `json:"answer" validate:"required,min=1"`
}

// StudentAssignmentResponse serializes an assignment submission.
type StudentAssignmentResponse struct {
	ID           uint       `json:"id"`
	AssignmentID uint       `json:"assignmentId"`
	StudentID    uint       `json:"studentId"`
	StudentName  string     `json:"studentName"`
	Answer       string     `json:"answer"`
	Score        *int       `json:"score"`
	Feedback     string     `json:"feedback"`
	Status       string     `json:"status"`
	SubmittedAt  time.Time  `json:"submitTime"`
	GradedAt     *time.Time `json:"gradeTime"`
}

// NewStudentAssignmentResponse converts a StudentAssignment model into a DTO.
func NewStudentAssignmentResponse(model models.StudentAssignment) StudentAssignmentResponse {
	return StudentAssignmentResponse{
		ID:           model.ID,
		AssignmentID: model.AssignmentID,
		StudentID:    model.StudentID,
		StudentName:  model.StudentName,
		Answer:       model.Answer,
		Score:        model.Score,
		Feedback:     model.Feedback,
		Status:       model.Status,
		SubmittedAt:  model.SubmittedAt,
		GradedAt:     model.GradedAt,
	}
}

// NewStudentAssignmentResponseSlice converts a slice of models in order.
func NewStudentAssignmentResponseSlice(submissions []models.StudentAssignment) []StudentAssignmentResponse {
	responses := make([]StudentAssignmentResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewStudentAssignmentResponse(submission))
	}
	return responses
}

// StudentAssignmentView is one assignment in the student's bucketed overview,
// carrying submission details when one exists.
type StudentAssignmentView struct {
	ID          uint       `json:"id"`
	Title       string     `json:"title"`
	ClassID     uint       `json:"classId"`
	ClassName   string     `json:"className"`
	ChapterID   *uint      `json:"chapterId"`
	ChapterName string     `json:"chapterName"`
	Content     string     `json:"content"`
	TotalScore  int        `json:"totalScore"`
	Deadline    time.Time  `json:"deadline"`
	CreatedAt   time.Time  `json:"createTime"`
	SubmittedAt *time.Time `json:"submitTime,omitempty"`
	Status      string     `json:"status,omitempty"`
	Score       *int       `json:"score,omitempty"`
	Feedback    string     `json:"feedback,omitempty"`
}

// StudentAssignmentBuckets is the classifier output: every assignment bound
// to the student's classes lands in exactly one bucket.
type StudentAssignmentBuckets struct {
	Pending   []StudentAssignmentView `json:"pending"`
	Submitted []StudentAssignmentView `json:"submitted"`
	Expired   []StudentAssignmentView `json:"expired"`
}

// StudentAssignmentDetail pairs a submission with its assignment.
type StudentAssignmentDetail struct {
	StudentAssignment StudentAssignmentResponse `json:"studentAssignment"`
	Assignment        AssignmentResponse        `json:"assignment"`
}
