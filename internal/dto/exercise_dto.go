package dto

import (
	"encoding/json"
	"time"

	"github.com/ChenBaiWa/studentSystem/internal/models"
)

// SubmitAnswerRequest is the payload for answering a single question.
type SubmitAnswerRequest struct {
	QuestionID uint     `json:"questionId" validate:"required,gt=0"`
	Answer     string   `json:"answer"`
	AnswerType int      `json:"answerType" validate:"omitempty,oneof=1 2"`
	ImageURLs  []string `json:"imageUrls" validate:"omitempty,dive,min=1"`
}

// BatchAnswerItem is one entry in a batch submission for a chapter or set.
type BatchAnswerItem struct {
	QuestionID uint     `json:"questionId" validate:"required,gt=0"`
	Answer     string   `json:"answer"`
	AnswerType int      `json:"answerType" validate:"omitempty,oneof=1 2"`
	ImageURLs  []string `json:"imageUrls" validate:"omitempty,dive,min=1"`
}

// AnswerResponse serializes a graded or pending exercise answer.
type AnswerResponse struct {
	ID            uint      `json:"id"`
	StudentID     uint      `json:"studentId"`
	QuestionID    uint      `json:"questionId"`
	Answer        string    `json:"answer"`
	AnswerType    int       `json:"answerType"`
	ImageURLs     []string  `json:"imageUrls"`
	Score         *int      `json:"score"`
	Remark        string    `json:"remark"`
	CorrectStatus int       `json:"correctStatus"`
	CreatedAt     time.Time `json:"createTime"`
	UpdatedAt     time.Time `json:"updateTime"`
}

// ExerciseResultsResponse aggregates a student's grading results for a set.
type ExerciseResultsResponse struct {
	TotalScore int              `json:"totalScore"`
	Results    []AnswerResponse `json:"results"`
}

// NewAnswerResponse converts an ExerciseAnswer model into a DTO.
func NewAnswerResponse(model models.ExerciseAnswer) AnswerResponse {
	var imageURLs []string
	if len(model.ImageURLs) > 0 {
		_ = json.Unmarshal(model.ImageURLs, &imageURLs)
	}

	return AnswerResponse{
		ID:            model.ID,
		StudentID:     model.StudentID,
		QuestionID:    model.QuestionID,
		Answer:        model.Answer,
		AnswerType:    model.AnswerType,
		ImageURLs:     imageURLs,
		Score:         model.Score,
		Remark:        model.Remark,
		CorrectStatus: model.CorrectStatus,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
}

// NewAnswerResponseSlice converts a slice of models in order.
func NewAnswerResponseSlice(answers []models.ExerciseAnswer) []AnswerResponse {
	responses := make([]AnswerResponse, 0, len(answers))
	for _, answer := range answers {
		responses = append(responses, NewAnswerResponse(answer))
	}
	return responses
}
