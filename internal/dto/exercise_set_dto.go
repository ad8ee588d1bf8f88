package dto

import (
	"encoding/json"
	"time"

	"github.com/ChenBaiWa/studentSystem/internal/models"
)

// ExerciseSetCreateRequest creates an exercise set in the editing state.
type ExerciseSetCreateRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=255"`
	Subject string `json:"subject" validate:"omitempty,max=64"`
}

// QuestionCreateRequest adds a question to an exercise set.
type QuestionCreateRequest struct {
	Type      string   `json:"type" validate:"required,oneof=choice fill subjective"`
	Content   string   `json:"content" validate:"required,min=1"`
	Options   []string `json:"options" validate:"omitempty,dive,min=1"`
	Answer    string   `json:"answer"`
	Score     int      `json:"score" validate:"omitempty,gte=0"`
	SortOrder int      `json:"sortOrder"`
	ChapterID *uint    `json:"chapterId" validate:"omitempty,gt=0"`
}

// ImportQuestionsRequest extracts questions from homework images via the AI
// gateway and appends them to a set.
type ImportQuestionsRequest struct {
	ImageURLs []string `json:"imageUrls" validate:"required,min=1,dive,min=1"`
}

// ExerciseSetResponse serializes an exercise set.
type ExerciseSetResponse struct {
	ID            uint      `json:"id"`
	Name          string    `json:"name"`
	Subject       string    `json:"subject"`
	Status        string    `json:"status"`
	QuestionCount int       `json:"questionCount"`
	CreatorID     uint      `json:"creatorId"`
	CreatorName   string    `json:"creatorName"`
	CreatedAt     time.Time `json:"createTime"`
}

// QuestionResponse serializes a question.
type QuestionResponse struct {
	ID            uint      `json:"id"`
	ExerciseSetID uint      `json:"exerciseSetId"`
	ChapterID     *uint     `json:"chapterId"`
	Type          string    `json:"type"`
	Content       string    `json:"content"`
	Options       []string  `json:"options"`
	Answer        string    `json:"answer"`
	Score         int       `json:"score"`
	SortOrder     int       `json:"sortOrder"`
	CreatedAt     time.Time `json:"createTime"`
}

// ChapterSummary lists a chapter with its question count and score total
// inside a set. Chapter id zero is the synthetic chapter for questions not
// assigned to any chapter.
type ChapterSummary struct {
	ChapterID     uint   `json:"chapterId"`
	ChapterName   string `json:"chapterName"`
	QuestionCount int    `json:"questionCount"`
	TotalScore    int    `json:"totalScore"`
}

// NewExerciseSetResponse converts an ExerciseSet model into a DTO.
func NewExerciseSetResponse(model models.ExerciseSet) ExerciseSetResponse {
	return ExerciseSetResponse{
		ID:            model.ID,
		Name:          model.Name,
		Subject:       model.Subject,
		Status:        model.Status,
		QuestionCount: model.QuestionCount,
		CreatorID:     model.CreatorID,
		CreatorName:   model.CreatorName,
		CreatedAt:     model.CreatedAt,
	}
}

// NewExerciseSetResponseSlice converts a slice of models in order.
func NewExerciseSetResponseSlice(sets []models.ExerciseSet) []ExerciseSetResponse {
	responses := make([]ExerciseSetResponse, 0, len(sets))
	for _, set := range sets {
		responses = append(responses, NewExerciseSetResponse(set))
	}
	return responses
}

// NewQuestionResponse converts a Question model into a DTO.
func NewQuestionResponse(model models.Question) QuestionResponse {
	var options []string
	if len(model.Options) > 0 {
		_ = json.Unmarshal(model.Options, &options)
	}

	return QuestionResponse{
		ID:            model.ID,
		ExerciseSetID: model.ExerciseSetID,
		ChapterID:     model.ChapterID,
		Type:          model.Type,
		Content:       model.Content,
		Options:       options,
		Answer:        model.Answer,
		Score:         model.Score,
		SortOrder:     model.SortOrder,
		CreatedAt:     model.CreatedAt,
	}
}

// NewQuestionResponseSlice converts a slice of models in order.
func NewQuestionResponseSlice(questions []models.Question) []QuestionResponse {
	responses := make([]QuestionResponse, 0, len(questions))
	for _, question := range questions {
		responses = append(responses, NewQuestionResponse(question))
	}
	return responses
}
