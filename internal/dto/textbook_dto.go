package dto

import (
	"time"

	"github.com/ChenBaiWa/studentSystem/internal/models"
)

// TextbookCreateRequest creates a textbook.
type TextbookCreateRequest struct {
	Name      string `json:"name" validate:"required,min=1,max=255"`
	GradeName string `json:"gradeName" validate:"omitempty,max=64"`
}

// ChapterCreateRequest adds a chapter to a textbook.
type ChapterCreateRequest struct {
	Name string `json:"name" validate:"required,min=1,max=255"`
}

// TextbookResponse serializes a textbook.
type TextbookResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	GradeName   string    `json:"gradeName"`
	CreatorID   uint      `json:"creatorId"`
	CreatorName string    `json:"creatorName"`
	CreatedAt   time.Time `json:"createTime"`
}

// ChapterResponse serializes a chapter.
type ChapterResponse struct {
	ID           uint      `json:"id"`
	Name         string    `json:"name"`
	TextbookID   uint      `json:"textbookId"`
	TextbookName string    `json:"textbookName"`
	CreatedAt    time.Time `json:"createTime"`
}

// NewTextbookResponse converts a Textbook model into a DTO.
func NewTextbookResponse(model models.Textbook) TextbookResponse {
	return TextbookResponse{
		ID:          model.ID,
		Name:        model.Name,
		GradeName:   model.GradeName,
		CreatorID:   model.CreatorID,
		CreatorName: model.CreatorName,
		CreatedAt:   model.CreatedAt,
	}
}

// NewTextbookResponseSlice converts a slice of models in order.
func NewTextbookResponseSlice(textbooks []models.Textbook) []TextbookResponse {
	responses := make([]TextbookResponse, 0, len(textbooks))
	for _, textbook := range textbooks {
		responses = append(responses, NewTextbookResponse(textbook))
	}
	return responses
}

// NewChapterResponse converts a Chapter model into a DTO.
func NewChapterResponse(model models.Chapter) ChapterResponse {
	return ChapterResponse{
		ID:           model.ID,
		Name:         model.Name,
		TextbookID:   model.TextbookID,
		TextbookName: model.TextbookName,
		CreatedAt:    model.CreatedAt,
	}
}

// NewChapterResponseSlice converts a slice of models in order.
func NewChapterResponseSlice(chapters []models.Chapter) []ChapterResponse {
	responses := make([]ChapterResponse, 0, len(chapters))
	for _, chapter := range chapters {
		responses = append(responses, NewChapterResponse(chapter))
	}
	return responses
}
