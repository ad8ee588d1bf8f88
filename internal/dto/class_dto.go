package dto

import (
	"time"

	"github.com/ChenBaiWa/studentSystem/internal/models"
)

// ClassCreateRequest creates a class with generated join codes.
type ClassCreateRequest struct {
	Name      string `json:"name" validate:"required,min=1,max=255"`
	GradeName string `json:"gradeName" validate:"omitempty,max=64"`
}

// JoinClassRequest lets a student join a class using both codes.
type JoinClassRequest struct {
	ClassCode        string `json:"classCode" validate:"required,len=6,numeric"`
	VerificationCode string `json:"verificationCode" validate:"required,len=4,numeric"`
}

// ClassResponse serializes a class. The verification code is only included
// for the owning teacher.
type ClassResponse struct {
	ID               uint      `json:"id"`
	Name             string    `json:"name"`
	ClassCode        string    `json:"classCode"`
	VerificationCode string    `json:"verificationCode,omitempty"`
	GradeName        string    `json:"gradeName"`
	CreatorID        uint      `json:"creatorId"`
	CreatorName      string    `json:"creatorName"`
	CreatedAt        time.Time `json:"createTime"`
}

// NewClassResponse converts a Class model into a DTO.
func NewClassResponse(model models.Class, includeVerification bool) ClassResponse {
	response := ClassResponse{
		ID:          model.ID,
		Name:        model.Name,
		ClassCode:   model.ClassCode,
		GradeName:   model.GradeName,
		CreatorID:   model.CreatorID,
		CreatorName: model.CreatorName,
		CreatedAt:   model.CreatedAt,
	}
	if includeVerification {
		response.VerificationCode = model.VerificationCode
	}
	return response
}
