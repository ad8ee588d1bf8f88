package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/ChenBaiWa/studentSystem/internal/dto"
	"github.com/ChenBaiWa/studentSystem/internal/models"
	"github.com/ChenBaiWa/studentSystem/internal/repository"
)

// Class membership errors surfaced to handlers.
var (
	ErrClassCodeNotFound       = errors.New("class code not found")
	ErrVerificationCodeInvalid = errors.New("verification code does not match")
	ErrAlreadyClassMember      = errors.New("student already joined this class")
)

// classCodeAttempts bounds retries when a generated class code collides with
// an existing one.
const classCodeAttempts = 5

// ClassService manages classes and the join flow. Students join with the
// class's six digit code plus its four digit verification code.
type ClassService interface {
	Create(ctx context.Context, creatorID uint, creatorName string, req dto.ClassCreateRequest) (dto.ClassResponse, error)
	// ListMine returns the teacher's classes including verification codes.
	ListMine(ctx context.Context, creatorID uint) ([]dto.ClassResponse, error)
	// Join adds the student to the class addressed by the code pair.
	Join(ctx context.Context, studentID uint, req dto.JoinClassRequest) (dto.ClassResponse, error)
	// ListJoined returns the classes the student is a member of, without
	// verification codes.
	ListJoined(ctx context.Context, studentID uint) ([]dto.ClassResponse, error)
}

type classService struct {
	classes  repository.ClassRepository
	validate *validator.Validate
	logger   zerolog.Logger
	now      func() time.Time
}

// NewClassService wires class management.
func NewClassService(classes repository.ClassRepository, logger zerolog.Logger) ClassService {
	return &classService{
		classes:  classes,
		validate: validator.New(),
		logger:   logger.With().Str("component", "class_service").Logger(),
		now:      time.Now,
	}
}

func (s *classService) Create(ctx context.Context, creatorID uint, creatorName string, req dto.ClassCreateRequest) (dto.ClassResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.ClassResponse{}, err
	}

	verificationCode, err := randomDigits(4)
	if err != nil {
		return dto.ClassResponse{}, fmt.Errorf("generate verification code: %w", err)
	}

	class := models.Class{
		Name:             req.Name,
		VerificationCode: verificationCode,
		GradeName:        req.GradeName,
		CreatorID:        creatorID,
		CreatorName:      creatorName,
	}

	for attempt := 0; attempt < classCodeAttempts; attempt++ {
		classCode, err := randomDigits(6)
		if err != nil {
			return dto.ClassResponse{}, fmt.Errorf("generate class code: %w", err)
		}

		if _, err := s.classes.GetByClassCode(ctx, classCode); err == nil {
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ClassResponse{}, fmt.Errorf("check class code: %w", err)
		}

		class.ClassCode = classCode
		break
	}
	if class.ClassCode == "" {
		return dto.ClassResponse{}, errors.New("could not allocate a unique class code")
	}

	if err := s.classes.Create(ctx, &class); err != nil {
		return dto.ClassResponse{}, fmt.Errorf("store class: %w", err)
	}

	s.logger.Info().
		Uint("class_id", class.ID).
		Uint("creator_id", creatorID).
		Str("class_code", class.ClassCode).
		Msg("class created")

	return dto.NewClassResponse(class, true), nil
}

func (s *classService) ListMine(ctx context.Context, creatorID uint) ([]dto.ClassResponse, error) {
	classes, err := s.classes.ListByCreator(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("load classes: %w", err)
	}

	responses := make([]dto.ClassResponse, 0, len(classes))
	for _, class := range classes {
		responses = append(responses, dto.NewClassResponse(class, true))
	}
	return responses, nil
}

func (s *classService) Join(ctx context.Context, studentID uint, req dto.JoinClassRequest) (dto.ClassResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.ClassResponse{}, err
	}

	class, err := s.classes.GetByClassCode(ctx, req.ClassCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ClassResponse{}, ErrClassCodeNotFound
		}
		return dto.ClassResponse{}, fmt.Errorf("load class: %w", err)
	}
	if class.VerificationCode != req.VerificationCode {
		return dto.ClassResponse{}, ErrVerificationCodeInvalid
	}

	member, err := s.classes.HasMembership(ctx, studentID, class.ID)
	if err != nil {
		return dto.ClassResponse{}, fmt.Errorf("check membership: %w", err)
	}
	if member {
		return dto.ClassResponse{}, ErrAlreadyClassMember
	}

	membership := models.ClassMembership{
		StudentID: studentID,
		ClassID:   class.ID,
		JoinedAt:  s.now(),
	}
	if err := s.classes.AddMembership(ctx, &membership); err != nil {
		return dto.ClassResponse{}, fmt.Errorf("store membership: %w", err)
	}

	s.logger.Info().
		Uint("class_id", class.ID).
		Uint("student_id", studentID).
		Msg("student joined class")

	return dto.NewClassResponse(class, false), nil
}

func (s *classService) ListJoined(ctx context.Context, studentID uint) ([]dto.ClassResponse, error) {
	classIDs, err := s.classes.ListClassIDsByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("load memberships: %w", err)
	}

	responses := make([]dto.ClassResponse, 0, len(classIDs))
	for _, classID := range classIDs {
		class, err := s.classes.GetByID(ctx, classID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, fmt.Errorf("load class %d: %w", classID, err)
		}
		responses = append(responses, dto.NewClassResponse(class, false))
	}

	return responses, nil
}

// randomDigits returns n cryptographically random decimal digits.
func randomDigits(n int) (string, error) {
	digits := make([]byte, n)
	for i := range digits {
		v, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + v.Int64())
	}
	return string(digits), nil
}
