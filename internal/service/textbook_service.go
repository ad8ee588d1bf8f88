package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/ChenBaiWa/studentSystem/internal/dto"
	"github.com/ChenBaiWa/studentSystem/internal/models"
	"github.com/ChenBaiWa/studentSystem/internal/repository"
)

// Textbook errors surfaced to handlers.
var (
	ErrTextbookNotFound  = errors.New("textbook not found")
	ErrTextbookForbidden = errors.New("textbook belongs to another teacher")
)

// TextbookService covers the textbook and chapter authoring flows. Chapters
// created here are what assignments and exercise set questions reference.
type TextbookService interface {
	Create(ctx context.Context, creatorID uint, creatorName string, req dto.TextbookCreateRequest) (dto.TextbookResponse, error)
	// ListMine returns the teacher's own textbooks.
	ListMine(ctx context.Context, creatorID uint) ([]dto.TextbookResponse, error)
	// AddChapter appends a chapter to a textbook owned by the teacher.
	AddChapter(ctx context.Context, creatorID, textbookID uint, req dto.ChapterCreateRequest) (dto.ChapterResponse, error)
	ListChapters(ctx context.Context, creatorID, textbookID uint) ([]dto.ChapterResponse, error)
}

type textbookService struct {
	textbooks repository.TextbookRepository
	chapters  repository.ChapterRepository
	validate  *validator.Validate
	logger    zerolog.Logger
}

// NewTextbookService wires the textbook flows.
func NewTextbookService(
	textbooks repository.TextbookRepository,
	chapters repository.ChapterRepository,
	logger zerolog.Logger,
) TextbookService {
	return &textbookService{
		textbooks: textbooks,
		chapters:  chapters,
		validate:  validator.New(),
		logger:    logger.With().Str("component", "textbook_service").Logger(),
	}
}

func (s *textbookService) Create(ctx context.Context, creatorID uint, creatorName string, req dto.TextbookCreateRequest) (dto.TextbookResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.TextbookResponse{}, err
	}

	textbook := models.Textbook{
		Name:        req.Name,
		GradeName:   req.GradeName,
		CreatorID:   creatorID,
		CreatorName: creatorName,
	}
	if err := s.textbooks.Create(ctx, &textbook); err != nil {
		return dto.TextbookResponse{}, fmt.Errorf("store textbook: %w", err)
	}

	return dto.NewTextbookResponse(textbook), nil
}

func (s *textbookService) ListMine(ctx context.Context, creatorID uint) ([]dto.TextbookResponse, error) {
	textbooks, err := s.textbooks.ListByCreator(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("load textbooks: %w", err)
	}

	return dto.NewTextbookResponseSlice(textbooks), nil
}

func (s *textbookService) AddChapter(ctx context.Context, creatorID, textbookID uint, req dto.ChapterCreateRequest) (dto.ChapterResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.ChapterResponse{}, err
	}

	textbook, err := s.ownedTextbook(ctx, creatorID, textbookID)
	if err != nil {
		return dto.ChapterResponse{}, err
	}

	chapter := models.Chapter{
		Name:         req.Name,
		TextbookID:   textbook.ID,
		TextbookName: textbook.Name,
	}
	if err := s.chapters.Create(ctx, &chapter); err != nil {
		return dto.ChapterResponse{}, fmt.Errorf("store chapter: %w", err)
	}

	return dto.NewChapterResponse(chapter), nil
}

func (s *textbookService) ListChapters(ctx context.Context, creatorID, textbookID uint) ([]dto.ChapterResponse, error) {
	textbook, err := s.ownedTextbook(ctx, creatorID, textbookID)
	if err != nil {
		return nil, err
	}

	chapters, err := s.chapters.ListByTextbook(ctx, textbook.ID)
	if err != nil {
		return nil, fmt.Errorf("load chapters: %w", err)
	}

	return dto.NewChapterResponseSlice(chapters), nil
}

func (s *textbookService) ownedTextbook(ctx context.Context, creatorID, textbookID uint) (models.Textbook, error) {
	textbook, err := s.textbooks.GetByID(ctx, textbookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Textbook{}, ErrTextbookNotFound
		}
		return models.Textbook{}, fmt.Errorf("load textbook: %w", err)
	}
	if textbook.CreatorID != creatorID {
		return models.Textbook{}, ErrTextbookForbidden
	}

	return textbook, nil
}
