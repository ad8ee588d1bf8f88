package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ChenBaiWa/studentSystem/internal/models"
)

// ChapterRepository defines data operations for chapters.
type ChapterRepository interface {
	GetByID(ctx context.Context, id uint) (models.Chapter, error)
	ListByTextbook(ctx context.Context, textbookID uint) ([]models.Chapter, error)
	Create(ctx context.Context, chapter *models.Chapter) error
}

type chapterRepository struct {
	db *gorm.DB
}

// NewChapterRepository instantiates the repository.
func NewChapterRepository(db *gorm.DB) ChapterRepository {
	return &chapterRepository{db: db}
}

func (r *chapterRepository) GetByID(ctx context.Context, id uint) (models.Chapter, error) {
	var chapter models.Chapter
	if err := r.db.WithContext(ctx).First(&chapter, id).Error; err != nil {
		return models.Chapter{}, err
	}

	return chapter, nil
}

func (r *chapterRepository) ListByTextbook(ctx context.Context, textbookID uint) ([]models.Chapter, error) {
	var chapters []models.Chapter
	if err := r.db.WithContext(ctx).
		Where("textbook_id = ?", textbookID).
		Order("id ASC").
		Find(&chapters).Error; err != nil {
		return nil, err
	}

	return chapters, nil
}

func (r *chapterRepository) Create(ctx context.Context, chapter *models.Chapter) error {
	return r.db.WithContext(ctx).Create(chapter).Error
}
