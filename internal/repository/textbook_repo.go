package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ChenBaiWa/studentSystem/internal/models"
)

// TextbookRepository defines data operations for textbooks.
type TextbookRepository interface {
	GetByID(ctx context.Context, id uint) (models.Textbook, error)
	ListByCreator(ctx context.Context, creatorID uint) ([]models.Textbook, error)
	Create(ctx context.Context, textbook *models.Textbook) error
}

type textbookRepository struct {
	db *gorm.DB
}

// NewTextbookRepository instantiates the repository.
func NewTextbookRepository(db *gorm.DB) TextbookRepository {
	return &textbookRepository{db: db}
}

func (r *textbookRepository) GetByID(ctx context.Context, id uint) (models.Textbook, error) {
	var textbook models.Textbook
	if err := r.db.WithContext(ctx).First(&textbook, id).Error; err != nil {
		return models.Textbook{}, err
	}

	return textbook, nil
}

func (r *textbookRepository) ListByCreator(ctx context.Context, creatorID uint) ([]models.Textbook, error) {
	var textbooks []models.Textbook
	if err := r.db.WithContext(ctx).
		Where("creator_id = ?", creatorID).
		Order("id ASC").
		Find(&textbooks).Error; err != nil {
		return nil, err
	}

	return textbooks, nil
}

func (r *textbookRepository) Create(ctx context.Context, textbook *models.Textbook) error {
	return r.db.WithContext(ctx).Create(textbook).Error
}
