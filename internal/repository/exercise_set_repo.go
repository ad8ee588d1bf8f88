package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ChenBaiWa/studentSystem/internal/models"
)

// ExerciseSetRepository defines persistence operations for exercise sets.
type ExerciseSetRepository interface {
	GetByID(ctx context.Context, id uint) (models.ExerciseSet, error)
	ListByCreator(ctx context.Context, creatorID uint) ([]models.ExerciseSet, error)
	ListPublished(ctx context.Context) ([]models.ExerciseSet, error)
	Create(ctx context.Context, set *models.ExerciseSet) error
	Update(ctx context.Context, set *models.ExerciseSet) error
	UpdateQuestionCount(ctx context.Context, id uint, count int) error
}

type exerciseSetRepository struct {
	db *gorm.DB
}

// NewExerciseSetRepository instantiates the repository.
func NewExerciseSetRepository(db *gorm.DB) ExerciseSetRepository {
	return &exerciseSetRepository{db: db}
}

func (r *exerciseSetRepository) GetByID(ctx context.Context, id uint) (models.ExerciseSet, error) {
	var set models.ExerciseSet
	if err := r.db.WithContext(ctx).First(&set, id).Error; err != nil {
		return models.ExerciseSet{}, err
	}

	return set, nil
}

func (r *exerciseSetRepository) ListByCreator(ctx context.Context, creatorID uint) ([]models.ExerciseSet, error) {
	var sets []models.ExerciseSet
	if err := r.db.WithContext(ctx).
		Where("creator_id = ?", creatorID).
		Order("created_at DESC").
		Find(&sets).Error; err != nil {
		return nil, err
	}

	return sets, nil
}

func (r *exerciseSetRepository) ListPublished(ctx context.Context) ([]models.ExerciseSet, error) {
	var sets []models.ExerciseSet
	if err := r.db.WithContext(ctx).
		Where("status = ?", models.ExerciseSetStatusPublished).
		Order("created_at DESC").
		Find(&sets).Error; err != nil {
		return nil, err
	}

	return sets, nil
}

func (r *exerciseSetRepository) Create(ctx context.Context, set *models.ExerciseSet) error {
	return r.db.WithContext(ctx).Create(set).Error
}

func (r *exerciseSetRepository) Update(ctx context.Context, set *models.ExerciseSet) error {
	return r.db.WithContext(ctx).Save(set).Error
}

func (r *exerciseSetRepository) UpdateQuestionCount(ctx context.Context, id uint, count int) error {
	return r.db.WithContext(ctx).Model(&models.ExerciseSet{}).
		Where("id = ?", id).
		Update("question_count", count).Error
}
