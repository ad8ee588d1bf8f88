package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ChenBaiWa/studentSystem/internal/models"
)

// QuestionRepository defines persistence operations for questions.
type QuestionRepository interface {
	GetByID(ctx context.Context, id uint) (models.Question, error)
	ListByExerciseSet(ctx context.Context, exerciseSetID uint) ([]models.Question, error)
	ListByExerciseSetAndChapter(ctx context.Context, exerciseSetID, chapterID uint) ([]models.Question, error)
	Create(ctx context.Context, question *models.Question) error
	CreateBatch(ctx context.Context, questions []models.Question) error
	Delete(ctx context.Context, id uint) error
	CountByExerciseSet(ctx context.Context, exerciseSetID uint) (int64, error)
}

type questionRepository struct {
	db *gorm.DB
}

// NewQuestionRepository instantiates a GORM-backed repository.
func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) GetByID(ctx context.Context, id uint) (models.Question, error) {
	var question models.Question
	if err := r.db.WithContext(ctx).First(&question, id).Error; err != nil {
		return models.Question{}, err
	}

	return question, nil
}

func (r *questionRepository) ListByExerciseSet(ctx context.Context, exerciseSetID uint) ([]models.Question, error) {
	var questions []models.Question
	if err := r.db.WithContext(ctx).
		Where("exercise_set_id = ?", exerciseSetID).
		Order("sort_order ASC, id ASC").
		Find(&questions).Error; err != nil {
		return nil, err
	}

	return questions, nil
}

func (r *questionRepository) ListByExerciseSetAndChapter(ctx context.Context, exerciseSetID, chapterID uint) ([]models.Question, error) {
	query := r.db.WithContext(ctx).Where("exercise_set_id = ?", exerciseSetID)

	// Chapter id zero addresses questions not assigned to any chapter.
	if chapterID == 0 {
		query = query.Where("chapter_id IS NULL")
	} else {
		query = query.Where("chapter_id = ?", chapterID)
	}

	var questions []models.Question
	if err := query.Order("sort_order ASC, id ASC").Find(&questions).Error; err != nil {
		return nil, err
	}

	return questions, nil
}

func (r *questionRepository) Create(ctx context.Context, question *models.Question) error {
	return r.db.WithContext(ctx).Create(question).Error
}

func (r *questionRepository) CreateBatch(ctx context.Context, questions []models.Question) error {
	if len(questions) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&questions).Error
}

func (r *questionRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Question{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *questionRepository) CountByExerciseSet(ctx context.Context, exerciseSetID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Question{}).
		Where("exercise_set_id = ?", exerciseSetID).
		Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}
