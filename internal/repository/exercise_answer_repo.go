package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/ChenBaiWa/studentSystem/internal/models"
)

// GradingWriteBack carries the grading result applied to an answer row.
type GradingWriteBack struct {
	Score         int
	Remark        string
	CorrectStatus int
}

// ExerciseAnswerRepository defines persistence operations for exercise answers.
type ExerciseAnswerRepository interface {
	GetByStudentAndQuestion(ctx context.Context, studentID, questionID uint) (models.ExerciseAnswer, error)
	ListByStudentAndQuestionIDs(ctx context.Context, studentID uint, questionIDs []uint) ([]models.ExerciseAnswer, error)
	Create(ctx context.Context, answer *models.ExerciseAnswer) error
	Update(ctx context.Context, answer *models.ExerciseAnswer) error
	DeleteByStudentAndQuestionIDs(ctx context.Context, studentID uint, questionIDs []uint) error
	// UpdateGradingResult writes a grading outcome back onto the row identified
	// by id, but only while the row still carries the given generation. It
	// reports whether a row was updated, so a stale async callback can detect
	// that the answer was replaced after dispatch.
	UpdateGradingResult(ctx context.Context, id uint, generation uint64, result GradingWriteBack) (bool, error)
}

type exerciseAnswerRepository struct {
	db *gorm.DB
}

// NewExerciseAnswerRepository instantiates the repository.
func NewExerciseAnswerRepository(db *gorm.DB) ExerciseAnswerRepository {
	return &exerciseAnswerRepository{db: db}
}

func (r *exerciseAnswerRepository) GetByStudentAndQuestion(ctx context.Context, studentID, questionID uint) (models.ExerciseAnswer, error) {
	var answer models.ExerciseAnswer
	if err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Where("question_id = ?", questionID).
		First(&answer).Error; err != nil {
		return models.ExerciseAnswer{}, err
	}

	return answer, nil
}

func (r *exerciseAnswerRepository) ListByStudentAndQuestionIDs(ctx context.Context, studentID uint, questionIDs []uint) ([]models.ExerciseAnswer, error) {
	if len(questionIDs) == 0 {
		return nil, nil
	}

	var answers []models.ExerciseAnswer
	if err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Where("question_id IN ?", questionIDs).
		Find(&answers).Error; err != nil {
		return nil, err
	}

	return answers, nil
}

func (r *exerciseAnswerRepository) Create(ctx context.Context, answer *models.ExerciseAnswer) error {
	return r.db.WithContext(ctx).Create(answer).Error
}

func (r *exerciseAnswerRepository) Update(ctx context.Context, answer *models.ExerciseAnswer) error {
	return r.db.WithContext(ctx).Save(answer).Error
}

func (r *exerciseAnswerRepository) DeleteByStudentAndQuestionIDs(ctx context.Context, studentID uint, questionIDs []uint) error {
	if len(questionIDs) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Where("question_id IN ?", questionIDs).
		Delete(&models.ExerciseAnswer{}).Error
}

func (r *exerciseAnswerRepository) UpdateGradingResult(ctx context.Context, id uint, generation uint64, result GradingWriteBack) (bool, error) {
	update := r.db.WithContext(ctx).Model(&models.ExerciseAnswer{}).
		Where("id = ?", id).
		Where("generation = ?", generation).
		Updates(map[string]interface{}{
			"score":          result.Score,
			"remark":         result.Remark,
			"correct_status": result.CorrectStatus,
			"updated_at":     time.Now(),
		})
	if update.Error != nil {
		return false, update.Error
	}

	return update.RowsAffected > 0, nil
}
