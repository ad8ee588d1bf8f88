package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ChenBaiWa/studentSystem/internal/models"
)

// StudentAssignmentRepository defines persistence operations for assignment submissions.
type StudentAssignmentRepository interface {
	GetByID(ctx context.Context, id uint) (models.StudentAssignment, error)
	GetByAssignmentAndStudent(ctx context.Context, assignmentID, studentID uint) (models.StudentAssignment, error)
	ListByStudent(ctx context.Context, studentID uint) ([]models.StudentAssignment, error)
	ListByAssignment(ctx context.Context, assignmentID uint) ([]models.StudentAssignment, error)
	Create(ctx context.Context, submission *models.StudentAssignment) error
	Update(ctx context.Context, submission *models.StudentAssignment) error
	CountByAssignment(ctx context.Context, assignmentID uint) (int64, error)
}

type studentAssignmentRepository struct {
	db *gorm.DB
}

// NewStudentAssignmentRepository instantiates the repository.
func NewStudentAssignmentRepository(db *gorm.DB) StudentAssignmentRepository {
	return &studentAssignmentRepository{db: db}
}

func (r *studentAssignmentRepository) GetByID(ctx context.Context, id uint) (models.StudentAssignment, error) {
	var submission models.StudentAssignment
	if err := r.db.WithContext(ctx).First(&submission, id).Error; err != nil {
		return models.StudentAssignment{}, err
	}

	return submission, nil
}

func (r *studentAssignmentRepository) GetByAssignmentAndStudent(ctx context.Context, assignmentID, studentID uint) (models.StudentAssignment, error) {
	var submission models.StudentAssignment
	if err := r.db.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		Where("student_id = ?", studentID).
		First(&submission).Error; err != nil {
		return models.StudentAssignment{}, err
	}

	return submission, nil
}

func (r *studentAssignmentRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.StudentAssignment, error) {
	var submissions []models.StudentAssignment
	if err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("submitted_at DESC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *studentAssignmentRepository) ListByAssignment(ctx context.Context, assignmentID uint) ([]models.StudentAssignment, error) {
	var submissions []models.StudentAssignment
	if err := r.db.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		Order("submitted_at ASC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *studentAssignmentRepository) Create(ctx context.Context, submission *models.StudentAssignment) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *studentAssignmentRepository) Update(ctx context.Context, submission *models.StudentAssignment) error {
	return r.db.WithContext(ctx).Save(submission).Error
}

func (r *studentAssignmentRepository) CountByAssignment(ctx context.Context, assignmentID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.StudentAssignment{}).
		Where("assignment_id = ?", assignmentID).
		Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}
