package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/ChenBaiWa/studentSystem/internal/models"
)

// ClassRepository defines persistence operations for classes and memberships.
type ClassRepository interface {
	GetByID(ctx context.Context, id uint) (models.Class, error)
	GetByClassCode(ctx context.Context, classCode string) (models.Class, error)
	ListByCreator(ctx context.Context, creatorID uint) ([]models.Class, error)
	Create(ctx context.Context, class *models.Class) error
	AddMembership(ctx context.Context, membership *models.ClassMembership) error
	HasMembership(ctx context.Context, studentID, classID uint) (bool, error)
	ListClassIDsByStudent(ctx context.Context, studentID uint) ([]uint, error)
}

type classRepository struct {
	db *gorm.DB
}

// NewClassRepository instantiates the repository.
func NewClassRepository(db *gorm.DB) ClassRepository {
	return &classRepository{db: db}
}

func (r *classRepository) GetByID(ctx context.Context, id uint) (models.Class, error) {
	var class models.Class
	if err := r.db.WithContext(ctx).First(&class, id).Error; err != nil {
		return models.Class{}, err
	}

	return class, nil
}

func (r *classRepository) GetByClassCode(ctx context.Context, classCode string) (models.Class, error) {
	var class models.Class
	if err := r.db.WithContext(ctx).Where("class_code = ?", classCode).First(&class).Error; err != nil {
		return models.Class{}, err
	}

	return class, nil
}

func (r *classRepository) ListByCreator(ctx context.Context, creatorID uint) ([]models.Class, error) {
	var classes []models.Class
	if err := r.db.WithContext(ctx).
		Where("creator_id = ?", creatorID).
		Order("created_at DESC").
		Find(&classes).Error; err != nil {
		return nil, err
	}

	return classes, nil
}

func (r *classRepository) Create(ctx context.Context, class *models.Class) error {
	return r.db.WithContext(ctx).Create(class).Error
}

func (r *classRepository) AddMembership(ctx context.Context, membership *models.ClassMembership) error {
	return r.db.WithContext(ctx).Create(membership).Error
}

func (r *classRepository) HasMembership(ctx context.Context, studentID, classID uint) (bool, error) {
	var membership models.ClassMembership
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Where("class_id = ?", classID).
		First(&membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

func (r *classRepository) ListClassIDsByStudent(ctx context.Context, studentID uint) ([]uint, error) {
	var classIDs []uint
	if err := r.db.WithContext(ctx).Model(&models.ClassMembership{}).
		Where("student_id = ?", studentID).
		Pluck("class_id", &classIDs).Error; err != nil {
		return nil, err
	}

	return classIDs, nil
}
