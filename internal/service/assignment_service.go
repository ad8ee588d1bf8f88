package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/ChenBaiWa/studentSystem/internal/dto"
	"github.com/ChenBaiWa/studentSystem/internal/models"
	"github.com/ChenBaiWa/studentSystem/internal/repository"
)

// Teacher-side assignment errors surfaced to handlers.
var (
	ErrClassNotFound            = errors.New("class not found")
	ErrClassForbidden           = errors.New("class belongs to another teacher")
	ErrChapterNotFound          = errors.New("chapter not found")
	ErrAssignmentForbidden      = errors.New("assignment belongs to another teacher")
	ErrAssignmentHasSubmissions = errors.New("assignment already has submissions")
	ErrDeadlineInPast           = errors.New("deadline is already in the past")
)

// defaultAssignmentScore is used when a publish request omits totalScore.
const defaultAssignmentScore = 100

// AssignmentService covers the teacher side of assignments: publishing to
// classes, editing, deletion, and reviewing submissions.
type AssignmentService interface {
	// Publish creates one assignment row per target class. Class and chapter
	// names are denormalized onto each row at publish time.
	Publish(ctx context.Context, creatorID uint, creatorName string, req dto.PublishAssignmentRequest) ([]dto.AssignmentResponse, error)
	// Update edits a published assignment's title, content, score, or deadline.
	Update(ctx context.Context, creatorID, assignmentID uint, req dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error)
	// Delete removes an assignment. Refused once any submission exists.
	Delete(ctx context.Context, creatorID, assignmentID uint) error
	// List returns the teacher's assignments with submission counts,
	// optionally filtered to one class.
	List(ctx context.Context, creatorID uint, classID *uint) ([]dto.AssignmentResponse, error)
	// ListSubmissions returns every submission for one of the teacher's
	// assignments.
	ListSubmissions(ctx context.Context, creatorID, assignmentID uint) ([]dto.StudentAssignmentResponse, error)
}

type assignmentService struct {
	assignments repository.AssignmentRepository
	submissions repository.StudentAssignmentRepository
	classes     repository.ClassRepository
	chapters    repository.ChapterRepository
	sanitizer   *bluemonday.Policy
	validate    *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewAssignmentService wires the teacher assignment flows.
func NewAssignmentService(
	assignments repository.AssignmentRepository,
	submissions repository.StudentAssignmentRepository,
	classes repository.ClassRepository,
	chapters repository.ChapterRepository,
	logger zerolog.Logger,
) AssignmentService {
	return &assignmentService{
		assignments: assignments,
		submissions: submissions,
		classes:     classes,
		chapters:    chapters,
		sanitizer:   bluemonday.UGCPolicy(),
		validate:    validator.New(),
		logger:      logger.With().Str("component", "assignment_service").Logger(),
		now:         time.Now,
	}
}

func (s *assignmentService) Publish(ctx context.Context, creatorID uint, creatorName string, req dto.PublishAssignmentRequest) ([]dto.AssignmentResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	if req.Deadline.Before(s.now()) {
		return nil, ErrDeadlineInPast
	}

	totalScore := req.TotalScore
	if totalScore <= 0 {
		totalScore = defaultAssignmentScore
	}

	var chapterName string
	if req.ChapterID != nil {
		chapter, err := s.chapters.GetByID(ctx, *req.ChapterID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrChapterNotFound
			}
			return nil, fmt.Errorf("load chapter: %w", err)
		}
		chapterName = chapter.Name
	}

	// All classes are resolved before the first row is created, so a bad
	// class id rejects the whole publish.
	targets := make([]models.Class, 0, len(req.ClassIDs))
	for _, classID := range req.ClassIDs {
		class, err := s.classes.GetByID(ctx, classID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrClassNotFound
			}
			return nil, fmt.Errorf("load class %d: %w", classID, err)
		}
		if class.CreatorID != creatorID {
			return nil, ErrClassForbidden
		}
		targets = append(targets, class)
	}

	content := s.sanitizer.Sanitize(req.Content)

	responses := make([]dto.AssignmentResponse, 0, len(targets))
	for _, class := range targets {
		assignment := models.Assignment{
			Title:       req.Title,
			Content:     content,
			ClassID:     class.ID,
			ClassName:   class.Name,
			ChapterID:   req.ChapterID,
			ChapterName: chapterName,
			TotalScore:  totalScore,
			Deadline:    req.Deadline,
			CreatorID:   creatorID,
			CreatorName: creatorName,
		}
		if err := s.assignments.Create(ctx, &assignment); err != nil {
			return nil, fmt.Errorf("store assignment for class %d: %w", class.ID, err)
		}
		responses = append(responses, dto.NewAssignmentResponse(assignment, 0))
	}

	s.logger.Info().
		Uint("creator_id", creatorID).
		Int("class_count", len(targets)).
		Str("title", req.Title).
		Msg("assignment published")

	return responses, nil
}

func (s *assignmentService) Update(ctx context.Context, creatorID, assignmentID uint, req dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment, err := s.ownedAssignment(ctx, creatorID, assignmentID)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	if req.Title != nil {
		assignment.Title = *req.Title
	}
	if req.Content != nil {
		assignment.Content = s.sanitizer.Sanitize(*req.Content)
	}
	if req.TotalScore != nil {
		assignment.TotalScore = *req.TotalScore
	}
	if req.Deadline != nil {
		assignment.Deadline = *req.Deadline
	}

	if err := s.assignments.Update(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, fmt.Errorf("update assignment: %w", err)
	}

	count, err := s.submissions.CountByAssignment(ctx, assignment.ID)
	if err != nil {
		return dto.AssignmentResponse{}, fmt.Errorf("count submissions: %w", err)
	}

	return dto.NewAssignmentResponse(assignment, count), nil
}

func (s *assignmentService) Delete(ctx context.Context, creatorID, assignmentID uint) error {
	assignment, err := s.ownedAssignment(ctx, creatorID, assignmentID)
	if err != nil {
		return err
	}

	count, err := s.submissions.CountByAssignment(ctx, assignment.ID)
	if err != nil {
		return fmt.Errorf("count submissions: %w", err)
	}
	if count > 0 {
		return ErrAssignmentHasSubmissions
	}

	if err := s.assignments.Delete(ctx, assignment.ID); err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}

	s.logger.Info().
		Uint("assignment_id", assignment.ID).
		Uint("creator_id", creatorID).
		Msg("assignment deleted")

	return nil
}

func (s *assignmentService) List(ctx context.Context, creatorID uint, classID *uint) ([]dto.AssignmentResponse, error) {
	assignments, err := s.assignments.ListByCreator(ctx, creatorID, classID)
	if err != nil {
		return nil, fmt.Errorf("load assignments: %w", err)
	}

	responses := make([]dto.AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		count, err := s.submissions.CountByAssignment(ctx, assignment.ID)
		if err != nil {
			return nil, fmt.Errorf("count submissions for assignment %d: %w", assignment.ID, err)
		}
		responses = append(responses, dto.NewAssignmentResponse(assignment, count))
	}

	return responses, nil
}

func (s *assignmentService) ListSubmissions(ctx context.Context, creatorID, assignmentID uint) ([]dto.StudentAssignmentResponse, error) {
	if _, err := s.ownedAssignment(ctx, creatorID, assignmentID); err != nil {
		return nil, err
	}

	submissions, err := s.submissions.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("load submissions: %w", err)
	}

	return dto.NewStudentAssignmentResponseSlice(submissions), nil
}

func (s *assignmentService) ownedAssignment(ctx context.Context, creatorID, assignmentID uint) (models.Assignment, error) {
	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Assignment{}, ErrAssignmentNotFound
		}
		return models.Assignment{}, fmt.Errorf("load assignment: %w", err)
	}
	if assignment.CreatorID != creatorID {
		return models.Assignment{}, ErrAssignmentForbidden
	}

	return assignment, nil
}
