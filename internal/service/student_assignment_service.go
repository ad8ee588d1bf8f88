package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/ChenBaiWa/studentSystem/internal/dto"
	"github.com/ChenBaiWa/studentSystem/internal/models"
	"github.com/ChenBaiWa/studentSystem/internal/observability"
	"github.com/ChenBaiWa/studentSystem/internal/repository"
	"github.com/ChenBaiWa/studentSystem/pkg/ai"
	"github.com/ChenBaiWa/studentSystem/pkg/blob"
)

// Assignment submission errors surfaced to handlers.
var (
	ErrAssignmentNotFound   = errors.New("assignment not found")
	ErrAlreadySubmitted     = errors.New("assignment already submitted")
	ErrDeadlinePassed       = errors.New("assignment deadline has passed")
	ErrNotClassMember       = errors.New("student is not a member of the assignment's class")
	ErrSubmissionNotFound   = errors.New("submission not found")
	ErrSubmissionForbidden  = errors.New("submission belongs to another student")
	ErrEmptySubmissionImage = errors.New("submission contains no image references")
)

// StudentAssignmentService handles the student side of assignments: submitting
// homework images for AI grading and the pending/submitted/expired overview.
type StudentAssignmentService interface {
	// Submit records a homework submission and grades its images inline. A
	// grading failure still keeps the submission; it stays in the submitted
	// state until regraded.
	Submit(ctx context.Context, studentID uint, studentName string, req dto.SubmitAssignmentRequest) (dto.StudentAssignmentResponse, error)
	// ListBuckets classifies every assignment bound to the student's classes
	// into exactly one of pending, submitted, or expired.
	ListBuckets(ctx context.Context, studentID uint) (dto.StudentAssignmentBuckets, error)
	// GetDetail returns one submission together with its assignment.
	GetDetail(ctx context.Context, studentID, submissionID uint) (dto.StudentAssignmentDetail, error)
}

type studentAssignmentService struct {
	assignments repository.AssignmentRepository
	submissions repository.StudentAssignmentRepository
	classes     repository.ClassRepository
	users       repository.UserRepository
	grader      ai.Grader
	events      GradingEventPublisher
	cache       *redis.Client
	cacheTTL    time.Duration
	validate    *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewStudentAssignmentService wires the student assignment flows. A nil cache
// disables overview caching.
func NewStudentAssignmentService(
	assignments repository.AssignmentRepository,
	submissions repository.StudentAssignmentRepository,
	classes repository.ClassRepository,
	users repository.UserRepository,
	grader ai.Grader,
	events GradingEventPublisher,
	cache *redis.Client,
	cacheTTL time.Duration,
	logger zerolog.Logger,
) StudentAssignmentService {
	return &studentAssignmentService{
		assignments: assignments,
		submissions: submissions,
		classes:     classes,
		users:       users,
		grader:      grader,
		events:      events,
		cache:       cache,
		cacheTTL:    cacheTTL,
		validate:    validator.New(),
		logger:      logger.With().Str("component", "student_assignment_service").Logger(),
		now:         time.Now,
	}
}

func (s *studentAssignmentService) Submit(ctx context.Context, studentID uint, studentName string, req dto.SubmitAssignmentRequest) (dto.StudentAssignmentResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.StudentAssignmentResponse{}, err
	}

	imageRefs := blob.SplitImageRefs(req.Answer)
	if len(imageRefs) == 0 {
		return dto.StudentAssignmentResponse{}, ErrEmptySubmissionImage
	}

	assignment, err := s.assignments.GetByID(ctx, req.AssignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentAssignmentResponse{}, ErrAssignmentNotFound
		}
		return dto.StudentAssignmentResponse{}, fmt.Errorf("load assignment: %w", err)
	}

	member, err := s.classes.HasMembership(ctx, studentID, assignment.ClassID)
	if err != nil {
		return dto.StudentAssignmentResponse{}, fmt.Errorf("check class membership: %w", err)
	}
	if !member {
		return dto.StudentAssignmentResponse{}, ErrNotClassMember
	}

	if _, err := s.submissions.GetByAssignmentAndStudent(ctx, req.AssignmentID, studentID); err == nil {
		return dto.StudentAssignmentResponse{}, ErrAlreadySubmitted
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.StudentAssignmentResponse{}, fmt.Errorf("check existing submission: %w", err)
	}

	submittedAt := s.now()
	if assignment.IsPastDue(submittedAt) {
		return dto.StudentAssignmentResponse{}, ErrDeadlinePassed
	}

	// Tokens issued before the name claim was added carry no display name.
	if studentName == "" && s.users != nil {
		if user, err := s.users.GetByID(ctx, studentID); err == nil {
			studentName = user.Name
		}
	}

	submission := models.StudentAssignment{
		AssignmentID: req.AssignmentID,
		StudentID:    studentID,
		StudentName:  studentName,
		Answer:       req.Answer,
		Status:       models.StudentAssignmentStatusSubmitted,
		SubmittedAt:  submittedAt,
	}
	if err := s.submissions.Create(ctx, &submission); err != nil {
		return dto.StudentAssignmentResponse{}, fmt.Errorf("store submission: %w", err)
	}

	observability.GradingSubmissions().WithLabelValues("assignment").Inc()
	s.gradeSubmission(ctx, &submission, imageRefs)
	s.invalidateOverview(ctx, studentID)

	return dto.NewStudentAssignmentResponse(submission), nil
}

// gradeSubmission grades the homework images inline. A transport failure
// leaves the submission in the submitted state rather than failing the
// request; the student's upload is never lost to a grading outage.
func (s *studentAssignmentService) gradeSubmission(ctx context.Context, submission *models.StudentAssignment, imageRefs []string) {
	result, err := s.grader.GradeAssignmentImages(ctx, imageRefs)
	if err != nil {
		observability.GradingCompleted().WithLabelValues("assignment", "failed").Inc()
		s.logger.Warn().Err(err).
			Uint("submission_id", submission.ID).
			Msg("assignment grading call failed, submission kept ungraded")
		return
	}

	gradedAt := s.now()
	score := result.Score
	submission.Score = &score
	submission.Feedback = result.Feedback
	submission.Status = models.StudentAssignmentStatusGraded
	submission.GradedAt = &gradedAt

	if err := s.submissions.Update(ctx, submission); err != nil {
		s.logger.Error().Err(err).
			Uint("submission_id", submission.ID).
			Msg("failed to write back assignment grading result")
		return
	}

	outcome := "graded"
	if result.Fallback {
		outcome = "fallback"
	}
	observability.GradingCompleted().WithLabelValues("assignment", outcome).Inc()

	s.events.Publish(GradingEvent{
		Kind:         "assignment",
		StudentID:    submission.StudentID,
		AssignmentID: submission.AssignmentID,
		Score:        score,
		Status:       submission.Status,
		GradedAt:     gradedAt,
	})
}

func (s *studentAssignmentService) ListBuckets(ctx context.Context, studentID uint) (dto.StudentAssignmentBuckets, error) {
	if cached, ok := s.cachedOverview(ctx, studentID); ok {
		return cached, nil
	}

	classIDs, err := s.classes.ListClassIDsByStudent(ctx, studentID)
	if err != nil {
		return dto.StudentAssignmentBuckets{}, fmt.Errorf("load class memberships: %w", err)
	}

	assignments, err := s.assignments.ListByClassIDs(ctx, classIDs)
	if err != nil {
		return dto.StudentAssignmentBuckets{}, fmt.Errorf("load assignments: %w", err)
	}

	submissions, err := s.submissions.ListByStudent(ctx, studentID)
	if err != nil {
		return dto.StudentAssignmentBuckets{}, fmt.Errorf("load submissions: %w", err)
	}

	byAssignment := make(map[uint]models.StudentAssignment, len(submissions))
	for _, submission := range submissions {
		byAssignment[submission.AssignmentID] = submission
	}

	buckets := dto.StudentAssignmentBuckets{
		Pending:   []dto.StudentAssignmentView{},
		Submitted: []dto.StudentAssignmentView{},
		Expired:   []dto.StudentAssignmentView{},
	}
	reference := s.now()

	// Classification is derived on every read. The stored status only tracks
	// grading progress, so an assignment crossing its deadline moves to the
	// expired bucket without any row being touched.
	for _, assignment := range assignments {
		view := newAssignmentView(assignment)

		if submission, ok := byAssignment[assignment.ID]; ok {
			submittedAt := submission.SubmittedAt
			view.SubmittedAt = &submittedAt
			view.Status = submission.Status
			view.Score = submission.Score
			view.Feedback = submission.Feedback
			buckets.Submitted = append(buckets.Submitted, view)
			continue
		}

		if assignment.IsPastDue(reference) {
			buckets.Expired = append(buckets.Expired, view)
			continue
		}

		buckets.Pending = append(buckets.Pending, view)
	}

	s.storeOverview(ctx, studentID, buckets)

	return buckets, nil
}

func (s *studentAssignmentService) GetDetail(ctx context.Context, studentID, submissionID uint) (dto.StudentAssignmentDetail, error) {
	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentAssignmentDetail{}, ErrSubmissionNotFound
		}
		return dto.StudentAssignmentDetail{}, fmt.Errorf("load submission: %w", err)
	}
	if submission.StudentID != studentID {
		return dto.StudentAssignmentDetail{}, ErrSubmissionForbidden
	}

	assignment, err := s.assignments.GetByID(ctx, submission.AssignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentAssignmentDetail{}, ErrAssignmentNotFound
		}
		return dto.StudentAssignmentDetail{}, fmt.Errorf("load assignment: %w", err)
	}

	count, err := s.submissions.CountByAssignment(ctx, assignment.ID)
	if err != nil {
		return dto.StudentAssignmentDetail{}, fmt.Errorf("count submissions: %w", err)
	}

	return dto.StudentAssignmentDetail{
		StudentAssignment: dto.NewStudentAssignmentResponse(submission),
		Assignment:        dto.NewAssignmentResponse(assignment, count),
	}, nil
}

func overviewCacheKey(studentID uint) string {
	return fmt.Sprintf("studysys:student:%d:assignments", studentID)
}

func (s *studentAssignmentService) cachedOverview(ctx context.Context, studentID uint) (dto.StudentAssignmentBuckets, bool) {
	if s.cache == nil {
		return dto.StudentAssignmentBuckets{}, false
	}

	payload, err := s.cache.Get(ctx, overviewCacheKey(studentID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("assignment overview cache read failed")
		}
		return dto.StudentAssignmentBuckets{}, false
	}

	var buckets dto.StudentAssignmentBuckets
	if err := json.Unmarshal(payload, &buckets); err != nil {
		s.logger.Warn().Err(err).Msg("assignment overview cache entry corrupt")
		return dto.StudentAssignmentBuckets{}, false
	}

	return buckets, true
}

func (s *studentAssignmentService) storeOverview(ctx context.Context, studentID uint, buckets dto.StudentAssignmentBuckets) {
	if s.cache == nil {
		return
	}

	payload, err := json.Marshal(buckets)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, overviewCacheKey(studentID), payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("assignment overview cache write failed")
	}
}

func (s *studentAssignmentService) invalidateOverview(ctx context.Context, studentID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, overviewCacheKey(studentID)).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("assignment overview cache invalidation failed")
	}
}

func newAssignmentView(assignment models.Assignment) dto.StudentAssignmentView {
	return dto.StudentAssignmentView{
		ID:          assignment.ID,
		Title:       assignment.Title,
		ClassID:     assignment.ClassID,
		ClassName:   assignment.ClassName,
		ChapterID:   assignment.ChapterID,
		ChapterName: assignment.ChapterName,
		Content:     assignment.Content,
		TotalScore:  assignment.TotalScore,
		Deadline:    assignment.Deadline,
		CreatedAt:   assignment.CreatedAt,
	}
}
