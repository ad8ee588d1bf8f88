package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/ChenBaiWa/studentSystem/internal/dto"
	"github.com/ChenBaiWa/studentSystem/internal/models"
	"github.com/ChenBaiWa/studentSystem/internal/repository"
)

// Exercise set errors surfaced to handlers.
var (
	ErrExerciseSetNotFound     = errors.New("exercise set not found")
	ErrExerciseSetForbidden    = errors.New("exercise set belongs to another teacher")
	ErrExerciseSetNotPublished = errors.New("exercise set is not published")
	ErrExerciseSetPublished    = errors.New("exercise set is already published")
	ErrChoiceNeedsOptions      = errors.New("choice questions require options")
)

// ExerciseSetService covers authoring and browsing exercise sets. Teachers
// edit sets in the editing state and publish them; students only ever see
// published sets.
type ExerciseSetService interface {
	Create(ctx context.Context, creatorID uint, creatorName string, req dto.ExerciseSetCreateRequest) (dto.ExerciseSetResponse, error)
	// ListMine returns the teacher's own sets in any state.
	ListMine(ctx context.Context, creatorID uint) ([]dto.ExerciseSetResponse, error)
	// ListPublished returns every published set, for student browsing.
	ListPublished(ctx context.Context) ([]dto.ExerciseSetResponse, error)
	// Publish flips a set from editing to published. Idempotent publishes
	// are rejected.
	Publish(ctx context.Context, creatorID, setID uint) (dto.ExerciseSetResponse, error)
	// AddQuestion appends a question to a set still in the editing state.
	AddQuestion(ctx context.Context, creatorID, setID uint, req dto.QuestionCreateRequest) (dto.QuestionResponse, error)
	// DeleteQuestion removes a question from its owning set, which must still
	// be in the editing state.
	DeleteQuestion(ctx context.Context, creatorID, questionID uint) error
	// ListQuestions returns a set's questions to its owning teacher,
	// including canonical answers.
	ListQuestions(ctx context.Context, creatorID, setID uint) ([]dto.QuestionResponse, error)
	// ListPublishedQuestions returns a published set's questions for a
	// student, with canonical answers stripped. Chapter id zero selects
	// questions not assigned to any chapter; nil selects the whole set.
	ListPublishedQuestions(ctx context.Context, setID uint, chapterID *uint) ([]dto.QuestionResponse, error)
	// ListChapters summarizes a published set's chapters with per-chapter
	// question counts and score totals. Questions without a chapter are
	// grouped under a synthetic chapter with id zero.
	ListChapters(ctx context.Context, setID uint) ([]dto.ChapterSummary, error)
}

type exerciseSetService struct {
	sets      repository.ExerciseSetRepository
	questions repository.QuestionRepository
	chapters  repository.ChapterRepository
	sanitizer *bluemonday.Policy
	validate  *validator.Validate
	logger    zerolog.Logger
}

// NewExerciseSetService wires the exercise set flows.
func NewExerciseSetService(
	sets repository.ExerciseSetRepository,
	questions repository.QuestionRepository,
	chapters repository.ChapterRepository,
	logger zerolog.Logger,
) ExerciseSetService {
	return &exerciseSetService{
		sets:      sets,
		questions: questions,
		chapters:  chapters,
		sanitizer: bluemonday.UGCPolicy(),
		validate:  validator.New(),
		logger:    logger.With().Str("component", "exercise_set_service").Logger(),
	}
}

func (s *exerciseSetService) Create(ctx context.Context, creatorID uint, creatorName string, req dto.ExerciseSetCreateRequest) (dto.ExerciseSetResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.ExerciseSetResponse{}, err
	}

	set := models.ExerciseSet{
		Name:        req.Name,
		Subject:     req.Subject,
		Status:      models.ExerciseSetStatusEditing,
		CreatorID:   creatorID,
		CreatorName: creatorName,
	}
	if err := s.sets.Create(ctx, &set); err != nil {
		return dto.ExerciseSetResponse{}, fmt.Errorf("store exercise set: %w", err)
	}

	return dto.NewExerciseSetResponse(set), nil
}

func (s *exerciseSetService) ListMine(ctx context.Context, creatorID uint) ([]dto.ExerciseSetResponse, error) {
	sets, err := s.sets.ListByCreator(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("load exercise sets: %w", err)
	}

	return dto.NewExerciseSetResponseSlice(sets), nil
}

func (s *exerciseSetService) ListPublished(ctx context.Context) ([]dto.ExerciseSetResponse, error) {
	sets, err := s.sets.ListPublished(ctx)
	if err != nil {
		return nil, fmt.Errorf("load published exercise sets: %w", err)
	}

	return dto.NewExerciseSetResponseSlice(sets), nil
}

func (s *exerciseSetService) Publish(ctx context.Context, creatorID, setID uint) (dto.ExerciseSetResponse, error) {
	set, err := s.ownedSet(ctx, creatorID, setID)
	if err != nil {
		return dto.ExerciseSetResponse{}, err
	}
	if set.IsPublished() {
		return dto.ExerciseSetResponse{}, ErrExerciseSetPublished
	}

	set.Status = models.ExerciseSetStatusPublished
	if err := s.sets.Update(ctx, &set); err != nil {
		return dto.ExerciseSetResponse{}, fmt.Errorf("publish exercise set: %w", err)
	}

	s.logger.Info().
		Uint("set_id", set.ID).
		Uint("creator_id", creatorID).
		Int("question_count", set.QuestionCount).
		Msg("exercise set published")

	return dto.NewExerciseSetResponse(set), nil
}

func (s *exerciseSetService) AddQuestion(ctx context.Context, creatorID, setID uint, req dto.QuestionCreateRequest) (dto.QuestionResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.QuestionResponse{}, err
	}
	if req.Type == models.QuestionTypeChoice && len(req.Options) == 0 {
		return dto.QuestionResponse{}, ErrChoiceNeedsOptions
	}

	set, err := s.ownedSet(ctx, creatorID, setID)
	if err != nil {
		return dto.QuestionResponse{}, err
	}
	if set.IsPublished() {
		return dto.QuestionResponse{}, ErrExerciseSetPublished
	}

	if req.ChapterID != nil {
		if _, err := s.chapters.GetByID(ctx, *req.ChapterID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.QuestionResponse{}, ErrChapterNotFound
			}
			return dto.QuestionResponse{}, fmt.Errorf("load chapter: %w", err)
		}
	}

	score := req.Score
	if score <= 0 {
		score = models.DefaultQuestionScore
	}

	question := models.Question{
		ExerciseSetID: set.ID,
		ChapterID:     req.ChapterID,
		Type:          req.Type,
		Content:       s.sanitizer.Sanitize(req.Content),
		Answer:        req.Answer,
		Score:         score,
		SortOrder:     req.SortOrder,
	}
	if len(req.Options) > 0 {
		encoded, err := json.Marshal(req.Options)
		if err != nil {
			return dto.QuestionResponse{}, fmt.Errorf("encode options: %w", err)
		}
		question.Options = encoded
	}

	if err := s.questions.Create(ctx, &question); err != nil {
		return dto.QuestionResponse{}, fmt.Errorf("store question: %w", err)
	}

	if err := s.refreshQuestionCount(ctx, set.ID); err != nil {
		return dto.QuestionResponse{}, err
	}

	return dto.NewQuestionResponse(question), nil
}

func (s *exerciseSetService) DeleteQuestion(ctx context.Context, creatorID, questionID uint) error {
	question, err := s.questions.GetByID(ctx, questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("load question: %w", err)
	}

	set, err := s.ownedSet(ctx, creatorID, question.ExerciseSetID)
	if err != nil {
		return err
	}
	if set.IsPublished() {
		return ErrExerciseSetPublished
	}

	if err := s.questions.Delete(ctx, questionID); err != nil {
		return fmt.Errorf("delete question: %w", err)
	}

	return s.refreshQuestionCount(ctx, set.ID)
}

func (s *exerciseSetService) ListQuestions(ctx context.Context, creatorID, setID uint) ([]dto.QuestionResponse, error) {
	set, err := s.ownedSet(ctx, creatorID, setID)
	if err != nil {
		return nil, err
	}

	questions, err := s.questions.ListByExerciseSet(ctx, set.ID)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}

	return dto.NewQuestionResponseSlice(questions), nil
}

func (s *exerciseSetService) ListPublishedQuestions(ctx context.Context, setID uint, chapterID *uint) ([]dto.QuestionResponse, error) {
	set, err := s.sets.GetByID(ctx, setID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExerciseSetNotFound
		}
		return nil, fmt.Errorf("load exercise set: %w", err)
	}
	if !set.IsPublished() {
		return nil, ErrExerciseSetNotPublished
	}

	var questions []models.Question
	if chapterID != nil {
		questions, err = s.questions.ListByExerciseSetAndChapter(ctx, set.ID, *chapterID)
	} else {
		questions, err = s.questions.ListByExerciseSet(ctx, set.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}

	responses := dto.NewQuestionResponseSlice(questions)
	// Students never receive canonical answers.
	for i := range responses {
		responses[i].Answer = ""
	}

	return responses, nil
}

// defaultChapterName labels the synthetic chapter holding questions that are
// not assigned to any chapter.
const defaultChapterName = "Default Chapter"

func (s *exerciseSetService) ListChapters(ctx context.Context, setID uint) ([]dto.ChapterSummary, error) {
	set, err := s.sets.GetByID(ctx, setID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExerciseSetNotFound
		}
		return nil, fmt.Errorf("load exercise set: %w", err)
	}
	if !set.IsPublished() {
		return nil, ErrExerciseSetNotPublished
	}

	questions, err := s.questions.ListByExerciseSet(ctx, set.ID)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}

	byChapter := make(map[uint]*dto.ChapterSummary)
	order := make([]uint, 0)
	for _, question := range questions {
		var chapterID uint
		if question.ChapterID != nil {
			chapterID = *question.ChapterID
		}
		summary, ok := byChapter[chapterID]
		if !ok {
			summary = &dto.ChapterSummary{ChapterID: chapterID}
			byChapter[chapterID] = summary
			order = append(order, chapterID)
		}
		summary.QuestionCount++
		summary.TotalScore += question.Score
	}

	sort.Slice(order, func(i, j int) bool {
		// The synthetic chapter for unassigned questions sorts last.
		if order[i] == 0 || order[j] == 0 {
			return order[j] == 0
		}
		return order[i] < order[j]
	})

	summaries := make([]dto.ChapterSummary, 0, len(order))
	for _, chapterID := range order {
		summary := *byChapter[chapterID]
		if chapterID == 0 {
			summary.ChapterName = defaultChapterName
		} else {
			chapter, err := s.chapters.GetByID(ctx, chapterID)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("load chapter: %w", err)
			}
			summary.ChapterName = chapter.Name
		}
		summaries = append(summaries, summary)
	}

	return summaries, nil
}

func (s *exerciseSetService) ownedSet(ctx context.Context, creatorID, setID uint) (models.ExerciseSet, error) {
	set, err := s.sets.GetByID(ctx, setID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ExerciseSet{}, ErrExerciseSetNotFound
		}
		return models.ExerciseSet{}, fmt.Errorf("load exercise set: %w", err)
	}
	if set.CreatorID != creatorID {
		return models.ExerciseSet{}, ErrExerciseSetForbidden
	}

	return set, nil
}

func (s *exerciseSetService) refreshQuestionCount(ctx context.Context, setID uint) error {
	count, err := s.questions.CountByExerciseSet(ctx, setID)
	if err != nil {
		return fmt.Errorf("count questions: %w", err)
	}
	if err := s.sets.UpdateQuestionCount(ctx, setID, int(count)); err != nil {
		return fmt.Errorf("update question count: %w", err)
	}
	return nil
}
