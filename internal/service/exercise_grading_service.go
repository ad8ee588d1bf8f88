package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/ChenBaiWa/studentSystem/internal/dto"
	"github.com/ChenBaiWa/studentSystem/internal/grading"
	"github.com/ChenBaiWa/studentSystem/internal/models"
	"github.com/ChenBaiWa/studentSystem/internal/observability"
	"github.com/ChenBaiWa/studentSystem/internal/repository"
	"github.com/ChenBaiWa/studentSystem/pkg/ai"
)

// Grading pipeline errors surfaced to handlers.
var (
	ErrQuestionNotFound = errors.New("question not found")
	ErrAnswerNotFound   = errors.New("answer not found")
	ErrQuestionNotInSet = errors.New("question does not belong to the exercise set")
	ErrEmptyBatch       = errors.New("batch contains no answers")
)

// gradingTimeout bounds a single asynchronous call to the completion service.
const gradingTimeout = 60 * time.Second

// remarkGradingInProgress is stored on a subjective answer between acceptance
// and the grading write-back.
const remarkGradingInProgress = "AI grading in progress"

// ExerciseGradingService accepts student answers and runs them through the
// grading pipeline: objective questions are graded inline, subjective
// questions are dispatched to the grading pool and written back
// asynchronously.
type ExerciseGradingService interface {
	// SubmitAnswer records one answer, replacing any previous answer by the
	// same student to the same question, and starts grading it.
	SubmitAnswer(ctx context.Context, studentID uint, req dto.SubmitAnswerRequest) (dto.AnswerResponse, error)
	// SubmitBatch replaces the student's answers to a published exercise set
	// (or one of its chapters) in a single operation. The whole scope is
	// replaced: previous answers to questions omitted from the batch are
	// removed too. Any answer referencing a question outside the scope
	// rejects the whole batch.
	SubmitBatch(ctx context.Context, studentID, exerciseSetID uint, chapterID *uint, items []dto.BatchAnswerItem) ([]dto.AnswerResponse, error)
	// GetResult returns the student's answer to one question, graded or not.
	GetResult(ctx context.Context, studentID, questionID uint) (dto.AnswerResponse, error)
	// GetSetResults returns the student's answers for a published set, or one
	// of its chapters, along with the total score accumulated so far.
	GetSetResults(ctx context.Context, studentID, exerciseSetID uint, chapterID *uint) (dto.ExerciseResultsResponse, error)
}

type exerciseGradingService struct {
	answers   repository.ExerciseAnswerRepository
	questions repository.QuestionRepository
	sets      repository.ExerciseSetRepository
	grader    ai.Grader
	executor  Executor
	events    GradingEventPublisher
	validate  *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewExerciseGradingService wires the grading pipeline.
func NewExerciseGradingService(
	answers repository.ExerciseAnswerRepository,
	questions repository.QuestionRepository,
	sets repository.ExerciseSetRepository,
	grader ai.Grader,
	executor Executor,
	events GradingEventPublisher,
	logger zerolog.Logger,
) ExerciseGradingService {
	return &exerciseGradingService{
		answers:   answers,
		questions: questions,
		sets:      sets,
		grader:    grader,
		executor:  executor,
		events:    events,
		validate:  validator.New(),
		logger:    logger.With().Str("component", "exercise_grading_service").Logger(),
		now:       time.Now,
	}
}

func (s *exerciseGradingService) SubmitAnswer(ctx context.Context, studentID uint, req dto.SubmitAnswerRequest) (dto.AnswerResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.AnswerResponse{}, err
	}

	question, err := s.questions.GetByID(ctx, req.QuestionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AnswerResponse{}, ErrQuestionNotFound
		}
		return dto.AnswerResponse{}, fmt.Errorf("load question: %w", err)
	}

	answer, err := s.upsertAnswer(ctx, studentID, question, req.Answer, req.AnswerType, req.ImageURLs)
	if err != nil {
		return dto.AnswerResponse{}, err
	}

	if question.IsObjective() {
		observability.GradingSubmissions().WithLabelValues("objective").Inc()
		answer = s.gradeObjective(ctx, answer, question)
	} else {
		observability.GradingSubmissions().WithLabelValues("subjective").Inc()
		s.dispatchSubjective(answer, question)
	}

	return dto.NewAnswerResponse(answer), nil
}

func (s *exerciseGradingService) SubmitBatch(ctx context.Context, studentID, exerciseSetID uint, chapterID *uint, items []dto.BatchAnswerItem) ([]dto.AnswerResponse, error) {
	if len(items) == 0 {
		return nil, ErrEmptyBatch
	}
	for _, item := range items {
		if err := s.validate.Struct(item); err != nil {
			return nil, err
		}
	}

	questions, err := s.scopedQuestions(ctx, exerciseSetID, chapterID)
	if err != nil {
		return nil, err
	}

	byID := make(map[uint]models.Question, len(questions))
	scopeIDs := make([]uint, 0, len(questions))
	for _, question := range questions {
		byID[question.ID] = question
		scopeIDs = append(scopeIDs, question.ID)
	}

	// A single foreign question id rejects the whole batch; partially applied
	// batches would leave the student's result view inconsistent.
	for _, item := range items {
		if _, ok := byID[item.QuestionID]; !ok {
			return nil, ErrQuestionNotInSet
		}
	}

	// The batch replaces the whole scope: clearing by the scope's question ids
	// rather than the batch's drops answers to questions the resubmission
	// omitted.
	if err := s.answers.DeleteByStudentAndQuestionIDs(ctx, studentID, scopeIDs); err != nil {
		return nil, fmt.Errorf("clear previous answers: %w", err)
	}

	responses := make([]dto.AnswerResponse, 0, len(items))
	for _, item := range items {
		question := byID[item.QuestionID]

		answer := models.ExerciseAnswer{
			StudentID:  studentID,
			QuestionID: item.QuestionID,
			Answer:     item.Answer,
			AnswerType: normalizeAnswerType(item.AnswerType, item.ImageURLs),
			Generation: 1,
		}
		if encoded := encodeImageURLs(item.ImageURLs); encoded != nil {
			answer.ImageURLs = encoded
		}
		if !question.IsObjective() {
			answer.Remark = remarkGradingInProgress
		}

		if err := s.answers.Create(ctx, &answer); err != nil {
			return nil, fmt.Errorf("store answer: %w", err)
		}

		if question.IsObjective() {
			observability.GradingSubmissions().WithLabelValues("objective").Inc()
			answer = s.gradeObjective(ctx, answer, question)
		} else {
			observability.GradingSubmissions().WithLabelValues("subjective").Inc()
			s.dispatchSubjective(answer, question)
		}

		responses = append(responses, dto.NewAnswerResponse(answer))
	}

	return responses, nil
}

func (s *exerciseGradingService) GetResult(ctx context.Context, studentID, questionID uint) (dto.AnswerResponse, error) {
	answer, err := s.answers.GetByStudentAndQuestion(ctx, studentID, questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AnswerResponse{}, ErrAnswerNotFound
		}
		return dto.AnswerResponse{}, fmt.Errorf("load answer: %w", err)
	}

	return dto.NewAnswerResponse(answer), nil
}

func (s *exerciseGradingService) GetSetResults(ctx context.Context, studentID, exerciseSetID uint, chapterID *uint) (dto.ExerciseResultsResponse, error) {
	questions, err := s.scopedQuestions(ctx, exerciseSetID, chapterID)
	if err != nil {
		return dto.ExerciseResultsResponse{}, err
	}

	questionIDs := make([]uint, 0, len(questions))
	for _, question := range questions {
		questionIDs = append(questionIDs, question.ID)
	}

	answers, err := s.answers.ListByStudentAndQuestionIDs(ctx, studentID, questionIDs)
	if err != nil {
		return dto.ExerciseResultsResponse{}, fmt.Errorf("load answers: %w", err)
	}

	total := 0
	for _, answer := range answers {
		if answer.Score != nil {
			total += *answer.Score
		}
	}

	return dto.ExerciseResultsResponse{
		TotalScore: total,
		Results:    dto.NewAnswerResponseSlice(answers),
	}, nil
}

// scopedQuestions loads the questions of a published set, limited to one
// chapter when chapterID is set. Chapter id zero selects questions without a
// chapter. Missing and unpublished sets are rejected before any question is
// loaded.
func (s *exerciseGradingService) scopedQuestions(ctx context.Context, exerciseSetID uint, chapterID *uint) ([]models.Question, error) {
	set, err := s.sets.GetByID(ctx, exerciseSetID)
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

	return questions, nil
}

// upsertAnswer replaces the previous answer to the same question, resetting
// the grading fields and bumping the generation so an in-flight grading task
// for the old answer can no longer write back.
func (s *exerciseGradingService) upsertAnswer(ctx context.Context, studentID uint, question models.Question, text string, answerType int, imageURLs []string) (models.ExerciseAnswer, error) {
	answer, err := s.answers.GetByStudentAndQuestion(ctx, studentID, question.ID)
	switch {
	case err == nil:
		answer.Answer = text
		answer.AnswerType = normalizeAnswerType(answerType, imageURLs)
		answer.ImageURLs = encodeImageURLs(imageURLs)
		answer.Score = nil
		answer.Remark = ""
		answer.CorrectStatus = models.CorrectStatusPending
		answer.Generation++
		if !question.IsObjective() {
			answer.Remark = remarkGradingInProgress
		}
		if err := s.answers.Update(ctx, &answer); err != nil {
			return models.ExerciseAnswer{}, fmt.Errorf("replace answer: %w", err)
		}
		return answer, nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		answer = models.ExerciseAnswer{
			StudentID:  studentID,
			QuestionID: question.ID,
			Answer:     text,
			AnswerType: normalizeAnswerType(answerType, imageURLs),
			ImageURLs:  encodeImageURLs(imageURLs),
			Generation: 1,
		}
		if !question.IsObjective() {
			answer.Remark = remarkGradingInProgress
		}
		if err := s.answers.Create(ctx, &answer); err != nil {
			return models.ExerciseAnswer{}, fmt.Errorf("store answer: %w", err)
		}
		return answer, nil

	default:
		return models.ExerciseAnswer{}, fmt.Errorf("load existing answer: %w", err)
	}
}

// gradeObjective grades inline and writes the result back under the answer's
// current generation.
func (s *exerciseGradingService) gradeObjective(ctx context.Context, answer models.ExerciseAnswer, question models.Question) models.ExerciseAnswer {
	result := grading.GradeObjective(question, answer.Answer)

	applied, err := s.answers.UpdateGradingResult(ctx, answer.ID, answer.Generation, repository.GradingWriteBack{
		Score:         result.Score,
		Remark:        result.Remark,
		CorrectStatus: result.CorrectStatus,
	})
	if err != nil {
		s.logger.Error().Err(err).
			Uint("answer_id", answer.ID).
			Msg("failed to write back objective grading result")
		return answer
	}
	if !applied {
		s.logger.Warn().
			Uint("answer_id", answer.ID).
			Msg("objective grading result discarded, answer was replaced")
		return answer
	}

	outcome := "incorrect"
	if result.Correct {
		outcome = "correct"
	}
	observability.GradingCompleted().WithLabelValues("objective", outcome).Inc()

	s.events.Publish(GradingEvent{
		Kind:          "exercise_objective",
		StudentID:     answer.StudentID,
		QuestionID:    answer.QuestionID,
		Score:         result.Score,
		CorrectStatus: result.CorrectStatus,
		GradedAt:      s.now(),
	})

	score := result.Score
	answer.Score = &score
	answer.Remark = result.Remark
	answer.CorrectStatus = result.CorrectStatus
	return answer
}

// dispatchSubjective hands a subjective answer to the grading pool. The task
// carries the answer's generation; a resubmission in the meantime makes the
// write-back a no-op.
func (s *exerciseGradingService) dispatchSubjective(answer models.ExerciseAnswer, question models.Question) {
	var imageRefs []string
	if len(answer.ImageURLs) > 0 {
		_ = json.Unmarshal(answer.ImageURLs, &imageRefs)
	}

	input := ai.SubjectiveInput{
		QuestionContent: question.Content,
		ReferenceAnswer: question.Answer,
		MaxScore:        question.Score,
		AnswerText:      answer.Answer,
		ImageRefs:       imageRefs,
	}
	answerID := answer.ID
	generation := answer.Generation
	studentID := answer.StudentID
	questionID := answer.QuestionID
	maxScore := question.Score

	s.executor.Dispatch(func() {
		ctx, cancel := context.WithTimeout(context.Background(), gradingTimeout)
		defer cancel()

		writeBack, outcome := s.runSubjectiveGrading(ctx, input)

		applied, err := s.answers.UpdateGradingResult(ctx, answerID, generation, writeBack)
		if err != nil {
			s.logger.Error().Err(err).
				Uint("answer_id", answerID).
				Msg("failed to write back subjective grading result")
			return
		}
		if !applied {
			observability.GradingCompleted().WithLabelValues("subjective", "stale").Inc()
			s.logger.Info().
				Uint("answer_id", answerID).
				Msg("subjective grading result discarded, answer was replaced")
			return
		}

		observability.GradingCompleted().WithLabelValues("subjective", outcome).Inc()

		s.events.Publish(GradingEvent{
			Kind:          "exercise_subjective",
			StudentID:     studentID,
			QuestionID:    questionID,
			Score:         writeBack.Score,
			CorrectStatus: writeBack.CorrectStatus,
			GradedAt:      s.now(),
		})

		s.logger.Info().
			Uint("answer_id", answerID).
			Int("score", writeBack.Score).
			Int("max_score", maxScore).
			Str("outcome", outcome).
			Msg("subjective answer graded")
	})
}

// runSubjectiveGrading calls the completion service and converts its result
// into a write-back. A transport failure grades the answer with score zero so
// it never stays pending forever.
func (s *exerciseGradingService) runSubjectiveGrading(ctx context.Context, input ai.SubjectiveInput) (repository.GradingWriteBack, string) {
	result, err := s.grader.GradeSubjective(ctx, input)
	if err != nil {
		s.logger.Warn().Err(err).Msg("subjective grading call failed")
		return repository.GradingWriteBack{
			Score:         0,
			Remark:        fmt.Sprintf("AI grading failed: %s", err),
			CorrectStatus: models.CorrectStatusIncorrect,
		}, "failed"
	}

	status := models.CorrectStatusIncorrect
	if result.Score >= input.MaxScore {
		status = models.CorrectStatusCorrect
	}

	outcome := "graded"
	if result.Fallback {
		outcome = "fallback"
	}

	return repository.GradingWriteBack{
		Score:         result.Score,
		Remark:        result.Feedback,
		CorrectStatus: status,
	}, outcome
}

// normalizeAnswerType defaults the answer kind from its payload when the
// client omits it.
func normalizeAnswerType(answerType int, imageURLs []string) int {
	if answerType == models.AnswerTypeText || answerType == models.AnswerTypeImage {
		return answerType
	}
	if len(imageURLs) > 0 {
		return models.AnswerTypeImage
	}
	return models.AnswerTypeText
}

// encodeImageURLs marshals image refs for storage; empty input stores NULL.
func encodeImageURLs(imageURLs []string) []byte {
	if len(imageURLs) == 0 {
		return nil
	}
	encoded, err := json.Marshal(imageURLs)
	if err != nil {
		return nil
	}
	return encoded
}
