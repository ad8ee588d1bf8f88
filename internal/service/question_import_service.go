package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gorm.io/gorm"

	"github.com/ChenBaiWa/studentSystem/internal/dto"
	"github.com/ChenBaiWa/studentSystem/internal/models"
	"github.com/ChenBaiWa/studentSystem/internal/repository"
	"github.com/ChenBaiWa/studentSystem/pkg/ai"
)

// ErrNoQuestionsExtracted is returned when the completion service found no
// usable questions in the supplied images.
var ErrNoQuestionsExtracted = errors.New("no questions extracted from images")

// extractedQuestionSchema validates each question the completion service
// returns before it is persisted. The model's output is untrusted input.
const extractedQuestionSchema = `{
	"type": "object",
	"required": ["type", "content"],
	"properties": {
		"type": {"type": "string", "enum": ["choice", "fill", "subjective"]},
		"content": {"type": "string", "minLength": 1},
		"options": {"type": "array", "items": {"type": "string"}},
		"answer": {"type": "string"},
		"score": {"type": "integer", "minimum": 0, "maximum": 100}
	}
}`

// QuestionImportService bulk-imports questions into an exercise set by
// extracting them from homework images.
type QuestionImportService interface {
	// Import extracts questions from the images and appends every valid one
	// to the set. Questions failing schema validation are skipped, not fatal.
	Import(ctx context.Context, creatorID, setID uint, req dto.ImportQuestionsRequest) ([]dto.QuestionResponse, error)
}

type questionImportService struct {
	sets      repository.ExerciseSetRepository
	questions repository.QuestionRepository
	grader    ai.Grader
	schema    *jsonschema.Schema
	validate  *validator.Validate
	logger    zerolog.Logger
}

// NewQuestionImportService wires the bulk question import flow.
func NewQuestionImportService(
	sets repository.ExerciseSetRepository,
	questions repository.QuestionRepository,
	grader ai.Grader,
	logger zerolog.Logger,
) QuestionImportService {
	return &questionImportService{
		sets:      sets,
		questions: questions,
		grader:    grader,
		schema:    jsonschema.MustCompileString("extracted_question.schema.json", extractedQuestionSchema),
		validate:  validator.New(),
		logger:    logger.With().Str("component", "question_import_service").Logger(),
	}
}

func (s *questionImportService) Import(ctx context.Context, creatorID, setID uint, req dto.ImportQuestionsRequest) ([]dto.QuestionResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	set, err := s.sets.GetByID(ctx, setID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExerciseSetNotFound
		}
		return nil, fmt.Errorf("load exercise set: %w", err)
	}
	if set.CreatorID != creatorID {
		return nil, ErrExerciseSetForbidden
	}
	if set.IsPublished() {
		return nil, ErrExerciseSetPublished
	}

	extracted, err := s.grader.ExtractQuestions(ctx, req.ImageURLs)
	if err != nil {
		return nil, fmt.Errorf("extract questions: %w", err)
	}

	existing, err := s.questions.CountByExerciseSet(ctx, set.ID)
	if err != nil {
		return nil, fmt.Errorf("count questions: %w", err)
	}

	rows := make([]models.Question, 0, len(extracted))
	for i, candidate := range extracted {
		if err := s.validateExtracted(candidate); err != nil {
			s.logger.Warn().Err(err).
				Int("index", i).
				Msg("extracted question rejected by schema")
			continue
		}

		score := candidate.Score
		if score <= 0 {
			score = models.DefaultQuestionScore
		}

		row := models.Question{
			ExerciseSetID: set.ID,
			Type:          candidate.Type,
			Content:       candidate.Content,
			Answer:        candidate.Answer,
			Score:         score,
			SortOrder:     int(existing) + len(rows),
		}
		if len(candidate.Options) > 0 {
			encoded, err := json.Marshal(candidate.Options)
			if err != nil {
				continue
			}
			row.Options = encoded
		}

		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, ErrNoQuestionsExtracted
	}

	if err := s.questions.CreateBatch(ctx, rows); err != nil {
		return nil, fmt.Errorf("store questions: %w", err)
	}

	count, err := s.questions.CountByExerciseSet(ctx, set.ID)
	if err != nil {
		return nil, fmt.Errorf("count questions: %w", err)
	}
	if err := s.sets.UpdateQuestionCount(ctx, set.ID, int(count)); err != nil {
		return nil, fmt.Errorf("update question count: %w", err)
	}

	s.logger.Info().
		Uint("set_id", set.ID).
		Int("imported", len(rows)).
		Int("extracted", len(extracted)).
		Msg("questions imported from images")

	return dto.NewQuestionResponseSlice(rows), nil
}

// validateExtracted runs one extracted question through the JSON schema.
func (s *questionImportService) validateExtracted(question ai.ExtractedQuestion) error {
	encoded, err := json.Marshal(question)
	if err != nil {
		return err
	}

	var document interface{}
	if err := json.Unmarshal(encoded, &document); err != nil {
		return err
	}

	return s.schema.Validate(document)
}
